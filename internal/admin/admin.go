package admin

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/ctxutil"
	"github.com/Spok95/school-records/internal/metrics"
	"github.com/Spok95/school-records/internal/models"
)

// Handler serves the admin JSON API over gorm.
type Handler struct {
	db       *gorm.DB
	validate *validator.Validate
	log      *zap.SugaredLogger
	loc      *time.Location
	now      func() time.Time

	students  *resource[models.Student]
	marks     *resource[models.Mark]
	resources []registrar
}

type Option func(*Handler)

func WithLogger(l *zap.SugaredLogger) Option { return func(h *Handler) { h.log = l } }

func WithLocation(loc *time.Location) Option { return func(h *Handler) { h.loc = loc } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// New opens gorm on top of an existing pool, so the admin API shares
// connections with the rest of the server.
func New(sqlDB *sql.DB, opts ...Option) (*Handler, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	h := &Handler{
		db:       gdb,
		validate: newValidator(),
		log:      zap.NewNop().Sugar(),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	h.students = studentsResource(h)
	h.marks = marksResource(h)
	h.resources = []registrar{
		subjectsResource(h),
		teachersResource(h),
		h.students,
		h.marks,
		attendanceResource(h),
	}
	return h, nil
}

// Register mounts every resource on r. Fixed paths go before /:id.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/marks/dates", h.markDates)
	r.Get("/students/:id/edit", h.getStudentEdit)
	r.Put("/students/:id/edit", h.putStudentEdit)
	r.Get("/teachers/:id/students", h.teacherStudents)
	for _, res := range h.resources {
		res.register(r)
	}
}

func (h *Handler) today() models.Date {
	return models.DateOf(h.now().In(h.loc))
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest("invalid id")
	}
	return id, nil
}

// recordWrite counts an admin write; rejected writes are also logged.
func (h *Handler) recordWrite(ctx context.Context, resource, op string, err error) {
	res := outcome(err)
	metrics.AdminWrites.WithLabelValues(resource, op, res).Inc()
	if err == nil {
		return
	}
	rid, _ := ctxutil.RequestID(ctx)
	h.log.Infow("admin write rejected", "request_id", rid, "resource", resource, "op", op, "outcome", res, "err", err)
}
