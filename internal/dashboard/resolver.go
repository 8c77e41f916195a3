package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/school-records/internal/db"
	"github.com/Spok95/school-records/internal/metrics"
	"github.com/Spok95/school-records/internal/models"
)

// Store is the read side the resolver needs; *db.Store implements it.
type Store interface {
	FindStudentByParentEmail(ctx context.Context, email string) (*models.Student, error)
	ListMarksForStudent(ctx context.Context, studentID int64) ([]models.Mark, error)
	ListRecentAttendance(ctx context.Context, studentID int64, asOf models.Date, windowDays int) ([]models.AttendanceRecord, error)
}

type State int

const (
	StateHome State = iota
	StateNotFound
	StateFound
)

func (s State) String() string {
	switch s {
	case StateHome:
		return "home"
	case StateNotFound:
		return "not_found"
	case StateFound:
		return "found"
	default:
		return "unknown"
	}
}

// View is what the parent sees. Only the fields of its State are filled.
type View struct {
	State        State
	ParentEmail  string
	ErrorMessage string

	Student    *models.Student
	Marks      []models.Mark
	Attendance []models.AttendanceRecord
	AsOf       models.Date
	// WindowStart is the first day included in Attendance.
	WindowStart models.Date
}

func NotFoundMessage(email string) string {
	return fmt.Sprintf("No student found linked to the email: %s. Please check the email address.", email)
}

type Resolver struct {
	store      Store
	loc        *time.Location
	windowDays int
	now        func() time.Time
}

type Option func(*Resolver)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(store Store, loc *time.Location, windowDays int, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays <= 0 {
		windowDays = db.DefaultAttendanceWindowDays
	}
	r := &Resolver{store: store, loc: loc, windowDays: windowDays, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resolver) WindowDays() int { return r.windowDays }

// Today is the current calendar day in the school's time zone.
func (r *Resolver) Today() models.Date {
	return models.DateOf(r.now().In(r.loc))
}

// Resolve turns a raw parent email into a dashboard view. Only storage
// failures are returned as errors; an unknown email is a NotFound view.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*View, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		metrics.DashboardLookups.WithLabelValues(StateHome.String()).Inc()
		return &View{State: StateHome}, nil
	}

	st, err := r.store.FindStudentByParentEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		metrics.DashboardLookups.WithLabelValues(StateNotFound.String()).Inc()
		return &View{
			State:        StateNotFound,
			ParentEmail:  email,
			ErrorMessage: NotFoundMessage(email),
		}, nil
	}
	if err != nil {
		metrics.DashboardLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve %q: %w", email, err)
	}

	marks, err := r.store.ListMarksForStudent(ctx, st.ID)
	if err != nil {
		metrics.DashboardLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("marks of student %d: %w", st.ID, err)
	}

	today := r.Today()
	attendance, err := r.store.ListRecentAttendance(ctx, st.ID, today, r.windowDays)
	if err != nil {
		metrics.DashboardLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("attendance of student %d: %w", st.ID, err)
	}

	metrics.DashboardLookups.WithLabelValues(StateFound.String()).Inc()
	return &View{
		State:       StateFound,
		ParentEmail: email,
		Student:     st,
		Marks:       marks,
		Attendance:  attendance,
		AsOf:        today,
		WindowStart: today.AddDays(-r.windowDays),
	}, nil
}
