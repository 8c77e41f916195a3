package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"github.com/Spok95/school-records/internal/dashboard"
)

// AdminPrefix is where the admin JSON API is mounted; errors under it are rendered as JSON.
const AdminPrefix = "/admin/api"

//go:embed templates
var templatesFS embed.FS

// Resolver is implemented by *dashboard.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*dashboard.View, error)
}

type Options struct {
	Resolver Resolver
	Log      *zap.SugaredLogger
	// Admin registers the admin API on its group; nil leaves it out.
	Admin func(r fiber.Router)
}

// NewApp builds the public fiber application: home form, parent dashboard and,
// when given, the admin API.
func NewApp(opts Options) *fiber.App {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	app := fiber.New(fiber.Config{
		Views:                 newEngine(),
		ViewsLayout:           "layouts/main",
		ErrorHandler:          errorHandler(log),
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestID())
	app.Use(accessLog(log))

	h := &handlers{resolver: opts.Resolver, log: log}
	app.Get("/", h.home)
	app.Post("/", h.submit)
	app.Get("/parent", h.toHome)
	app.Get("/parent/:email/", h.parent)

	if opts.Admin != nil {
		opts.Admin(app.Group(AdminPrefix))
	}
	return app
}

func newEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
