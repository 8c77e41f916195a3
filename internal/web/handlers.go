package web

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Spok95/school-records/internal/dashboard"
)

const formFieldEmail = "parent_email"

type handlers struct {
	resolver Resolver
	log      *zap.SugaredLogger
}

// DashboardPath is the address of the parent dashboard for email.
func DashboardPath(email string) string {
	return "/parent/" + url.PathEscape(email) + "/"
}

func (h *handlers) home(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{"Title": "Parent Portal"})
}

func (h *handlers) toHome(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusFound)
}

func (h *handlers) submit(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.FormValue(formFieldEmail))
	if email == "" {
		return c.Render("home", fiber.Map{"Title": "Parent Portal"})
	}
	return c.Redirect(DashboardPath(email), fiber.StatusFound)
}

func (h *handlers) parent(c *fiber.Ctx) error {
	raw := c.Params("email")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}

	view, err := h.resolver.Resolve(c.UserContext(), raw)
	if err != nil {
		return err
	}

	switch view.State {
	case dashboard.StateHome:
		return c.Redirect("/", fiber.StatusFound)
	case dashboard.StateNotFound:
		h.log.Debugw("parent email not found", "request_id", requestIDOf(c), "email", view.ParentEmail)
	}
	return c.Render("parent_dashboard", fiber.Map{
		"Title": "Parent Dashboard",
		"View":  view,
	})
}
