package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/dashboard"
	"github.com/Spok95/school-records/internal/db"
	"github.com/Spok95/school-records/internal/models"
)

type memStore struct {
	student *models.Student
	err     error
}

func (m *memStore) FindStudentByParentEmail(_ context.Context, email string) (*models.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.student != nil && strings.EqualFold(email, *m.student.ParentEmail) {
		return m.student, nil
	}
	return nil, db.ErrNotFound
}

func (m *memStore) ListMarksForStudent(context.Context, int64) ([]models.Mark, error) {
	math := &models.Subject{ID: 1, Name: "Math"}
	return []models.Mark{
		{ID: 1, Subject: math, ExamType: models.ExamMidterm, Score: 88, DateRecorded: models.NewDate(2024, 1, 5)},
		{ID: 2, Subject: math, ExamType: models.ExamFinal, Score: 91, DateRecorded: models.NewDate(2024, 1, 20)},
	}, nil
}

func (m *memStore) ListRecentAttendance(context.Context, int64, models.Date, int) ([]models.AttendanceRecord, error) {
	return []models.AttendanceRecord{
		{ID: 2, Date: models.NewDate(2024, 1, 6), Status: models.StatusAbsent},
		{ID: 1, Date: models.NewDate(2024, 1, 5), Status: models.StatusPresent},
	}, nil
}

func newTestApp(t *testing.T, store *memStore) *fiber.App {
	t.Helper()
	r := dashboard.NewResolver(store, time.UTC, 30, dashboard.WithClock(func() time.Time {
		return time.Date(2024, 1, 25, 12, 0, 0, 0, time.UTC)
	}))
	return NewApp(Options{
		Resolver: r,
		Admin: func(g fiber.Router) {
			g.Get("/boom", func(c *fiber.Ctx) error {
				return apierr.Conflict("roll_number", "a student with this roll number already exists", nil)
			})
		},
	})
}

func ashaStore() *memStore {
	email := "p@x.com"
	return &memStore{student: &models.Student{ID: 7, Name: "Asha", RollNumber: 12, ParentName: "Priya", ParentEmail: &email}}
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	return resp, string(b)
}

func postForm(email string) *http.Request {
	form := url.Values{formFieldEmail: {email}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHome_RendersForm(t *testing.T) {
	app := newTestApp(t, ashaStore())
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `name="parent_email"`) {
		t.Fatalf("form missing: %s", body)
	}
	if resp.Header.Get(headerRequestID) == "" {
		t.Fatal("request id header not set")
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		status   int
		location string
	}{
		{"plain", "p@x.com", http.StatusFound, "/parent/p@x.com/"},
		{"trimmed", "  P@X.com \n", http.StatusFound, "/parent/P@X.com/"},
		{"path escaped", "a b/c@x.com", http.StatusFound, "/parent/a%20b%2Fc@x.com/"},
		{"not an email is forwarded", "hello", http.StatusFound, "/parent/hello/"},
		{"empty", "", http.StatusOK, ""},
		{"blank", "   ", http.StatusOK, ""},
	}
	app := newTestApp(t, ashaStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, postForm(tt.email))
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := resp.Header.Get("Location"); got != tt.location {
				t.Fatalf("location = %q, want %q", got, tt.location)
			}
			if tt.status == http.StatusOK && !strings.Contains(body, `name="parent_email"`) {
				t.Fatalf("form not re-rendered: %s", body)
			}
		})
	}
}

func TestParentDashboard_Found(t *testing.T) {
	app := newTestApp(t, ashaStore())
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/parent/P@X.com/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	for _, want := range []string{"Asha", "Midterm Exam", "Final Exam", "88", "91", "2024-01-06", "Absent", "Present"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body lacks %q", want)
		}
	}
	if strings.Index(body, "Midterm Exam") > strings.Index(body, "Final Exam") {
		t.Fatal("marks out of order")
	}
	att := body[strings.Index(body, `id="attendance"`):]
	if strings.Index(att, "2024-01-06") > strings.Index(att, "2024-01-05") {
		t.Fatal("attendance must be newest first")
	}
}

func TestParentDashboard_EscapedEmail(t *testing.T) {
	app := newTestApp(t, ashaStore())
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/parent/p%40x.com/", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Asha") {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
}

func TestParentDashboard_NotFoundIsSuccess(t *testing.T) {
	app := newTestApp(t, ashaStore())
	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/parent/nobody@x.com/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "No student found linked to the email: nobody@x.com. Please check the email address.") {
		t.Fatalf("message missing: %s", body)
	}
}

func TestParentDashboard_EmptyRedirectsHome(t *testing.T) {
	app := newTestApp(t, ashaStore())
	for _, path := range []string{"/parent/", "/parent", "/parent/%20/"} {
		resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
			t.Fatalf("%s: status = %d, location = %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

func TestParentDashboard_StorageErrorIs500(t *testing.T) {
	store := ashaStore()
	store.err = errors.New("connection refused")
	app := newTestApp(t, store)
	req := httptest.NewRequest(http.MethodGet, "/parent/p@x.com/", nil)
	req.Header.Set(headerRequestID, "req-42")
	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.Contains(body, "connection refused") {
		t.Fatal("internal error leaked to the page")
	}
	if !strings.Contains(body, "req-42") || resp.Header.Get(headerRequestID) != "req-42" {
		t.Fatalf("request id not propagated: %s", body)
	}
}

func TestAdminErrorsAreJSON(t *testing.T) {
	app := newTestApp(t, ashaStore())

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, AdminPrefix+"/boom", nil))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got apierr.Body
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("not json: %s", body)
	}
	if len(got.Fields) != 1 || got.Fields[0].Field != "roll_number" {
		t.Fatalf("body = %+v", got)
	}

	resp, body = do(t, app, httptest.NewRequest(http.MethodGet, AdminPrefix+"/nope", nil))
	if resp.StatusCode != http.StatusNotFound || !strings.HasPrefix(body, "{") {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
}

func TestDashboardPath(t *testing.T) {
	if got := DashboardPath("p@x.com"); got != "/parent/p@x.com/" {
		t.Fatalf("got %q", got)
	}
}
