package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-records/internal/dashboard"
	"github.com/Spok95/school-records/internal/models"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	return f.sent[len(f.sent)-1]
}

type fakeResolver struct {
	calls []string
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, raw string) (*dashboard.View, error) {
	f.calls = append(f.calls, raw)
	if f.err != nil {
		return nil, f.err
	}
	email := strings.TrimSpace(raw)
	if !strings.EqualFold(email, "p@x.com") {
		return &dashboard.View{State: dashboard.StateNotFound, ParentEmail: email, ErrorMessage: dashboard.NotFoundMessage(email)}, nil
	}
	return asha(email), nil
}

func asha(email string) *dashboard.View {
	mustDate := func(s string) models.Date {
		d, err := models.ParseDate(s)
		if err != nil {
			panic(err)
		}
		return d
	}
	return &dashboard.View{
		State:       dashboard.StateFound,
		ParentEmail: email,
		Student: &models.Student{
			ID: 1, Name: "Asha", RollNumber: 12, ParentName: "Priya",
			Teacher: &models.Teacher{Name: "Maria Ivanova", EmployeeID: "T-001"},
		},
		Marks: []models.Mark{
			{Subject: &models.Subject{Name: "Math"}, ExamType: models.ExamMidterm, Score: 88, DateRecorded: mustDate("2024-01-05")},
		},
		Attendance: []models.AttendanceRecord{
			{Date: mustDate("2024-01-25"), Status: models.StatusLate},
		},
		AsOf:        mustDate("2024-01-25"),
		WindowStart: mustDate("2023-12-26"),
	}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
	if strings.HasPrefix(text, "/") {
		n := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			n = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestHandleUpdate(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		resolved  bool
		resolverE error
	}{
		{"start", "/start", helpText, false, nil},
		{"help button", btnHelp, helpText, false, nil},
		{"unknown command", "/grades", unknownCommandText, false, nil},
		{"blank", "   ", helpText, false, nil},
		{"refresh without session", btnRefresh, helpText, false, nil},
		{"not found", "nobody@x.com", "No student found linked to the email: nobody@x.com.", true, nil},
		{"found", " P@X.com ", "Asha (roll 12)", true, nil},
		{"storage failure", "p@x.com", failureText, true, errors.New("db down")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{}
			r := &fakeResolver{err: tt.resolverE}
			b := New(s, r, nil)

			b.HandleUpdate(context.Background(), textUpdate(7, tt.text))

			got := s.last(t)
			if got.ChatID != 7 {
				t.Fatalf("chat id = %d", got.ChatID)
			}
			if !strings.Contains(got.Text, tt.want) {
				t.Fatalf("reply = %q, want it to contain %q", got.Text, tt.want)
			}
			if (len(r.calls) > 0) != tt.resolved {
				t.Fatalf("resolver calls = %v", r.calls)
			}
		})
	}
}

func TestHandleUpdate_RefreshUsesLastEmail(t *testing.T) {
	s := &fakeSender{}
	r := &fakeResolver{}
	b := New(s, r, nil)

	b.HandleUpdate(context.Background(), textUpdate(7, "p@x.com"))
	kb, ok := s.last(t).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || len(kb.Keyboard[0]) != 2 || kb.Keyboard[0][0].Text != btnRefresh {
		t.Fatalf("keyboard = %+v", s.last(t).ReplyMarkup)
	}

	b.HandleUpdate(context.Background(), textUpdate(7, btnRefresh))
	if len(r.calls) != 2 || r.calls[1] != "p@x.com" {
		t.Fatalf("calls = %v", r.calls)
	}

	// другой чат не видит чужой email
	b.HandleUpdate(context.Background(), textUpdate(8, btnRefresh))
	if len(r.calls) != 2 {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestHandleUpdate_IgnoresNonMessages(t *testing.T) {
	s := &fakeSender{}
	b := New(s, &fakeResolver{}, nil)
	b.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "1"}})
	if len(s.sent) != 0 {
		t.Fatalf("sent = %+v", s.sent)
	}
}

func TestRun_StopsWhenChannelCloses(t *testing.T) {
	s := &fakeSender{}
	b := New(s, &fakeResolver{}, nil)
	ch := make(chan tgbotapi.Update, 3)
	ch <- textUpdate(1, "/start")
	ch <- textUpdate(2, "/start")
	ch <- textUpdate(3, "/start")
	close(ch)

	b.Run(context.Background(), ch)

	if len(s.sent) != 3 {
		t.Fatalf("sent %d replies", len(s.sent))
	}
}

func TestSummary(t *testing.T) {
	got := Summary(asha("p@x.com"))
	want := strings.Join([]string{
		"Asha (roll 12)",
		"Class teacher: Maria Ivanova",
		"Parent: Priya",
		"",
		"Marks:",
		"• Math, Midterm Exam: 88 (2024-01-05)",
		"",
		"Attendance 2023-12-26 to 2024-01-25:",
		"• 2024-01-25 Late",
	}, "\n")
	if got != want {
		t.Fatalf("Summary:\n%s\nwant:\n%s", got, want)
	}

	v := asha("p@x.com")
	v.Student.Teacher = nil
	v.Marks, v.Attendance = nil, nil
	got = Summary(v)
	for _, s := range []string{"Class teacher: not assigned", "No marks recorded yet.", "No attendance recorded in this period."} {
		if !strings.Contains(got, s) {
			t.Errorf("summary lacks %q:\n%s", s, got)
		}
	}

	if got := Summary(&dashboard.View{State: dashboard.StateHome}); got != helpText {
		t.Fatalf("home = %q", got)
	}
}

func TestChatLimiter_Serializes(t *testing.T) {
	l := newChatLimiter()
	unlock := l.lock(1)

	done := make(chan struct{})
	go func() {
		u := l.lock(1)
		u()
		close(done)
	}()
	// другой чат не блокируется
	l.lock(2)()

	select {
	case <-done:
		t.Fatal("second lock on the same chat did not wait")
	default:
	}
	unlock()
	<-done
}
