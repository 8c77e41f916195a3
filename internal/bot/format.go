package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-records/internal/dashboard"
)

const (
	btnRefresh = "🔄 Refresh"
	btnHelp    = "❓ Help"

	helpText = "Send the email address you registered at school and I will show your child's marks and recent attendance."

	unknownCommandText = "⚠️ Unknown command. Use /start"
	failureText        = "Something went wrong. Please try again later."
)

func parentMenu(withRefresh bool) tgbotapi.ReplyKeyboardMarkup {
	row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHelp))
	if withRefresh {
		row = tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRefresh),
			tgbotapi.NewKeyboardButton(btnHelp),
		)
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.ResizeKeyboard = true
	return kb
}

// Summary renders a dashboard view as a plain-text message.
func Summary(v *dashboard.View) string {
	switch v.State {
	case dashboard.StateHome:
		return helpText
	case dashboard.StateNotFound:
		return v.ErrorMessage
	}

	var b strings.Builder
	st := v.Student
	fmt.Fprintf(&b, "%s (roll %d)\n", st.Name, st.RollNumber)
	if st.Teacher != nil {
		fmt.Fprintf(&b, "Class teacher: %s\n", st.Teacher.Name)
	} else {
		b.WriteString("Class teacher: not assigned\n")
	}
	fmt.Fprintf(&b, "Parent: %s\n", st.ParentName)

	b.WriteString("\nMarks:\n")
	if len(v.Marks) == 0 {
		b.WriteString("No marks recorded yet.\n")
	}
	for _, m := range v.Marks {
		fmt.Fprintf(&b, "• %s, %s: %d (%s)\n", m.SubjectName(), m.ExamType.Label(), m.Score, m.DateRecorded)
	}

	fmt.Fprintf(&b, "\nAttendance %s to %s:\n", v.WindowStart, v.AsOf)
	if len(v.Attendance) == 0 {
		b.WriteString("No attendance recorded in this period.\n")
	}
	for _, a := range v.Attendance {
		fmt.Fprintf(&b, "• %s %s\n", a.Date, a.Status.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}
