package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-records/internal/models"
)

// SeedDemo fills an empty database with a small demo school. Re-running it is a no-op.
// Dates are relative to today so the parent dashboard window shows them.
func SeedDemo(ctx context.Context, database *sql.DB, today models.Date) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range []string{"Math", "Science", "English"} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed subject %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO teachers (name, employee_id, email)
		VALUES ('Maria Ivanova', 'T-001', 'ivanova@school.example')
		ON CONFLICT (employee_id) DO NOTHING
	`); err != nil {
		return fmt.Errorf("seed teacher: %w", err)
	}

	students := []struct {
		name        string
		roll        int
		parentName  string
		parentEmail string
	}{
		{"Asha", 12, "Priya", "p@x.com"},
		{"Boris", 13, "Oleg", "oleg@example.com"},
	}
	for _, s := range students {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO students (name, roll_number, teacher_id, parent_name, parent_email)
			VALUES ($1, $2, (SELECT id FROM teachers WHERE employee_id = 'T-001'), $3, $4)
			ON CONFLICT (roll_number) DO NOTHING
		`, s.name, s.roll, s.parentName, s.parentEmail); err != nil {
			return fmt.Errorf("seed student %s: %w", s.name, err)
		}
	}

	marks := []struct {
		roll     int
		subject  string
		examType models.ExamType
		score    int
		daysAgo  int
	}{
		{12, "Math", models.ExamMidterm, 88, 20},
		{12, "Math", models.ExamFinal, 91, 5},
		{12, "Science", models.ExamQuiz, 75, 3},
		{13, "English", models.ExamMidterm, 64, 10},
	}
	for _, m := range marks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO marks (student_id, subject_id, exam_type, score, date_recorded)
			SELECT st.id, sub.id, $3::varchar, $4::integer, $5::date
			FROM students st, subjects sub
			WHERE st.roll_number = $1 AND sub.name = $2
			ON CONFLICT (student_id, subject_id, exam_type) DO NOTHING
		`, m.roll, m.subject, string(m.examType), m.score, today.AddDays(-m.daysAgo)); err != nil {
			return fmt.Errorf("seed mark: %w", err)
		}
	}

	attendance := []struct {
		roll    int
		daysAgo int
		status  models.AttendanceStatus
	}{
		{12, 2, models.StatusPresent},
		{12, 1, models.StatusAbsent},
		{12, 0, models.StatusLate},
		{13, 1, models.StatusPresent},
	}
	for _, a := range attendance {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_records (student_id, date, status)
			SELECT id, $2::date, $3::char(1) FROM students WHERE roll_number = $1
			ON CONFLICT (student_id, date) DO NOTHING
		`, a.roll, today.AddDays(-a.daysAgo), string(a.status)); err != nil {
			return fmt.Errorf("seed attendance: %w", err)
		}
	}

	return tx.Commit()
}
