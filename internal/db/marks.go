package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-records/internal/ctxutil"
	"github.com/Spok95/school-records/internal/models"
)

// ListMarksForStudent returns every mark of the student ordered by subject name, then date recorded.
func ListMarksForStudent(ctx context.Context, database *sql.DB, studentID int64) ([]models.Mark, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT m.id, m.student_id, m.subject_id, sub.name, m.exam_type, m.score, m.date_recorded
		FROM marks m
		JOIN subjects sub ON sub.id = m.subject_id
		WHERE m.student_id = $1
		ORDER BY sub.name, m.date_recorded, m.id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Mark{}
	for rows.Next() {
		var (
			m       models.Mark
			subject models.Subject
		)
		if err := rows.Scan(&m.ID, &m.StudentID, &m.SubjectID, &subject.Name, &m.ExamType, &m.Score, &m.DateRecorded); err != nil {
			return nil, err
		}
		subject.ID = m.SubjectID
		m.Subject = &subject
		out = append(out, m)
	}
	return out, rows.Err()
}
