package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Spok95/school-records/internal/ctxutil"
	"github.com/Spok95/school-records/internal/models"
)

// NormalizeParentEmail is the stored form of a parent email: trimmed, lower-cased,
// nil when blank so that several students may have no parent email.
func NormalizeParentEmail(s string) *string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return &s
}

// FindStudentByParentEmail ищет ученика по email родителя без учёта регистра.
// Возвращает ErrNotFound, если совпадений нет, и ErrMultipleStudents, если их больше одного.
func FindStudentByParentEmail(ctx context.Context, database *sql.DB, email string) (*models.Student, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrNotFound
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT s.id, s.name, s.roll_number, s.teacher_id, s.parent_name, s.parent_email,
		       t.name, t.employee_id, t.email
		FROM students s
		LEFT JOIN teachers t ON t.id = s.teacher_id
		WHERE LOWER(s.parent_email) = LOWER($1)
		ORDER BY s.id
		LIMIT 2
	`, email)
	if err != nil {
		return nil, fmt.Errorf("find student by parent email: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []models.Student
	for rows.Next() {
		var (
			s                     models.Student
			teacherID             sql.NullInt64
			parentEmail           sql.NullString
			tName, tEmpID, tEmail sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.RollNumber, &teacherID, &s.ParentName, &parentEmail,
			&tName, &tEmpID, &tEmail); err != nil {
			return nil, err
		}
		if parentEmail.Valid {
			v := parentEmail.String
			s.ParentEmail = &v
		}
		if teacherID.Valid {
			id := teacherID.Int64
			s.TeacherID = &id
			s.Teacher = &models.Teacher{ID: id, Name: tName.String, EmployeeID: tEmpID.String, Email: tEmail.String}
		}
		found = append(found, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &found[0], nil
	default:
		return nil, ErrMultipleStudents
	}
}
