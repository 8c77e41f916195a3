package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrMultipleStudents = errors.New("more than one student matches the parent email")
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
)

// pgError extracts code and constraint from either driver's error type:
// the server runs on pgx, integration tests connect through lib/pq.
func pgError(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, true
	}
	return "", "", false
}

func IsUniqueViolation(err error) bool {
	code, _, ok := pgError(err)
	return ok && code == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	code, _, ok := pgError(err)
	return ok && code == codeForeignKeyViolation
}

// IsCheckViolation also covers NOT NULL violations.
func IsCheckViolation(err error) bool {
	code, _, ok := pgError(err)
	return ok && (code == codeCheckViolation || code == codeNotNullViolation)
}

// ConstraintName returns the violated constraint, or "" if err is not a constraint error.
func ConstraintName(err error) string {
	_, c, _ := pgError(err)
	return c
}

// ConstraintField maps our constraint names to the field an administrator has to fix.
var ConstraintField = map[string]string{
	"subjects_name_key":                   "name",
	"subjects_name_not_blank":             "name",
	"teachers_employee_id_key":            "employee_id",
	"teachers_email_key":                  "email",
	"students_roll_number_key":            "roll_number",
	"students_parent_email_lower_key":     "parent_email",
	"students_teacher_id_fkey":            "class_teacher_id",
	"marks_student_subject_exam_key":      "exam_type",
	"marks_exam_type_check":               "exam_type",
	"marks_student_id_fkey":               "student_id",
	"marks_subject_id_fkey":               "subject_id",
	"attendance_records_student_date_key": "date",
	"attendance_records_status_check":     "status",
	"attendance_records_student_id_fkey":  "student_id",
}

// ConstraintMessage is the human-readable text for a violated constraint.
var ConstraintMessage = map[string]string{
	"subjects_name_key":                   "a subject with this name already exists",
	"teachers_employee_id_key":            "a teacher with this employee id already exists",
	"teachers_email_key":                  "a teacher with this email already exists",
	"students_roll_number_key":            "a student with this roll number already exists",
	"students_parent_email_lower_key":     "a student with this parent email already exists",
	"marks_student_subject_exam_key":      "this student already has a mark for this subject and exam type",
	"attendance_records_student_date_key": "this student already has an attendance record for this date",
}
