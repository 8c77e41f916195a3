package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Spok95/school-records/internal/ctxutil"
	"github.com/Spok95/school-records/internal/models"
)

const DefaultAttendanceWindowDays = 30

// ListRecentAttendance: посещаемость ученика за окно [asOf-windowDays, asOf], новые сверху.
func ListRecentAttendance(ctx context.Context, database *sql.DB, studentID int64, asOf models.Date, windowDays int) ([]models.AttendanceRecord, error) {
	if windowDays <= 0 {
		windowDays = DefaultAttendanceWindowDays
	}
	from := asOf.AddDays(-windowDays)

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, student_id, date, status
		FROM attendance_records
		WHERE student_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`, studentID, from, asOf)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.AttendanceRecord{}
	for rows.Next() {
		var a models.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Date, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
