package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/Spok95/school-records/internal/models"
)

// Store exposes the read queries over a single *sql.DB.
type Store struct {
	DB *sql.DB
}

func NewStore(database *sql.DB) *Store { return &Store{DB: database} }

func (s *Store) FindStudentByParentEmail(ctx context.Context, email string) (*models.Student, error) {
	return FindStudentByParentEmail(ctx, s.DB, email)
}

func (s *Store) ListMarksForStudent(ctx context.Context, studentID int64) ([]models.Mark, error) {
	return ListMarksForStudent(ctx, s.DB, studentID)
}

func (s *Store) ListRecentAttendance(ctx context.Context, studentID int64, asOf models.Date, windowDays int) ([]models.AttendanceRecord, error) {
	return ListRecentAttendance(ctx, s.DB, studentID, asOf, windowDays)
}

// Ping measures a round trip to the database.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	t0 := time.Now()
	err := s.DB.PingContext(ctx)
	return time.Since(t0), err
}
