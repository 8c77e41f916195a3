package models

import "strings"

type ExamType string

const (
	ExamMidterm ExamType = "midterm"
	ExamFinal   ExamType = "final"
	ExamQuiz    ExamType = "quiz"
)

var ExamTypes = []ExamType{ExamMidterm, ExamFinal, ExamQuiz}

func (e ExamType) Valid() bool {
	switch e {
	case ExamMidterm, ExamFinal, ExamQuiz:
		return true
	default:
		return false
	}
}

func (e ExamType) Label() string {
	switch e {
	case ExamMidterm:
		return "Midterm Exam"
	case ExamFinal:
		return "Final Exam"
	case ExamQuiz:
		return "Quiz"
	default:
		return string(e)
	}
}

// AttendanceStatus is stored as a one-letter code.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "P"
	StatusAbsent  AttendanceStatus = "A"
	StatusLate    AttendanceStatus = "L"
)

var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate}

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	default:
		return false
	}
}

func (s AttendanceStatus) Label() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusLate:
		return "Late"
	default:
		return string(s)
	}
}

// ParseAttendanceStatus accepts a code ("p") or a label ("Present"), any case.
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range AttendanceStatuses {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, st.Label()) {
			return st, true
		}
	}
	return "", false
}
