package admin

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/db"
	"github.com/Spok95/school-records/internal/models"
)

const (
	joinMarkStudent = "JOIN students st ON st.id = marks.student_id"
	joinMarkSubject = "JOIN subjects sub ON sub.id = marks.subject_id"
	joinAttStudent  = "JOIN students st ON st.id = attendance_records.student_id"
)

// ---------- subjects ----------

type subjectForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (f *subjectForm) normalize(*Handler) { f.Name = strings.TrimSpace(f.Name) }

func (f *subjectForm) apply(m *models.Subject) { m.Name = f.Name }

func subjectsResource(h *Handler) *resource[models.Subject] {
	return &resource[models.Subject]{
		h: h, name: "subjects", label: "subject", table: "subjects",
		order:   "subjects.name, subjects.id",
		columns: []string{"name"},
		search:  []string{"subjects.name"},
		display: func(m *models.Subject) []any { return []any{m.Name} },
		newForm: func() form[models.Subject] { return &subjectForm{} },
	}
}

// ---------- teachers ----------

type teacherForm struct {
	Name       string `json:"name"        validate:"required,max=100"`
	EmployeeID string `json:"employee_id" validate:"required,max=20"`
	Email      string `json:"email"       validate:"required,email,max=254"`
}

func (f *teacherForm) normalize(*Handler) {
	f.Name = strings.TrimSpace(f.Name)
	f.EmployeeID = strings.TrimSpace(f.EmployeeID)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *teacherForm) apply(m *models.Teacher) {
	m.Name, m.EmployeeID, m.Email = f.Name, f.EmployeeID, f.Email
}

func teachersResource(h *Handler) *resource[models.Teacher] {
	return &resource[models.Teacher]{
		h: h, name: "teachers", label: "teacher", table: "teachers",
		order:   "teachers.name, teachers.id",
		columns: []string{"name", "employee_id", "email"},
		search:  []string{"teachers.name", "teachers.employee_id"},
		display: func(m *models.Teacher) []any { return []any{m.Name, m.EmployeeID, m.Email} },
		newForm: func() form[models.Teacher] { return &teacherForm{} },
	}
}

// ---------- students ----------

type studentForm struct {
	Name           string `json:"name"             validate:"required,max=100"`
	RollNumber     *int   `json:"roll_number"      validate:"required"`
	ClassTeacherID *int64 `json:"class_teacher_id"`
	ParentName     string `json:"parent_name"      validate:"max=100"`
	ParentEmail    string `json:"parent_email"     validate:"omitempty,email,max=254"`
}

func (f *studentForm) normalize(*Handler) {
	f.Name = strings.TrimSpace(f.Name)
	f.ParentName = strings.TrimSpace(f.ParentName)
	if f.ParentName == "" {
		f.ParentName = models.DefaultParentName
	}
	f.ParentEmail = strings.ToLower(strings.TrimSpace(f.ParentEmail))
	if f.ClassTeacherID != nil && *f.ClassTeacherID <= 0 {
		f.ClassTeacherID = nil
	}
}

func (f *studentForm) apply(m *models.Student) {
	m.Name = f.Name
	m.RollNumber = *f.RollNumber
	m.TeacherID = f.ClassTeacherID
	m.ParentName = f.ParentName
	m.ParentEmail = db.NormalizeParentEmail(f.ParentEmail)
}

func studentsResource(h *Handler) *resource[models.Student] {
	return &resource[models.Student]{
		h: h, name: "students", label: "student", table: "students",
		preload: []string{"Teacher"},
		order:   "students.name, students.id",
		columns: []string{"name", "roll_number", "class_teacher", "parent_email"},
		search:  []string{"students.name", "CAST(students.roll_number AS TEXT)", "students.parent_email"},
		filter:  filterStudents,
		display: func(m *models.Student) []any {
			var teacher, email any
			if m.Teacher != nil {
				teacher = m.Teacher.String()
			}
			if m.ParentEmail != nil {
				email = *m.ParentEmail
			}
			return []any{m.Name, m.RollNumber, teacher, email}
		},
		newForm: func() form[models.Student] { return &studentForm{} },
	}
}

// filterStudents: ?teacher=<id> or ?teacher=none for students without a class teacher.
func filterStudents(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, error) {
	if strings.EqualFold(strings.TrimSpace(c.Query("teacher")), "none") {
		return tx.Where("students.teacher_id IS NULL"), nil
	}
	id, ok, err := queryID(c, "teacher")
	if err != nil {
		return nil, err
	}
	if ok {
		tx = tx.Where("students.teacher_id = ?", id)
	}
	return tx, nil
}

// ---------- marks ----------

type markForm struct {
	StudentID    *int64 `json:"student_id"    validate:"required"`
	SubjectID    *int64 `json:"subject_id"    validate:"required"`
	ExamType     string `json:"exam_type"     validate:"required,examtype"`
	Score        *int   `json:"score"         validate:"required"`
	DateRecorded string `json:"date_recorded" validate:"required,date"`
}

func (f *markForm) normalize(h *Handler) {
	f.ExamType = strings.ToLower(strings.TrimSpace(f.ExamType))
	if f.ExamType == "" {
		f.ExamType = string(models.ExamMidterm)
	}
	f.DateRecorded = strings.TrimSpace(f.DateRecorded)
	if f.DateRecorded == "" {
		f.DateRecorded = h.today().String()
	}
}

func (f *markForm) apply(m *models.Mark) {
	m.StudentID = *f.StudentID
	m.SubjectID = *f.SubjectID
	m.ExamType = models.ExamType(f.ExamType)
	m.Score = *f.Score
	m.DateRecorded, _ = models.ParseDate(f.DateRecorded)
}

func marksResource(h *Handler) *resource[models.Mark] {
	return &resource[models.Mark]{
		h: h, name: "marks", label: "mark", table: "marks",
		joins:   []string{joinMarkStudent, joinMarkSubject},
		preload: []string{"Student", "Subject"},
		order:   "st.name, sub.name, marks.id",
		columns: []string{"student", "subject", "exam_type", "score", "date_recorded"},
		search:  []string{"st.name", "sub.name"},
		filter:  h.filterMarks,
		display: func(m *models.Mark) []any {
			var student any
			if m.Student != nil {
				student = m.Student.String()
			}
			return []any{student, m.SubjectName(), m.ExamType.Label(), m.Score, m.DateRecorded.String()}
		},
		newForm: func() form[models.Mark] { return &markForm{} },
	}
}

// filterMarks: ?exam_type=, ?subject=<id>, and the year/month/day drill-down on date_recorded.
func (h *Handler) filterMarks(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, error) {
	if raw := strings.TrimSpace(c.Query("exam_type")); raw != "" {
		et := models.ExamType(strings.ToLower(raw))
		if !et.Valid() {
			return nil, apierr.BadRequest("invalid exam_type filter", apierr.Field{Field: "exam_type", Error: "Select a valid choice."})
		}
		tx = tx.Where("marks.exam_type = ?", string(et))
	}
	id, ok, err := queryID(c, "subject")
	if err != nil {
		return nil, err
	}
	if ok {
		tx = tx.Where("marks.subject_id = ?", id)
	}
	dd, err := parseDrillDown(c)
	if err != nil {
		return nil, err
	}
	return dd.apply(tx, "marks.date_recorded"), nil
}

// ---------- attendance ----------

type attendanceForm struct {
	StudentID *int64 `json:"student_id" validate:"required"`
	Date      string `json:"date"       validate:"required,date"`
	Status    string `json:"status"     validate:"required,attstatus"`
}

func (f *attendanceForm) normalize(h *Handler) {
	f.Date = strings.TrimSpace(f.Date)
	if f.Date == "" {
		f.Date = h.today().String()
	}
	f.Status = strings.TrimSpace(f.Status)
	if f.Status == "" {
		f.Status = string(models.StatusPresent)
	}
}

func (f *attendanceForm) apply(m *models.AttendanceRecord) {
	m.StudentID = *f.StudentID
	m.Date, _ = models.ParseDate(f.Date)
	m.Status, _ = models.ParseAttendanceStatus(f.Status)
}

func attendanceResource(h *Handler) *resource[models.AttendanceRecord] {
	return &resource[models.AttendanceRecord]{
		h: h, name: "attendance", label: "attendance record", table: "attendance_records",
		joins:   []string{joinAttStudent},
		preload: []string{"Student"},
		order:   "attendance_records.date, st.name, attendance_records.id",
		columns: []string{"student", "date", "status"},
		search:  []string{"st.name"},
		filter:  h.filterAttendance,
		display: func(m *models.AttendanceRecord) []any {
			var student any
			if m.Student != nil {
				student = m.Student.String()
			}
			return []any{student, m.Date.String(), m.Status.Label()}
		},
		newForm: func() form[models.AttendanceRecord] { return &attendanceForm{} },
	}
}

// Date filter choices of the attendance list.
const (
	DateToday     = "today"
	DatePast7Days = "past_7_days"
	DateThisMonth = "this_month"
	DateThisYear  = "this_year"
)

// dateRange returns the half-open day range [from, to) of a date filter choice.
func dateRange(choice string, today models.Date) (from, to models.Date, ok bool) {
	tomorrow := today.AddDays(1)
	switch choice {
	case DateToday:
		return today, tomorrow, true
	case DatePast7Days:
		return today.AddDays(-7), tomorrow, true
	case DateThisMonth:
		first := models.NewDate(today.Year(), today.Month(), 1)
		return first, models.Date{Time: first.AddDate(0, 1, 0)}, true
	case DateThisYear:
		first := models.NewDate(today.Year(), time.January, 1)
		return first, models.Date{Time: first.AddDate(1, 0, 0)}, true
	}
	return models.Date{}, models.Date{}, false
}

// filterAttendance: ?status= (code or label) and ?date= one of the date choices.
func (h *Handler) filterAttendance(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, error) {
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		st, ok := models.ParseAttendanceStatus(raw)
		if !ok {
			return nil, apierr.BadRequest("invalid status filter", apierr.Field{Field: "status", Error: "Select a valid choice."})
		}
		tx = tx.Where("attendance_records.status = ?", string(st))
	}
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		from, to, ok := dateRange(strings.ToLower(raw), h.today())
		if !ok {
			return nil, apierr.BadRequest("invalid date filter", apierr.Field{Field: "date", Error: "Select a valid choice."})
		}
		tx = tx.Where("attendance_records.date >= ? AND attendance_records.date < ?", from, to)
	}
	return tx, nil
}
