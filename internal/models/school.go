package models

import "fmt"

// DefaultParentName is stored when a student is created without a parent name.
const DefaultParentName = "N/A"

type Subject struct {
	ID   int64  `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name"          json:"name"`
}

func (Subject) TableName() string { return "subjects" }

func (s Subject) PrimaryKey() int64 { return s.ID }

func (s Subject) String() string { return s.Name }

// Teacher is a class teacher; Students is filled only when preloaded.
type Teacher struct {
	ID         int64     `gorm:"column:id;primaryKey"    json:"id"`
	Name       string    `gorm:"column:name"             json:"name"`
	EmployeeID string    `gorm:"column:employee_id"      json:"employee_id"`
	Email      string    `gorm:"column:email"            json:"email"`
	Students   []Student `gorm:"foreignKey:TeacherID"    json:"students,omitempty"`
}

func (Teacher) TableName() string { return "teachers" }

func (t Teacher) PrimaryKey() int64 { return t.ID }

func (t Teacher) String() string { return fmt.Sprintf("Teacher: %s (%s)", t.Name, t.EmployeeID) }

type Student struct {
	ID          int64    `gorm:"column:id;primaryKey"     json:"id"`
	Name        string   `gorm:"column:name"              json:"name"`
	RollNumber  int      `gorm:"column:roll_number"       json:"roll_number"`
	TeacherID   *int64   `gorm:"column:teacher_id"        json:"class_teacher_id"`
	Teacher     *Teacher `gorm:"foreignKey:TeacherID"     json:"class_teacher,omitempty"`
	ParentName  string   `gorm:"column:parent_name"       json:"parent_name"`
	ParentEmail *string  `gorm:"column:parent_email"      json:"parent_email"`
}

func (Student) TableName() string { return "students" }

func (s Student) PrimaryKey() int64 { return s.ID }

func (s Student) String() string { return fmt.Sprintf("Student: %s (Roll: %d)", s.Name, s.RollNumber) }

type Mark struct {
	ID           int64    `gorm:"column:id;primaryKey"   json:"id"`
	StudentID    int64    `gorm:"column:student_id"      json:"student_id"`
	Student      *Student `gorm:"foreignKey:StudentID"   json:"student,omitempty"`
	SubjectID    int64    `gorm:"column:subject_id"      json:"subject_id"`
	Subject      *Subject `gorm:"foreignKey:SubjectID"   json:"subject,omitempty"`
	ExamType     ExamType `gorm:"column:exam_type"       json:"exam_type"`
	Score        int      `gorm:"column:score"           json:"score"`
	DateRecorded Date     `gorm:"column:date_recorded"   json:"date_recorded"`
}

func (Mark) TableName() string { return "marks" }

func (m Mark) PrimaryKey() int64 { return m.ID }

// SubjectName is safe to call when Subject was not loaded.
func (m Mark) SubjectName() string {
	if m.Subject == nil {
		return ""
	}
	return m.Subject.Name
}

func (m Mark) String() string {
	student := ""
	if m.Student != nil {
		student = m.Student.Name
	}
	return fmt.Sprintf("%s's %d in %s (%s)", student, m.Score, m.SubjectName(), m.ExamType.Label())
}

type AttendanceRecord struct {
	ID        int64            `gorm:"column:id;primaryKey"  json:"id"`
	StudentID int64            `gorm:"column:student_id"     json:"student_id"`
	Student   *Student         `gorm:"foreignKey:StudentID"  json:"student,omitempty"`
	Date      Date             `gorm:"column:date"           json:"date"`
	Status    AttendanceStatus `gorm:"column:status"         json:"status"`
}

func (AttendanceRecord) TableName() string { return "attendance_records" }

func (a AttendanceRecord) PrimaryKey() int64 { return a.ID }

func (a AttendanceRecord) String() string {
	student := ""
	if a.Student != nil {
		student = a.Student.Name
	}
	return fmt.Sprintf("%s - %s: %s", student, a.Date, a.Status.Label())
}
