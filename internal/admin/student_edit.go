package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/models"
)

// Blank inline rows offered on the student edit page.
const (
	extraMarkRows       = 5
	extraAttendanceRows = 1
)

// markRow is an inline mark on the student page. A row without id and
// without any value is blank and ignored on save.
type markRow struct {
	ID           *int64 `json:"id"`
	SubjectID    *int64 `json:"subject_id"`
	ExamType     string `json:"exam_type"     validate:"omitempty,examtype"`
	Score        *int   `json:"score"`
	DateRecorded string `json:"date_recorded" validate:"omitempty,date"`
	Delete       bool   `json:"delete"`
}

func (r *markRow) blank() bool {
	return r.ID == nil && r.SubjectID == nil && r.Score == nil &&
		strings.TrimSpace(r.ExamType) == "" && strings.TrimSpace(r.DateRecorded) == ""
}

type attendanceRow struct {
	ID     *int64 `json:"id"`
	Date   string `json:"date"   validate:"omitempty,date"`
	Status string `json:"status" validate:"omitempty,attstatus"`
	Delete bool   `json:"delete"`
}

func (r *attendanceRow) blank() bool {
	return r.ID == nil && strings.TrimSpace(r.Date) == "" && strings.TrimSpace(r.Status) == ""
}

type studentEdit struct {
	Student    studentForm     `json:"student"`
	Marks      []markRow       `json:"marks"`
	Attendance []attendanceRow `json:"attendance"`
}

type choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func editChoices() fiber.Map {
	exams := make([]choice, 0, len(models.ExamTypes))
	for _, e := range models.ExamTypes {
		exams = append(exams, choice{Value: string(e), Label: e.Label()})
	}
	statuses := make([]choice, 0, len(models.AttendanceStatuses))
	for _, s := range models.AttendanceStatuses {
		statuses = append(statuses, choice{Value: string(s), Label: s.Label()})
	}
	return fiber.Map{"exam_type": exams, "status": statuses}
}

func (h *Handler) loadStudentEdit(ctx context.Context, id int64) (fiber.Map, error) {
	st, err := h.students.load(ctx, h.db, id)
	if err != nil {
		return nil, err
	}

	var marks []models.Mark
	if err := h.db.WithContext(ctx).
		Select("marks.*").
		Joins(joinMarkSubject).
		Where("marks.student_id = ?", id).
		Order("sub.name, marks.date_recorded, marks.id").
		Find(&marks).Error; err != nil {
		return nil, fmt.Errorf("inline marks: %w", err)
	}
	var att []models.AttendanceRecord
	if err := h.db.WithContext(ctx).
		Where("student_id = ?", id).
		Order("date, id").
		Find(&att).Error; err != nil {
		return nil, fmt.Errorf("inline attendance: %w", err)
	}

	markRows := make([]markRow, 0, len(marks)+extraMarkRows)
	for _, m := range marks {
		id, subj, score := m.ID, m.SubjectID, m.Score
		markRows = append(markRows, markRow{
			ID: &id, SubjectID: &subj, ExamType: string(m.ExamType), Score: &score,
			DateRecorded: m.DateRecorded.String(),
		})
	}
	for i := 0; i < extraMarkRows; i++ {
		markRows = append(markRows, markRow{})
	}

	attRows := make([]attendanceRow, 0, len(att)+extraAttendanceRows)
	for _, a := range att {
		id := a.ID
		attRows = append(attRows, attendanceRow{ID: &id, Date: a.Date.String(), Status: string(a.Status)})
	}
	for i := 0; i < extraAttendanceRows; i++ {
		attRows = append(attRows, attendanceRow{})
	}

	var subjects []models.Subject
	if err := h.db.WithContext(ctx).Order("name, id").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("subjects: %w", err)
	}
	choices := editChoices()
	choices["subject"] = subjects

	return fiber.Map{
		"student":    st,
		"marks":      markRows,
		"attendance": attRows,
		"choices":    choices,
	}, nil
}

func (h *Handler) getStudentEdit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page, err := h.loadStudentEdit(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// putStudentEdit saves the student and its inline rows in one transaction.
func (h *Handler) putStudentEdit(c *fiber.Ctx) (err error) {
	defer func() { h.recordWrite(c.UserContext(), "students", "edit", err) }()

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req studentEdit
	if err := c.BodyParser(&req); err != nil {
		return apierr.BadRequest("invalid request body: " + err.Error())
	}
	if fields := h.validateEdit(&req); len(fields) > 0 {
		return apierr.Validation(fields)
	}

	ctx := c.UserContext()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Student
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&st, id).Error; err != nil {
			return storageErr(err, "student", "")
		}
		req.Student.apply(&st)
		if err := tx.Omit(clause.Associations).Save(&st).Error; err != nil {
			return storageErr(err, "student", "student.")
		}
		if err := h.saveMarkRows(tx, id, req.Marks); err != nil {
			return err
		}
		return h.saveAttendanceRows(tx, id, req.Attendance)
	})
	if err != nil {
		return err
	}

	page, err := h.loadStudentEdit(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) validateEdit(req *studentEdit) []apierr.Field {
	req.Student.normalize(h)
	fields := h.check(&req.Student, "student.")

	for i := range req.Marks {
		r := &req.Marks[i]
		if r.blank() {
			continue
		}
		prefix := fmt.Sprintf("marks[%d].", i)
		if r.Delete {
			if r.ID == nil {
				fields = append(fields, apierr.Field{Field: prefix + "id", Error: "Only saved rows can be deleted."})
			}
			continue
		}
		r.ExamType = strings.ToLower(strings.TrimSpace(r.ExamType))
		if r.ExamType == "" {
			r.ExamType = string(models.ExamMidterm)
		}
		r.DateRecorded = strings.TrimSpace(r.DateRecorded)
		if r.DateRecorded == "" {
			r.DateRecorded = h.today().String()
		}
		fields = append(fields, h.check(r, prefix)...)
		if r.SubjectID == nil {
			fields = append(fields, apierr.Field{Field: prefix + "subject_id", Error: "This field is required."})
		}
		if r.Score == nil {
			fields = append(fields, apierr.Field{Field: prefix + "score", Error: "This field is required."})
		}
	}

	for i := range req.Attendance {
		r := &req.Attendance[i]
		if r.blank() {
			continue
		}
		prefix := fmt.Sprintf("attendance[%d].", i)
		if r.Delete {
			if r.ID == nil {
				fields = append(fields, apierr.Field{Field: prefix + "id", Error: "Only saved rows can be deleted."})
			}
			continue
		}
		r.Date = strings.TrimSpace(r.Date)
		if r.Date == "" {
			r.Date = h.today().String()
		}
		r.Status = strings.TrimSpace(r.Status)
		if r.Status == "" {
			r.Status = string(models.StatusPresent)
		}
		fields = append(fields, h.check(r, prefix)...)
	}
	return fields
}

// Удаления идут первыми, затем изменения, затем новые строки:
// так можно заменить оценку, не упираясь в уникальность.
func (h *Handler) saveMarkRows(tx *gorm.DB, studentID int64, rows []markRow) error {
	for pass := 0; pass < 3; pass++ {
		for i := range rows {
			r := &rows[i]
			if r.blank() {
				continue
			}
			prefix := fmt.Sprintf("marks[%d].", i)
			switch {
			case pass == 0 && r.Delete:
				res := tx.Where("student_id = ?", studentID).Delete(&models.Mark{}, *r.ID)
				if err := rowResult(res, "mark", prefix); err != nil {
					return err
				}
			case pass == 1 && !r.Delete && r.ID != nil:
				date, _ := models.ParseDate(r.DateRecorded)
				res := tx.Model(&models.Mark{}).
					Where("id = ? AND student_id = ?", *r.ID, studentID).
					Updates(map[string]any{
						"subject_id":    *r.SubjectID,
						"exam_type":     r.ExamType,
						"score":         *r.Score,
						"date_recorded": date,
					})
				if err := rowResult(res, "mark", prefix); err != nil {
					return err
				}
			case pass == 2 && !r.Delete && r.ID == nil:
				date, _ := models.ParseDate(r.DateRecorded)
				m := models.Mark{
					StudentID: studentID, SubjectID: *r.SubjectID,
					ExamType: models.ExamType(r.ExamType), Score: *r.Score, DateRecorded: date,
				}
				if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
					return storageErr(err, "mark", prefix)
				}
			}
		}
	}
	return nil
}

func (h *Handler) saveAttendanceRows(tx *gorm.DB, studentID int64, rows []attendanceRow) error {
	for pass := 0; pass < 3; pass++ {
		for i := range rows {
			r := &rows[i]
			if r.blank() {
				continue
			}
			prefix := fmt.Sprintf("attendance[%d].", i)
			switch {
			case pass == 0 && r.Delete:
				res := tx.Where("student_id = ?", studentID).Delete(&models.AttendanceRecord{}, *r.ID)
				if err := rowResult(res, "attendance record", prefix); err != nil {
					return err
				}
			case pass == 1 && !r.Delete && r.ID != nil:
				date, _ := models.ParseDate(r.Date)
				status, _ := models.ParseAttendanceStatus(r.Status)
				res := tx.Model(&models.AttendanceRecord{}).
					Where("id = ? AND student_id = ?", *r.ID, studentID).
					Updates(map[string]any{"date": date, "status": string(status)})
				if err := rowResult(res, "attendance record", prefix); err != nil {
					return err
				}
			case pass == 2 && !r.Delete && r.ID == nil:
				date, _ := models.ParseDate(r.Date)
				status, _ := models.ParseAttendanceStatus(r.Status)
				a := models.AttendanceRecord{StudentID: studentID, Date: date, Status: status}
				if err := tx.Omit(clause.Associations).Create(&a).Error; err != nil {
					return storageErr(err, "attendance record", prefix)
				}
			}
		}
	}
	return nil
}

// rowResult: строка с чужим или несуществующим id считается ненайденной.
func rowResult(res *gorm.DB, what, prefix string) error {
	if res.Error != nil {
		return storageErr(res.Error, what, prefix)
	}
	if res.RowsAffected == 0 {
		e := apierr.NotFound(what)
		e.Fields = []apierr.Field{{Field: prefix + "id", Error: "No such row for this student."}}
		return e
	}
	return nil
}
