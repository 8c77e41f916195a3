package admin

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Spok95/school-records/internal/models"
)

// teacherStudents shows the students a teacher supervises.
func (h *Handler) teacherStudents(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var t models.Teacher
	if err := h.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return storageErr(err, "teacher", "")
	}
	var students []models.Student
	if err := h.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		Order("name, id").
		Find(&students).Error; err != nil {
		return fmt.Errorf("students of teacher %d: %w", id, err)
	}
	if students == nil {
		students = []models.Student{}
	}
	return c.JSON(fiber.Map{"teacher": t, "students": students})
}
