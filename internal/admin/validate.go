package admin

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// в ошибках показываем имя поля из json-тега
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("examtype", func(fl validator.FieldLevel) bool {
		return models.ExamType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("attstatus", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := models.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// check validates s and converts failures to field errors, each name prefixed with prefix.
func (h *Handler) check(s any, prefix string) []apierr.Field {
	err := h.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apierr.Field{{Field: strings.TrimSuffix(prefix, "."), Error: err.Error()}}
	}
	out := make([]apierr.Field, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierr.Field{Field: prefix + fe.Field(), Error: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "examtype", "attstatus":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "date":
		return "Enter a valid date in YYYY-MM-DD format."
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}
