package admin

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/Spok95/school-records/internal/apierr"
	"github.com/Spok95/school-records/internal/db"
)

// storageErr translates a write/read failure into the API error the administrator sees.
// prefix is prepended to the reported field ("marks[2].").
func storageErr(err error, what, prefix string) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, db.ErrNotFound) {
		return apierr.NotFound(what)
	}

	constraint := db.ConstraintName(err)
	field := prefix + db.ConstraintField[constraint]
	if field == prefix {
		field = prefix + "__all__"
	}
	switch {
	case db.IsUniqueViolation(err):
		msg := db.ConstraintMessage[constraint]
		if msg == "" {
			msg = "a record with these values already exists"
		}
		return apierr.Conflict(field, msg, err)
	case db.IsForeignKeyViolation(err):
		return &apierr.Error{
			Code:    http.StatusBadRequest,
			Message: "referenced record does not exist",
			Fields:  []apierr.Field{{Field: field, Error: "Select a valid choice. That choice is not one of the available choices."}},
			Err:     err,
		}
	case db.IsCheckViolation(err):
		return &apierr.Error{
			Code:    http.StatusBadRequest,
			Message: "value rejected by the database",
			Fields:  []apierr.Field{{Field: field, Error: "Invalid value."}},
			Err:     err,
		}
	}
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		switch ae.Code {
		case http.StatusConflict:
			return "conflict"
		case http.StatusNotFound:
			return "not_found"
		default:
			return "invalid"
		}
	}
	return "error"
}
