package apierr

import (
	"fmt"
	"net/http"
)

// Field is one rejected input field.
type Field struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is an HTTP error with a client-facing message. The web error
// handler renders it as {error, fields} for API routes.
type Error struct {
	Code    int
	Message string
	Fields  []Field
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Body is the JSON payload of an API error.
type Body struct {
	Error  string  `json:"error"`
	Fields []Field `json:"fields,omitempty"`
}

func (e *Error) Body() Body { return Body{Error: e.Message, Fields: e.Fields} }

func NotFound(what string) *Error {
	return &Error{Code: http.StatusNotFound, Message: what + " not found"}
}

func BadRequest(msg string, fields ...Field) *Error {
	return &Error{Code: http.StatusBadRequest, Message: msg, Fields: fields}
}

func Validation(fields []Field) *Error {
	return &Error{Code: http.StatusBadRequest, Message: "validation failed", Fields: fields}
}

func Conflict(field, msg string, cause error) *Error {
	return &Error{
		Code:    http.StatusConflict,
		Message: msg,
		Fields:  []Field{{Field: field, Error: msg}},
		Err:     cause,
	}
}
