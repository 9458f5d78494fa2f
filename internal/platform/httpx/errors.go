package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// MessageError attaches a user-facing message to a sentinel.
type MessageError struct {
	Err error
	Msg string
}

func (e *MessageError) Error() string { return e.Msg }

func (e *MessageError) Unwrap() error { return e.Err }

// WithMessage tags err with the message shown to the shopper.
func WithMessage(err error, msg string) error {
	return &MessageError{Err: err, Msg: msg}
}

// Invalid is a validation failure carrying msg.
func Invalid(msg string) error {
	return WithMessage(ErrValidation, msg)
}

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// RespondError maps domain and backend errors to JSON error responses.
func RespondError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	Fail(w, status, code, message(err, status))
}

// StatusFor reports the HTTP status RespondError would use for err.
func StatusFor(err error) int {
	status, _ := classify(err)
	return status
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.StatusCode()
		if status >= 400 && status < 500 {
			return status, "backend_rejected"
		}
		return http.StatusBadGateway, "backend_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func message(err error, status int) string {
	var me *MessageError
	if errors.As(err, &me) {
		return me.Msg
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return err.Error()
	}
	if status == http.StatusInternalServerError {
		return "Something went wrong. Please try again."
	}
	return err.Error()
}
