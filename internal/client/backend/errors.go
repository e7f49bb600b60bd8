package backend

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
)

// APIError is a failed backend call. Message is the backend's own text.
type APIError struct {
	Status  int
	Code    string
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return http.StatusText(e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// KindForStatus maps an HTTP status to the error taxonomy. Success codes
// map to nil.
func KindForStatus(status int) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound, status == http.StatusNotAcceptable:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return ErrUnavailable
	default:
		return ErrValidation
	}
}
