package common

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrMissingFile  = errors.New("no file uploaded")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")

	// dependency failures
	ErrUnavailable = errors.New("service unavailable")
	ErrStorage     = errors.New("storage error")
	ErrRepository  = errors.New("repository error")
	ErrUpstream    = errors.New("upstream error")
	ErrTimeout     = errors.New("timeout")
)

// HTTPStatus maps an error chain onto the status the client sees.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsClientError reports whether the caller can fix the request themselves.
func IsClientError(err error) bool {
	status := HTTPStatus(err)
	return status >= 400 && status < 500
}
