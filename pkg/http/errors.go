package http

import (
	"errors"
	"fmt"
	"net/http"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusConflict:            "ERR_CONFLICT",
	http.StatusTooManyRequests:     "ERR_RATE_LIMITED",
	http.StatusServiceUnavailable:  "ERR_UNAVAILABLE",
	http.StatusInternalServerError: "ERR_INTERNAL",
}

// AppError is an error that knows the HTTP status it is reported with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// NewAppError builds an AppError. The code is derived from status.
func NewAppError(status int, message string) *AppError {
	code, ok := statusCodes[status]
	if !ok {
		code = "ERR_INTERNAL"
	}
	return &AppError{Code: code, Message: message, Status: status}
}

// Errorf is NewAppError with a formatted message.
func Errorf(status int, format string, a ...interface{}) *AppError {
	return NewAppError(status, fmt.Sprintf(format, a...))
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the cause. It is kept out of the response body.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return Errorf(http.StatusBadRequest, format, a...)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

// UnavailableError reports a backend that cannot serve the request now.
func UnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message)
}

func InternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message)
}

// ErrorMap translates sentinel errors returned by use cases into statuses.
// Rules are checked in order with errors.Is.
type ErrorMap []errorRule

type errorRule struct {
	target  error
	status  int
	message string
}

// On adds a rule. An empty message reports err.Error() to the client.
func (m ErrorMap) On(target error, status int, message string) ErrorMap {
	return append(m, errorRule{target: target, status: status, message: message})
}

// Resolve returns the AppError for err, or false when no rule matches.
// An err that already is an AppError resolves to itself.
func (m ErrorMap) Resolve(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	for _, r := range m {
		if !errors.Is(err, r.target) {
			continue
		}
		msg := r.message
		if msg == "" {
			msg = err.Error()
		}
		return NewAppError(r.status, msg).WithError(err), true
	}
	return nil, false
}
