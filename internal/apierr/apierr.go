// Package apierr defines the coordinator's error envelope and the typed
// codes it carries (§6 "Error envelope").
package apierr

import (
	"errors"
	"net/http"

	"github.com/crawlctl/coordinator/internal/coordinator"
)

// Code is one of the fixed error codes from §6.
type Code string

const (
	CodeInvalidRequest     Code = "INVALID_REQUEST"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConfigNotFound     Code = "CONFIG_NOT_FOUND"
	CodeConfigInUse        Code = "CONFIG_IN_USE"
	CodeRunNotFound        Code = "RUN_NOT_FOUND"
	CodeRunAlreadyRunning  Code = "RUN_ALREADY_RUNNING"
	CodeRunNotRunning      Code = "RUN_NOT_RUNNING"
	CodeRunCompleted       Code = "RUN_COMPLETED"
	CodeInvalidRunState    Code = "INVALID_RUN_STATE"
	CodeQueueFull          Code = "QUEUE_FULL"
	CodeContentNotFound    Code = "CONTENT_NOT_FOUND"
	CodeInternalError      Code = "INTERNAL_ERROR"
)

// Error is the typed error carried through handlers up to the envelope
// writer; Details is optional context (e.g. a validation field name).
type Error struct {
	Code    Code
	Message string
	Details any
}

func (e *Error) Error() string { return e.Message }

// New constructs an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches structured details to an existing Error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// httpStatus maps each Code to the HTTP status the handler layer writes.
var httpStatus = map[Code]int{
	CodeInvalidRequest:    http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeNotFound:          http.StatusNotFound,
	CodeConfigNotFound:    http.StatusNotFound,
	CodeConfigInUse:       http.StatusConflict,
	CodeRunNotFound:       http.StatusNotFound,
	CodeRunAlreadyRunning: http.StatusConflict,
	CodeRunNotRunning:     http.StatusConflict,
	CodeRunCompleted:      http.StatusConflict,
	CodeInvalidRunState:   http.StatusConflict,
	CodeQueueFull:         http.StatusConflict,
	CodeContentNotFound:   http.StatusNotFound,
	CodeInternalError:     http.StatusInternalServerError,
}

// Status returns the HTTP status code for e, defaulting to 500.
func (e *Error) Status() int {
	if status, ok := httpStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromCoordinator maps a sentinel error returned by internal/coordinator to
// its typed API error, so handlers don't duplicate the mapping per route.
func FromCoordinator(err error) *Error {
	switch {
	case errors.Is(err, coordinator.ErrRunNotFound):
		return New(CodeRunNotFound, "run not found")
	case errors.Is(err, coordinator.ErrRunAlreadyRunning):
		return New(CodeRunAlreadyRunning, "run already running")
	case errors.Is(err, coordinator.ErrRunNotRunning):
		return New(CodeRunNotRunning, "run not running")
	case errors.Is(err, coordinator.ErrRunCompleted):
		return New(CodeRunCompleted, "run already in a terminal state")
	case errors.Is(err, coordinator.ErrInvalidRunState):
		return New(CodeInvalidRunState, "invalid run state for requested transition")
	case errors.Is(err, coordinator.ErrQueueFull):
		return New(CodeQueueFull, "frontier at maxQueueSize")
	case errors.Is(err, coordinator.ErrConfigNotFound):
		return New(CodeConfigNotFound, "configuration not found")
	default:
		return New(CodeInternalError, "internal error")
	}
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Success bool       `json:"success"`
	Error   EnvelopeBody `json:"error"`
}

// EnvelopeBody is the `error` field of Envelope.
type EnvelopeBody struct {
	Code    Code `json:"code"`
	Message string `json:"message"`
	Details any  `json:"details,omitempty"`
}

// NewEnvelope builds the response body for e.
func NewEnvelope(e *Error) Envelope {
	return Envelope{
		Success: false,
		Error: EnvelopeBody{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	}
}
