// ABOUTME: Uniform response envelope and error taxonomy for every client operation
// ABOUTME: Failed envelopes convert to *APIError values that match sentinel errors

package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an operation failed.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindCanceled        ErrorKind = "canceled"
	KindNetwork         ErrorKind = "network"
	KindPolicy          ErrorKind = "policy" // TLS or redirect refusal
	KindUnauthorized    ErrorKind = "unauthorized"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindServer          ErrorKind = "server"
	KindBackend         ErrorKind = "backend"
	KindValidation      ErrorKind = "validation"
	KindDecode          ErrorKind = "decode"
	KindUnavailable     ErrorKind = "unavailable"
	KindNoLoginEndpoint ErrorKind = "no_login_endpoint"
	KindUnknown         ErrorKind = "unknown"
)

// Sentinel errors matched by *APIError through errors.Is.
var (
	ErrTimeout         = errors.New("request timed out")
	ErrCanceled        = errors.New("request canceled")
	ErrNetwork         = errors.New("network error")
	ErrPolicy          = errors.New("connection refused by security policy")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrServer          = errors.New("server error")
	ErrBackend         = errors.New("backend rejected request")
	ErrValidation      = errors.New("validation failed")
	ErrDecode          = errors.New("unexpected response body")
	ErrUnavailable     = errors.New("server unavailable")
	ErrNoLoginEndpoint = errors.New("no login endpoint found")
	ErrUnknown         = errors.New("unknown error")
)

var sentinels = map[ErrorKind]error{
	KindTimeout:         ErrTimeout,
	KindCanceled:        ErrCanceled,
	KindNetwork:         ErrNetwork,
	KindPolicy:          ErrPolicy,
	KindUnauthorized:    ErrUnauthorized,
	KindForbidden:       ErrForbidden,
	KindNotFound:        ErrNotFound,
	KindServer:          ErrServer,
	KindBackend:         ErrBackend,
	KindValidation:      ErrValidation,
	KindDecode:          ErrDecode,
	KindUnavailable:     ErrUnavailable,
	KindNoLoginEndpoint: ErrNoLoginEndpoint,
	KindUnknown:         ErrUnknown,
}

// Response is the envelope returned by every operation, whatever shape the
// backend answered with.
type Response[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   string    `json:"error,omitempty"`
	Status  int       `json:"status,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

// Err returns nil for a successful envelope and an *APIError otherwise.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return newAPIError(r.Kind, r.Status, r.Error, r.Message)
}

// APIError describes a failed operation.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func newAPIError(kind ErrorKind, status int, detail, message string) *APIError {
	if kind == "" {
		kind = KindUnknown
	}
	if detail == "" {
		detail = message
	}
	return &APIError{Kind: kind, Status: status, Message: detail}
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

// Unwrap exposes the sentinel for the error's kind.
func (e *APIError) Unwrap() error {
	return sentinels[e.Kind]
}

// failure builds a failed envelope.
func failure[T any](kind ErrorKind, status int, detail, message string) Response[T] {
	return Response[T]{
		Success: false,
		Error:   detail,
		Message: message,
		Status:  status,
		Kind:    kind,
	}
}
