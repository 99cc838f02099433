// Package apperr is the error taxonomy of the link flows. Every flow failure
// is reported as an *Error whose Kind decides the HTTP status and the message
// the caller sees.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a flow failure.
type Kind string

const (
	KindMethodNotAllowed    Kind = "method_not_allowed"
	KindInvalidOperation    Kind = "invalid_operation"
	KindMissingParameter    Kind = "missing_parameter"
	KindInvalidParameter    Kind = "invalid_parameter"
	KindProviderUnavailable Kind = "provider_unavailable"
	KindStorageFailure      Kind = "storage_failure"
	KindInternal            Kind = "internal_error"
)

// Messages shown to callers when the underlying cause must stay internal.
const (
	MsgProviderUnavailable = "bank data provider is unavailable, try again later"
	MsgStorageFailure      = "bank link succeeded but the credential could not be stored; contact support"
	MsgInternal            = "internal server error"
)

// Error is a classified flow failure. Msg is safe to return to the caller;
// Err carries the cause for logs only.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// MethodNotAllowed is returned for any HTTP method other than POST.
func MethodNotAllowed(op string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Op: op, Msg: "method not allowed"}
}

// InvalidOperation is returned for an unknown or absent action selector.
func InvalidOperation(op, msg string) *Error {
	return &Error{Kind: KindInvalidOperation, Op: op, Msg: msg}
}

// MissingParameter is returned when a flow's required input is absent.
func MissingParameter(op, param string) *Error {
	return &Error{Kind: KindMissingParameter, Op: op, Msg: fmt.Sprintf("%s is required", param)}
}

// InvalidParameter is returned when an input is present but unusable.
func InvalidParameter(op string, err error) *Error {
	return &Error{Kind: KindInvalidParameter, Op: op, Msg: err.Error(), Err: err}
}

// ProviderUnavailable wraps an aggregator failure or timeout.
func ProviderUnavailable(op string, err error) *Error {
	return &Error{Kind: KindProviderUnavailable, Op: op, Msg: MsgProviderUnavailable, Err: err}
}

// StorageFailure wraps a credential store failure.
func StorageFailure(op string, err error) *Error {
	return &Error{Kind: KindStorageFailure, Op: op, Msg: MsgStorageFailure, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Msg: MsgInternal, Err: err}
}

// As returns err as an *Error. Unclassified errors become KindInternal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("unknown", err)
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	return As(err).Kind
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(k Kind) int {
	switch k {
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindInvalidOperation, KindMissingParameter, KindInvalidParameter:
		return http.StatusBadRequest
	case KindProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
