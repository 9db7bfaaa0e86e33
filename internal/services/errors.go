package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies service failures; handlers translate it into an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindPolicyViolation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindPolicyViolation:
		return "policy_violation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindPolicyViolation:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-safe Message. Err holds the cause and is never sent to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func UnauthorizedError(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func ForbiddenError(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func PolicyViolation(msg string) *Error   { return &Error{Kind: KindPolicyViolation, Message: msg} }
func NotFoundError(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func ConflictError(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// InternalError wraps an unexpected failure; op names the failing step for logs.
func InternalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
