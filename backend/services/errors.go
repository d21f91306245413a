// Package services implements enrollment, progress tracking, course authoring,
// authentication and instructor onboarding on top of injected stores and
// third-party clients.
package services

import (
	"errors"
	"fmt"

	"scholarly/backend/store"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindWrongEnrollmentType
	KindNoPendingSession
	KindValidation
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindWrongEnrollmentType:
		return "wrong enrollment type"
	case KindNoPendingSession:
		return "no pending session"
	case KindValidation:
		return "validation error"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream failure"
	default:
		return "unknown"
	}
}

// Error is returned by every service operation. Message is safe to show to
// callers; Err holds the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare kind sentinel such as ErrNoPendingSession.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrWrongEnrollmentType = &Error{Kind: KindWrongEnrollmentType}
	ErrNoPendingSession    = &Error{Kind: KindNoPendingSession}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrUpstream            = &Error{Kind: KindUpstream}
)

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func WrongEnrollmentType(msg string) error {
	return &Error{Kind: KindWrongEnrollmentType, Message: msg}
}

func NoPendingSession() error {
	return &Error{Kind: KindNoPendingSession, Message: "No pending payment for this course"}
}

func Validation(msg string, fields map[string]string) error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Upstream wraps a store or third-party failure. The cause never reaches the caller.
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstream, Message: "Something went wrong. Please try again.", Op: op, Err: err}
}

// KindOf returns the kind of a service error, or zero for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// fromStore converts a store error; notFound is the message used for store.ErrNotFound.
func fromStore(op string, err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return NotFound(notFound)
	case errors.Is(err, store.ErrDuplicate):
		return Conflict("Record already exists")
	case errors.Is(err, store.ErrNoPendingSession):
		return NoPendingSession()
	default:
		return Upstream(op, err)
	}
}
