package scheduling

import (
	"errors"
	"fmt"
)

// Kind classifies a scheduling failure so callers can react without parsing messages.
type Kind string

const (
	KindNotFound                Kind = "not_found"
	KindIneligibleDonor         Kind = "ineligible_donor"
	KindInvalidDate             Kind = "invalid_date"
	KindSlotConflict            Kind = "slot_conflict"
	KindRescheduleLimitExceeded Kind = "reschedule_limit_exceeded"
	KindInvalidTransition       Kind = "invalid_transition"
	KindValidation              Kind = "validation"
	KindForbidden               Kind = "forbidden"
	KindConflict                Kind = "conflict"
	KindInternal                Kind = "internal"
)

// Error is the error type returned by every scheduling operation.
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

// Is matches any *Error of the same kind, so errors.Is(err, ErrSlotConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound                = &Error{Kind: KindNotFound, Message: "not found"}
	ErrIneligibleDonor         = &Error{Kind: KindIneligibleDonor, Message: "donor is not eligible to donate"}
	ErrInvalidDate             = &Error{Kind: KindInvalidDate, Message: "invalid date"}
	ErrSlotConflict            = &Error{Kind: KindSlotConflict, Message: "time slot is not available"}
	ErrRescheduleLimitExceeded = &Error{Kind: KindRescheduleLimitExceeded, Message: "maximum reschedule limit reached"}
	ErrInvalidTransition       = &Error{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrValidation              = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrForbidden               = &Error{Kind: KindForbidden, Message: "access denied"}
	ErrConflict                = &Error{Kind: KindConflict, Message: "appointment was modified concurrently"}
	ErrInternal                = &Error{Kind: KindInternal, Message: "internal error"}
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func newErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
