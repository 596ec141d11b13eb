package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrNotFound    = errors.New("not_found")
	ErrForbidden   = errors.New("forbidden")
	ErrBadRequest  = errors.New("bad_request")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("service_unavailable")
	ErrNotClosed   = errors.New("not_closed")
	ErrRateLimited = errors.New("rate_limited")
	ErrInternal    = errors.New("internal server error")

	ErrRollbackFailed = fmt.Errorf("%w: transaction rollback failed", ErrInternal)
)

const (
	ReasonElectionNotFound = "election not found"
	ReasonNotEligible      = "not eligible to vote in this election"
	ReasonAlreadyVoted     = "already voted in this election"
	ReasonLockTimeout      = "election is busy, please retry"
	ReasonNotClosed        = "election must be closed or archived before anonymization"
	ReasonResultsHidden    = "results are not yet available"
	ReasonRateLimited      = "too many attempts, try again later"
)

// Error carries a stable kind plus a human readable reason.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func NotFound(reason string) error   { return NewError(ErrNotFound, reason) }
func Forbidden(reason string) error  { return NewError(ErrForbidden, reason) }
func BadRequest(reason string) error { return NewError(ErrBadRequest, reason) }
func Conflict(reason string) error   { return NewError(ErrConflict, reason) }
func NotClosed(reason string) error  { return NewError(ErrNotClosed, reason) }

func Unavailable(reason string) error { return NewError(ErrUnavailable, reason) }
func RateLimited(reason string) error { return NewError(ErrRateLimited, reason) }

// KindOf returns the kind sentinel of err, or ErrInternal when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrBadRequest, ErrConflict, ErrUnavailable, ErrNotClosed, ErrRateLimited} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// ReasonOf returns the user facing reason of a domain error, or "" for anything else.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}
