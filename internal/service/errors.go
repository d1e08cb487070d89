package service

import (
	"errors"
	"fmt"

	"github.com/placeshare/placeshare/internal/repository"
)

// Kind is a machine-readable failure category.
type Kind string

// Failure kinds.
const (
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindUnresolvableAddress  Kind = "UNRESOLVABLE_ADDRESS"
	KindGeocodingUnavailable Kind = "GEOCODING_UNAVAILABLE"
	KindOwnerNotFound        Kind = "OWNER_NOT_FOUND"
	KindNotFound             Kind = "NOT_FOUND"
	KindForbidden            Kind = "FORBIDDEN"
	KindCreateFailed         Kind = "CREATE_FAILED"
	KindDeleteFailed         Kind = "DELETE_FAILED"
	KindUnavailable          Kind = "UNAVAILABLE"
)

// Severity is the transport-neutral class of a failure.
type Severity string

// Severities.
const (
	SeverityInvalidInput Severity = "invalid-input"
	SeverityNotFound     Severity = "not-found"
	SeverityForbidden    Severity = "forbidden"
	SeverityConflict     Severity = "conflict"
	SeverityUnavailable  Severity = "unavailable"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrUnresolvableAddress  = &Error{Kind: KindUnresolvableAddress}
	ErrGeocodingUnavailable = &Error{Kind: KindGeocodingUnavailable}
	ErrOwnerNotFound        = &Error{Kind: KindOwnerNotFound}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrCreateFailed         = &Error{Kind: KindCreateFailed}
	ErrDeleteFailed         = &Error{Kind: KindDeleteFailed}
	ErrUnavailable          = &Error{Kind: KindUnavailable}
)

var defaultMessages = map[Kind]string{
	KindInvalidInput:         "Invalid inputs passed, please check your data.",
	KindUnresolvableAddress:  "Could not find location for the specified address.",
	KindGeocodingUnavailable: "Geocoding service unavailable, please try again later.",
	KindOwnerNotFound:        "Could not find user for provided id.",
	KindNotFound:             "Could not find place for the provided id.",
	KindForbidden:            "You are not allowed to modify this place.",
	KindCreateFailed:         "Creating place failed, please try again.",
	KindDeleteFailed:         "Something went wrong, could not delete place.",
	KindUnavailable:          "Something went wrong, please try again later.",
}

// Error is a classified failure returned by the service layer.
type Error struct {
	Kind Kind
	Op   string
	Msg  string // user-facing message; defaults per kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// Message returns the user-facing message.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return defaultMessages[e.Kind]
}

// Severity classifies the error for the boundary layer.
func (e *Error) Severity() Severity {
	switch e.Kind {
	case KindInvalidInput, KindUnresolvableAddress:
		return SeverityInvalidInput
	case KindNotFound, KindOwnerNotFound:
		return SeverityNotFound
	case KindForbidden:
		return SeverityForbidden
	case KindCreateFailed, KindDeleteFailed:
		if errors.Is(e.Err, repository.ErrConflict) {
			return SeverityConflict
		}
		return SeverityUnavailable
	default:
		return SeverityUnavailable
	}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
