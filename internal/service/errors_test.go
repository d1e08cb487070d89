package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/placeshare/placeshare/internal/repository"
)

func TestErrorIsMatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("handler: %w", &Error{Kind: KindForbidden, Op: "delete place"})
	if !errors.Is(err, ErrForbidden) {
		t.Error("wrapped forbidden error should match ErrForbidden")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("forbidden error should not match ErrNotFound")
	}
	if KindOf(err) != KindForbidden {
		t.Errorf("KindOf = %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain error) should be empty")
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &Error{Kind: KindCreateFailed, Op: "create place", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("Error should unwrap to its cause")
	}
	if got := err.Error(); got != "create place: CREATE_FAILED: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorSeverity(t *testing.T) {
	t.Parallel()

	conflict := fmt.Errorf("%w: deadlock", repository.ErrConflict)
	tests := []struct {
		err  *Error
		want Severity
	}{
		{&Error{Kind: KindInvalidInput}, SeverityInvalidInput},
		{&Error{Kind: KindUnresolvableAddress}, SeverityInvalidInput},
		{&Error{Kind: KindGeocodingUnavailable}, SeverityUnavailable},
		{&Error{Kind: KindOwnerNotFound}, SeverityNotFound},
		{&Error{Kind: KindNotFound}, SeverityNotFound},
		{&Error{Kind: KindForbidden}, SeverityForbidden},
		{&Error{Kind: KindCreateFailed, Err: conflict}, SeverityConflict},
		{&Error{Kind: KindCreateFailed, Err: errors.New("disk full")}, SeverityUnavailable},
		{&Error{Kind: KindDeleteFailed, Err: conflict}, SeverityConflict},
		{&Error{Kind: KindDeleteFailed}, SeverityUnavailable},
		{&Error{Kind: KindUnavailable}, SeverityUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			if got := tt.err.Severity(); got != tt.want {
				t.Errorf("Severity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	for kind := range defaultMessages {
		if (&Error{Kind: kind}).Message() == "" {
			t.Errorf("no default message for %s", kind)
		}
	}
	custom := &Error{Kind: KindForbidden, Msg: "custom"}
	if custom.Message() != "custom" {
		t.Errorf("Message() = %q, want custom", custom.Message())
	}
}
