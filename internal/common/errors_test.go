package common

import (
	"errors"
	"testing"
)

func TestWrapErrorKeepsSentinel(t *testing.T) {
	err := WrapError(ErrUnavailable, "ping failed")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if WrapError(nil, "noop") != nil {
		t.Fatal("wrapping nil should stay nil")
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	appErr := NewAppError("CONFIG_ERROR", "bad input", ErrInvalidInput)
	if !errors.Is(appErr, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", appErr)
	}
	if appErr.Error() != "CONFIG_ERROR: bad input: invalid input" {
		t.Fatalf("Error() = %q", appErr.Error())
	}
}
