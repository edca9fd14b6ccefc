package types

import (
	"errors"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrActionFailed, "action craft failed").
		WithCause(root).
		WithRetryable(true)

	if GetErrorCode(err) != ErrActionFailed {
		t.Fatalf("expected code %s, got %s", ErrActionFailed, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_WrapAndCodeCheck(t *testing.T) {
	t.Parallel()

	cause := NewError(ErrSnapshotNotFound, "no snapshot abc")
	err := WrapError(cause, ErrStoreUnavailable, "load failed")

	if !IsErrorCode(err, ErrStoreUnavailable) {
		t.Fatalf("expected outermost code to win")
	}
	if IsRetryable(err) {
		t.Fatalf("unmarked error must not be retryable")
	}
	if GetErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain errors carry no code")
	}
}
