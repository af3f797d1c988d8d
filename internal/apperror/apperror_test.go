package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessagePriority(t *testing.T) {
	err := &Error{Kind: KindNotFound, Msg: "campaign not found", Err: errors.New("sql: no rows")}
	if err.Error() != "campaign not found" {
		t.Fatalf("expected msg, got %q", err.Error())
	}

	err = &Error{Kind: KindConflict, Err: errors.New("inner")}
	if err.Error() != "inner" {
		t.Fatalf("expected inner error, got %q", err.Error())
	}

	err = &Error{Kind: KindPoolExhausted}
	if err.Error() != string(KindPoolExhausted) {
		t.Fatalf("expected kind fallback, got %q", err.Error())
	}
}

func TestIs(t *testing.T) {
	err := PoolExhausted("no discount codes left", nil)
	if !Is(err, KindPoolExhausted) {
		t.Fatalf("expected pool exhausted kind")
	}
	if Is(err, KindNotFound) {
		t.Fatalf("kind should not match not_found")
	}
	if Is(errors.New("plain"), KindPoolExhausted) {
		t.Fatalf("plain error should not match any kind")
	}
}

func TestIsWrapped(t *testing.T) {
	err := fmt.Errorf("claim failed: %w", AlreadyClaimed("already claimed", nil))
	if !Is(err, KindAlreadyClaimed) {
		t.Fatalf("expected kind to survive wrapping")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("db down")
	err := Forbidden("not the owner", inner)
	if !errors.Is(err, inner) {
		t.Fatalf("expected unwrap to reach inner error")
	}
}

func TestIsBusiness(t *testing.T) {
	if !IsBusiness(RateLimited("wait a bit", nil)) {
		t.Fatalf("typed error should be business")
	}
	if IsBusiness(errors.New("connection refused")) {
		t.Fatalf("plain error should not be business")
	}
}

func TestNilError(t *testing.T) {
	var e *Error
	if e.Error() != "" {
		t.Fatalf("nil error should render empty string")
	}
	if e.Unwrap() != nil {
		t.Fatalf("nil error should unwrap to nil")
	}
}
