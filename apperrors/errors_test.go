package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, 400},
		{KindNotFound, 404},
		{KindForbidden, 403},
		{KindConflict, 409},
		{KindInternal, 500},
		{Kind("unknown"), 500},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.kind); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestGetUnwrapsNestedAppError(t *testing.T) {
	inner := Conflict(CodeRoomFullAfterPayment, "room filled up")
	wrapped := fmt.Errorf("completing payment: %w", inner)

	got := Get(wrapped)
	if got.Code != CodeRoomFullAfterPayment {
		t.Errorf("code = %s, want %s", got.Code, CodeRoomFullAfterPayment)
	}
	if got.Kind != KindConflict {
		t.Errorf("kind = %s, want %s", got.Kind, KindConflict)
	}
}

func TestGetTreatsForeignErrorsAsInternal(t *testing.T) {
	got := Get(errors.New("connection refused"))
	if got.Kind != KindInternal {
		t.Errorf("kind = %s, want %s", got.Kind, KindInternal)
	}
	if got.Message != "Something went wrong" {
		t.Errorf("foreign error message leaked: %q", got.Message)
	}
}

func TestInternalKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("pq: deadlock detected")
	appErr := Internal(cause)

	if appErr.Message == cause.Error() {
		t.Error("the low-level cause must not be the user-facing message")
	}
	if !errors.Is(appErr, cause) {
		t.Error("the cause must stay reachable through Unwrap")
	}
}
