package errorx

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("load peers: %w", Wrap(cause, CodeNetwork, "请求失败"))

	if !errors.Is(err, cause) {
		t.Fatal("cause lost")
	}
	if GetCode(err) != CodeNetwork || !IsNetwork(err) {
		t.Fatalf("code = %d", GetCode(err))
	}
	if Message(err) != "请求失败" {
		t.Fatalf("message = %q", Message(err))
	}
	if got := Wrap(cause, CodeNetwork, "请求失败").Error(); got != "请求失败: dial tcp: connection refused" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsMatchesPredefinedErrors(t *testing.T) {
	if !errors.Is(ErrStaleResponse, ErrStaleResponse) {
		t.Fatal("identity")
	}
	if errors.Is(ErrNoActiveConversation, ErrConversationMismatch) {
		t.Fatal("same code, different message matched")
	}
	wrapped := fmt.Errorf("select: %w", ErrNoActiveConversation)
	if !errors.Is(wrapped, ErrNoActiveConversation) || !IsPrecondition(wrapped) {
		t.Fatal("wrapped predefined error not matched")
	}
}

func TestClassifiers(t *testing.T) {
	cases := []struct {
		err        error
		auth       bool
		network    bool
		validation bool
		stale      bool
	}{
		{New(CodeUnauthorized, "jwt expired"), true, false, false, false},
		{New(CodeInvalidPassword, "Invalid credentials"), true, false, false, false},
		{New(CodeNetwork, "timeout"), false, true, false, false},
		{ErrEmptyMessage, false, false, true, false},
		{ErrStaleResponse, false, false, false, true},
		{errors.New("plain"), false, false, false, false},
	}
	for _, c := range cases {
		if IsAuth(c.err) != c.auth || IsNetwork(c.err) != c.network ||
			IsValidation(c.err) != c.validation || IsStale(c.err) != c.stale {
			t.Errorf("%v: auth=%v network=%v validation=%v stale=%v", c.err,
				IsAuth(c.err), IsNetwork(c.err), IsValidation(c.err), IsStale(c.err))
		}
	}
	if GetCode(errors.New("plain")) != CodeServerBusy {
		t.Fatal("plain error should map to server busy")
	}
	if Message(nil) != "" {
		t.Fatal("nil message")
	}
}
