package logging

import "testing"

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatalf("expected non-nil logger")
	}
	logger := NewComponentLogger("test")
	if OrNop(logger) != logger {
		t.Fatalf("expected passthrough for non-nil logger")
	}
}

func TestUserTag(t *testing.T) {
	if got := UserTag("short"); got != "short" {
		t.Fatalf("unexpected tag: %s", got)
	}
	if got := UserTag("user-1234567890"); got != "user-123" {
		t.Fatalf("unexpected tag: %s", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("短文本", 10); got != "短文本" {
		t.Fatalf("unexpected preview: %s", got)
	}
	if got := Preview("0123456789abcdef", 10); got != "0123456789..." {
		t.Fatalf("unexpected preview: %s", got)
	}
}
