package crypto

import (
	"strings"
	"testing"
)

func TestNewSessionToken_FormatAndUniqueness(t *testing.T) {
	t.Parallel()

	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64", len(a))
	}
	if a != strings.ToLower(a) {
		t.Fatalf("token not lowercase hex: %s", a)
	}

	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken(2): %v", err)
	}
	if a == b {
		t.Fatalf("two subsequent tokens are equal")
	}
}

func TestNewResetCode_SixDigits(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := NewResetCode()
		if err != nil {
			t.Fatalf("NewResetCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code length = %d, want 6 (%q)", len(code), code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestHashResetCode_BoundToEmailAndCode(t *testing.T) {
	t.Parallel()

	h := HashResetCode("a@x.com", "123456")
	if h != HashResetCode("a@x.com", "123456") {
		t.Fatalf("digest not deterministic")
	}
	if len(h) != 64 {
		t.Fatalf("digest length = %d, want 64", len(h))
	}
	if h == HashResetCode("b@x.com", "123456") {
		t.Fatalf("digest should differ per email")
	}
	if h == HashResetCode("a@x.com", "123457") {
		t.Fatalf("digest should differ per code")
	}
}
