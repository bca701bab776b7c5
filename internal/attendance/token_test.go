package attendance

import (
	"errors"
	"testing"
)

func TestBuildAndParseToken(t *testing.T) {
	token := BuildToken("7d6a4f5e-9c1b-4f6e-8a2d-0123456789ab")
	if token != "attendance://7d6a4f5e-9c1b-4f6e-8a2d-0123456789ab" {
		t.Fatalf("unexpected token %q", token)
	}
	id, err := ParseToken(token)
	if err != nil {
		t.Fatalf("expected token to parse, got %v", err)
	}
	if id != "7d6a4f5e-9c1b-4f6e-8a2d-0123456789ab" {
		t.Fatalf("unexpected session id %q", id)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	for _, bad := range []string{"", "attendance://", "checkin://abc", "abc"} {
		if _, err := ParseToken(bad); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("expected ErrMalformedToken for %q, got %v", bad, err)
		}
	}
}

func TestNewSessionCode(t *testing.T) {
	seen := make(map[string]struct{})
	for n := 0; n < 100; n++ {
		code, err := NewSessionCode()
		if err != nil {
			t.Fatalf("expected code generation to succeed, got %v", err)
		}
		if code == "" {
			t.Fatal("expected non-empty code")
		}
		if _, dup := seen[code]; dup {
			t.Fatalf("code %q generated twice", code)
		}
		seen[code] = struct{}{}
	}
}
