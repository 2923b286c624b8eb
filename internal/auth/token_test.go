package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, secret string) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	token, err := codec.Issue("test@example.com", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	subject, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "test@example.com" {
		t.Fatalf("unexpected subject: %s", subject)
	}
}

func TestIssueNormalizesSubject(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	token, err := codec.Issue("  Test@Example.COM ", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	subject, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "test@example.com" {
		t.Fatalf("subject was not normalized: %s", subject)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	token, err := codec.Issue("test@example.com", time.Now().Add(-2*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "another-secret")

	token, err := other.Issue("test@example.com", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyExpiredWinsOverBadSignature(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	other := newTestCodec(t, "another-secret")

	token, err := other.Issue("test@example.com", time.Now().Add(-2*time.Hour), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired for expired mis-signed token, got %v", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	for _, token := range []string{"", "   ", "invalid.jwt.token", "not-a-token"} {
		if _, err := codec.Verify(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q): expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	codec := newTestCodec(t, "test-secret")
	if _, err := codec.Issue("   ", time.Now(), time.Hour); err == nil {
		t.Fatal("expected error for blank subject")
	}
}

func TestDifferentSubjectsGetDifferentTokens(t *testing.T) {
	codec := newTestCodec(t, "test-secret")

	token1, err := codec.Issue("user1@example.com", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	token2, err := codec.Issue("user2@example.com", time.Now(), time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token1 == token2 {
		t.Fatal("expected distinct tokens")
	}

	sub1, err := codec.Verify(token1)
	if err != nil {
		t.Fatalf("Verify token1: %v", err)
	}
	sub2, err := codec.Verify(token2)
	if err != nil {
		t.Fatalf("Verify token2: %v", err)
	}
	if sub1 != "user1@example.com" || sub2 != "user2@example.com" {
		t.Fatalf("subjects mixed up: %s / %s", sub1, sub2)
	}
}
