package session

import (
	"testing"
	"time"

	"quiz-attempt-service/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(domain.UserProfile{ID: "u1", Email: "a@example.com", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	if _, err := m.Verify("not-a-token"); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := m.Verify(""); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated for empty token, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue(domain.UserProfile{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issued
	m := NewManagerWithClock("test-secret", time.Hour, func() time.Time { return clock })

	token, err := m.Issue(domain.UserProfile{ID: "u1"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = issued.Add(30 * time.Minute)
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("expected token still valid, got %v", err)
	}

	clock = issued.Add(2 * time.Hour)
	if _, err := m.Verify(token); err != domain.ErrUnauthenticated {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
