package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-attempt-service/internal/domain"
)

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, domain.UserProfile{
		Email:       "alice@example.com",
		Username:    "alice",
		DisplayName: "Alice",
		CreatedAt:   time.Now(),
	}, []byte("hash"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}

	byID, err := repo.ByID(ctx, user.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("byID: %+v %v", byID, err)
	}

	byEmail, hash, err := repo.ByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != user.ID || string(hash) != "hash" {
		t.Fatalf("byEmail: %+v %v", byEmail, err)
	}

	if _, _, err := repo.ByUsername(ctx, "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryRejectsDuplicates(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, domain.UserProfile{Email: "a@example.com", Username: "a"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.UserProfile{Email: "a@example.com", Username: "b"}, nil); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate email rejected, got %v", err)
	}
	if _, err := repo.Create(ctx, domain.UserProfile{Email: "b@example.com", Username: "a"}, nil); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected duplicate username rejected, got %v", err)
	}
}

func TestUserRepositoryUpdate(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user, err := repo.Create(ctx, domain.UserProfile{Email: "a@example.com", Username: "a", DisplayName: "A"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	user.DisplayName = "Alice"
	user.Bio = "learning Go"
	updated, err := repo.Update(ctx, user)
	if err != nil || updated.DisplayName != "Alice" {
		t.Fatalf("update: %+v %v", updated, err)
	}

	stored, _ := repo.ByID(ctx, user.ID)
	if stored.Bio != "learning Go" {
		t.Fatalf("expected persisted bio, got %q", stored.Bio)
	}

	if _, err := repo.Update(ctx, domain.UserProfile{ID: "missing"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
