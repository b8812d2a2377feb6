package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/session"
)

// UserRepository abstracts account persistence. The memory implementation
// under internal/infra/memory is the default; nothing in the services
// depends on a concrete backend.
type UserRepository interface {
	Create(ctx context.Context, user domain.UserProfile, passwordHash []byte) (domain.UserProfile, error)
	ByID(ctx context.Context, id string) (domain.UserProfile, error)
	ByEmail(ctx context.Context, email string) (domain.UserProfile, []byte, error)
	ByUsername(ctx context.Context, username string) (domain.UserProfile, []byte, error)
	Update(ctx context.Context, user domain.UserProfile) (domain.UserProfile, error)
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// stored value unchanged.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// AuthService signs users up, logs them in, and serves profiles. Tokens
// come from the session manager; password hashes never leave the
// repository boundary.
type AuthService struct {
	users    UserRepository
	sessions *session.Manager
	now      func() time.Time
}

func NewAuthService(users UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{users: users, sessions: sessions, now: time.Now}
}

// SignUp creates an account and issues a credential for it.
func (s *AuthService) SignUp(ctx context.Context, email, username, displayName, password string) (domain.UserProfile, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserProfile{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user, err := s.users.Create(ctx, domain.UserProfile{
		Email:       email,
		Username:    username,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, hash)
	if err != nil {
		return domain.UserProfile{}, "", err
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return domain.UserProfile{}, "", fmt.Errorf("issue credential: %w", err)
	}
	return user, token, nil
}

// LogIn accepts an email or a username. A wrong password and an unknown
// account both collapse to ErrInvalidCredentials.
func (s *AuthService) LogIn(ctx context.Context, emailOrUsername, password string) (domain.UserProfile, string, error) {
	user, hash, err := s.users.ByEmail(ctx, emailOrUsername)
	if err != nil {
		user, hash, err = s.users.ByUsername(ctx, emailOrUsername)
	}
	if err != nil {
		return domain.UserProfile{}, "", domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return domain.UserProfile{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return domain.UserProfile{}, "", fmt.Errorf("issue credential: %w", err)
	}
	return user, token, nil
}

// Identify resolves a credential to its user. An invalid or expired token
// yields ErrUnauthenticated; callers treat that as the anonymous path.
func (s *AuthService) Identify(ctx context.Context, token string) (domain.UserProfile, error) {
	claims, err := s.sessions.Verify(token)
	if err != nil {
		return domain.UserProfile{}, err
	}
	user, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		return domain.UserProfile{}, domain.ErrUnauthenticated
	}
	return user, nil
}

// Profile returns the account for id.
func (s *AuthService) Profile(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.users.ByID(ctx, id)
}

// UpdateProfile applies the non-nil fields of update to the account.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (domain.UserProfile, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	user.UpdatedAt = s.now()
	return s.users.Update(ctx, user)
}
