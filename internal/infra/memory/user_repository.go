package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

type userRecord struct {
	profile domain.UserProfile
	hash    []byte
}

// UserRepository is an in-memory implementation of app.UserRepository with
// unique email and username constraints.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]userRecord
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]userRecord)}
}

func (r *UserRepository) Create(_ context.Context, user domain.UserProfile, passwordHash []byte) (domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.users {
		if record.profile.Email == user.Email || record.profile.Username == user.Username {
			return domain.UserProfile{}, domain.ErrUserExists
		}
	}

	user.ID = uuid.NewString()
	r.users[user.ID] = userRecord{profile: user, hash: passwordHash}
	return user, nil
}

func (r *UserRepository) ByID(_ context.Context, id string) (domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.users[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	return record.profile, nil
}

func (r *UserRepository) ByEmail(_ context.Context, email string) (domain.UserProfile, []byte, error) {
	return r.find(func(p domain.UserProfile) bool { return p.Email == email })
}

func (r *UserRepository) ByUsername(_ context.Context, username string) (domain.UserProfile, []byte, error) {
	return r.find(func(p domain.UserProfile) bool { return p.Username == username })
}

func (r *UserRepository) Update(_ context.Context, user domain.UserProfile) (domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.users[user.ID]
	if !ok {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	record.profile = user
	r.users[user.ID] = record
	return user, nil
}

func (r *UserRepository) find(match func(domain.UserProfile) bool) (domain.UserProfile, []byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.users {
		if match(record.profile) {
			return record.profile, record.hash, nil
		}
	}
	return domain.UserProfile{}, nil, domain.ErrUserNotFound
}
