// Package session issues and verifies the signed, time-limited credential
// that carries a user's identity between requests. The quiz core never
// inspects tokens itself; it only sees the user ID (or an empty one when
// no valid credential is presented).
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quiz-attempt-service/internal/domain"
)

// Claims is the identity payload carried by a credential.
type Claims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 credentials with a fixed validity window.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

const defaultTTL = 24 * time.Hour

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// NewManagerWithClock is test-only for deterministic expiry.
func NewManagerWithClock(secret string, ttl time.Duration, now func() time.Time) *Manager {
	m := NewManager(secret, ttl)
	m.now = now
	return m
}

// Issue signs a credential for user. The token expires after the
// manager's TTL.
func (m *Manager) Issue(user domain.UserProfile) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a credential. Any failure (bad signature,
// malformed token, expired window) collapses to ErrUnauthenticated.
func (m *Manager) Verify(token string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthenticated
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Claims{}, domain.ErrUnauthenticated
	}
	return claims, nil
}
