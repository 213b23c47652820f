// Package auth is the mock login layer: a fixed credential table, two roles
// and signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("auth: email and password are required")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrForbidden          = errors.New("auth: not allowed for this role")
)

type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
)

// Session identifies a logged-in user.
type Session struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) IsManager() bool {
	return s.Role == RoleManager
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Credential is a row of the login table before hashing.
type Credential struct {
	Email    string
	Password string
	Name     string
	Role     Role
}

// DefaultCredentials is the demo login table.
var DefaultCredentials = []Credential{
	{Email: "usuario@app.com", Password: "123456", Name: "Usuário", Role: RoleUser},
	{Email: "admin@app.com", Password: "123456", Name: "Administrador", Role: RoleManager},
}

type user struct {
	name string
	role Role
	hash []byte
}

type Service struct {
	users  map[string]user
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService hashes the credential table once. secret signs API tokens.
func NewService(creds []Credential, secret string, ttl time.Duration) (*Service, error) {
	s := &Service{
		users:  make(map[string]user, len(creds)),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}

	for _, c := range creds {
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %s: %w", c.Email, err)
		}

		s.users[normalizeEmail(c.Email)] = user{name: c.Name, role: c.Role, hash: hash}
	}

	return s, nil
}

func (s *Service) Login(email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}

	u, ok := s.users[email]
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	return Session{
		Email:     email,
		Name:      u.name,
		Role:      u.role,
		ExpiresAt: s.now().Add(s.ttl),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
