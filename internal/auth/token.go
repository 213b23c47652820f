package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs the session as an HS256 JWT.
func (s *Service) IssueToken(sess Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: sess.Name,
		Role: sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Email,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (s *Service) ParseToken(raw string) (Session, error) {
	var c claims

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return Session{
		Email:     c.Subject,
		Name:      c.Name,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
