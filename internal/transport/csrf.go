package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const csrfSubject = "frame-form"

// ErrInvalidCSRFToken is returned for missing, expired or forged form tokens
var ErrInvalidCSRFToken = errors.New("invalid csrf token")

// CSRFManager signs and verifies the hidden token embedded in the upload form
type CSRFManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewCSRFManager builds a token helper using the provided secret
func NewCSRFManager(secretKey string, ttl time.Duration) *CSRFManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CSRFManager{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue returns a fresh signed token for one form render
func (m *CSRFManager) Issue() (string, error) {
	if len(m.secretKey) == 0 {
		return "", errors.New("csrf secret is empty")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   csrfSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign csrf token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, subject and expiry
func (m *CSRFManager) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrInvalidCSRFToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return m.secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(csrfSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCSRFToken, err)
	}
	if !token.Valid {
		return ErrInvalidCSRFToken
	}
	return nil
}
