package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestCSRFManager_IssueAndVerify(t *testing.T) {
	m := NewCSRFManager("test-secret", time.Hour)

	token, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := m.Verify(token); err != nil {
		t.Errorf("Expected fresh token to verify, got %v", err)
	}

	other, _ := m.Issue()
	if other == token {
		t.Error("Expected every issued token to be unique")
	}
}

func TestCSRFManager_Rejects(t *testing.T) {
	m := NewCSRFManager("test-secret", time.Minute)
	valid, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	forged, err := NewCSRFManager("other-secret", time.Minute).Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	wrongSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "session",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: csrfSubject,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered", valid + "x"},
		{"other secret", forged},
		{"wrong subject", wrongSubject},
		{"no expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Verify(tt.token)
			if !errors.Is(err, ErrInvalidCSRFToken) {
				t.Errorf("Expected ErrInvalidCSRFToken, got %v", err)
			}
		})
	}
}

func TestCSRFManager_Expiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewCSRFManager("test-secret", 10*time.Minute)
	m.now = func() time.Time { return issued }

	token, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	m.now = func() time.Time { return issued.Add(5 * time.Minute) }
	if err := m.Verify(token); err != nil {
		t.Errorf("Expected token to be valid before expiry, got %v", err)
	}

	m.now = func() time.Time { return issued.Add(11 * time.Minute) }
	if err := m.Verify(token); !errors.Is(err, ErrInvalidCSRFToken) {
		t.Errorf("Expected expired token to be rejected, got %v", err)
	}
}

func TestCSRFManager_EmptySecret(t *testing.T) {
	if _, err := NewCSRFManager("", time.Minute).Issue(); err == nil {
		t.Error("Expected error for empty secret")
	}
}
