package auth

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

const testSecret = "mdsearch-test-secret-of-reasonable-length"

func sign(t *testing.T, secret string, method jwt.SigningMethod, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func claims(profile, subject string, ttl time.Duration) Claims {
	return Claims{
		Profile: profile,
		Groups:  []string{"2", "5"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "catalog",
			Audience:  jwt.ClaimStrings{"mdsearch"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestSession_Valid(t *testing.T) {
	v := NewVerifier(testSecret, "catalog", "mdsearch")
	tok := sign(t, testSecret, jwt.SigningMethodHS256, claims("Editor", "42", time.Hour))

	s, err := v.Session(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.UserID != "42" || s.Profile != session.Editor || !s.Authenticated {
		t.Errorf("unexpected session %+v", s)
	}
	if !slices.Equal(s.Groups, []string{"2", "5"}) {
		t.Errorf("expected groups [2 5], got %v", s.Groups)
	}
}

func TestSession_Empty(t *testing.T) {
	s, err := NewVerifier("", "", "").Session("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Authenticated || s.Profile != session.Guest {
		t.Errorf("expected anonymous guest, got %+v", s)
	}
}

func TestSession_GuestProfileIsUnauthenticated(t *testing.T) {
	v := NewVerifier(testSecret, "", "")
	s, err := v.Session(sign(t, testSecret, jwt.SigningMethodHS256, claims("Guest", "9", time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Authenticated {
		t.Error("guest token must not authenticate")
	}
}

func TestSession_Rejected(t *testing.T) {
	v := NewVerifier(testSecret, "catalog", "mdsearch")

	otherIssuer := claims("Editor", "42", time.Hour)
	otherIssuer.Issuer = "elsewhere"
	otherAudience := claims("Editor", "42", time.Hour)
	otherAudience.Audience = jwt.ClaimStrings{"billing"}
	noExpiry := claims("Editor", "42", time.Hour)
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(t, testSecret, jwt.SigningMethodHS256, claims("Editor", "42", -time.Minute))},
		{"wrong secret", sign(t, "another-secret-entirely", jwt.SigningMethodHS256, claims("Editor", "42", time.Hour))},
		{"wrong method", sign(t, testSecret, jwt.SigningMethodHS512, claims("Editor", "42", time.Hour))},
		{"wrong issuer", sign(t, testSecret, jwt.SigningMethodHS256, otherIssuer)},
		{"wrong audience", sign(t, testSecret, jwt.SigningMethodHS256, otherAudience)},
		{"no expiry", sign(t, testSecret, jwt.SigningMethodHS256, noExpiry)},
		{"unknown profile", sign(t, testSecret, jwt.SigningMethodHS256, claims("Root", "42", time.Hour))},
		{"missing subject", sign(t, testSecret, jwt.SigningMethodHS256, claims("Editor", "", time.Hour))},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Session(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSession_NoSecret(t *testing.T) {
	tok := sign(t, testSecret, jwt.SigningMethodHS256, claims("Editor", "42", time.Hour))
	if _, err := NewVerifier("", "", "").Session(tok); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
