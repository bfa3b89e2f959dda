// Package auth turns session tokens into search sessions.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kailas-cloud/mdsearch/internal/domain/session"
)

var (
	// ErrInvalidToken signals a token that fails signature or claim checks.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrNotConfigured signals a token presented without a configured secret.
	ErrNotConfigured = errors.New("session tokens not configured")
)

// Claims carries the catalog session in a JWT.
type Claims struct {
	Profile string   `json:"profile"`
	Groups  []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a verifier. Issuer and audience are checked when set.
func NewVerifier(secret, issuer, audience string) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

// Session parses token into a session. An empty token is an anonymous guest.
func (v *Verifier) Session(token string) (session.Session, error) {
	if token == "" {
		return session.Anonymous(), nil
	}
	if len(v.secret) == 0 {
		return session.Session{}, ErrNotConfigured
	}

	var claims Claims
	if _, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}); err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	profile := session.Profile(claims.Profile)
	if !profile.IsValid() {
		return session.Session{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidToken, claims.Profile)
	}
	if claims.Subject == "" {
		return session.Session{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return session.Session{
		UserID:        claims.Subject,
		Profile:       profile,
		Groups:        claims.Groups,
		Authenticated: profile != session.Guest,
	}, nil
}
