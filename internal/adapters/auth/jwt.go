// Package auth adapts handshake tokens to session identity. Authentication
// itself is owned by the external identity service; this adapter only
// verifies the handshake artifact it issues and extracts the user and
// organization for session admission.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified outcome of a handshake.
type Identity struct {
	UserID         string
	OrganizationID string
}

// Authenticator verifies a handshake token for a tenant.
type Authenticator interface {
	Verify(ctx context.Context, token, tenantID string) (Identity, error)
}

type handshakeClaims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	TenantID       string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 handshake tokens signed by the identity
// service with a shared secret.
type JWTAuthenticator struct {
	secret []byte
	leeway time.Duration
}

// Option applies a configuration option to the JWTAuthenticator.
type Option func(*JWTAuthenticator)

// WithLeeway sets the clock-skew tolerance for expiry checks.
func WithLeeway(d time.Duration) Option {
	return func(a *JWTAuthenticator) {
		if d > 0 {
			a.leeway = d
		}
	}
}

// NewJWTAuthenticator builds an authenticator from the shared secret.
func NewJWTAuthenticator(secret string, opts ...Option) (*JWTAuthenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("handshake secret is required")
	}
	a := &JWTAuthenticator{secret: []byte(secret), leeway: 30 * time.Second}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Verify parses and validates the token, then checks that its tenant claim
// matches the handshake's tenant. Any failure maps to ErrRejected: a failed
// handshake never creates a session.
func (a *JWTAuthenticator) Verify(_ context.Context, token, tenantID string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &handshakeClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(a.leeway))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrRejected, err)
	}
	claims, ok := parsed.Claims.(*handshakeClaims)
	if !ok || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: invalid claims", ErrRejected)
	}
	if strings.TrimSpace(claims.UserID) == "" || strings.TrimSpace(claims.OrganizationID) == "" {
		return Identity{}, fmt.Errorf("%w: missing identity claims", ErrRejected)
	}
	if claims.TenantID != tenantID {
		return Identity{}, fmt.Errorf("%w: tenant mismatch", ErrRejected)
	}
	return Identity{UserID: claims.UserID, OrganizationID: claims.OrganizationID}, nil
}
