// Package auth inspects the platform API keys the tools authenticate with.
// The keys are JWTs signed by the platform; the tools never hold the signing
// secret, so the claims are decoded without signature verification and are
// only used for diagnostics and for deriving the project reference.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ServiceRole is the role claim carried by keys that bypass row level security.
const ServiceRole = "service_role"

// ErrEmptyKey is returned when no key was configured at all.
var ErrEmptyKey = errors.New("the API key is empty")

// Claims represents the JWT claims of a platform API key.
type Claims struct {
	jwt.RegisteredClaims

	// Role is either "anon" or "service_role".
	Role string `json:"role"`

	// Ref is the project reference the key was issued for.
	Ref string `json:"ref"`
}

// ParseServiceKey decodes the claims of an API key without verifying its signature.
func ParseServiceKey(key string) (*Claims, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(key, claims)
	if err != nil {
		return nil, fmt.Errorf("malformed API key: %w", err)
	}

	return claims, nil
}

// IsServiceRole reports whether the key grants administrative access.
func (c *Claims) IsServiceRole() bool {
	return c.Role == ServiceRole
}

// Expired reports whether the key's exp claim lies before now.
// Keys without an exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}

	return c.ExpiresAt.Time.Before(now)
}
