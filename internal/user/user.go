// Package user defines the platform user record returned by the
// auth admin API when a user is created.
package user

import "time"

// User represents an auth user as the platform reports it back.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	Email string `json:"email"`

	// EmailConfirmedAt is nil while the email address is unverified.
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`

	UserMetadata map[string]any `json:"user_metadata,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// IsEmailConfirmed reports whether the platform marked the email as verified.
func (u *User) IsEmailConfirmed() bool {
	return u != nil && u.EmailConfirmedAt != nil
}
