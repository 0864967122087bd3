// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and password-recovery state.
type User struct {
	// ID is the unique identifier for the user, assigned by the store at
	// creation time and immutable afterwards.
	ID string `gorm:"primaryKey;size:36" bson:"_id,omitempty"`

	// Name is the display name shown on the user's posts.
	Name string `gorm:"size:255;not null" bson:"name"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null" bson:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This never stores the plaintext.
	PasswordHash string `gorm:"size:255;not null" bson:"password_hash"`

	// ResetToken is the outstanding password-reset token, empty when no
	// reset flow is in progress. At most one token is outstanding per
	// user; issuing a new one replaces it.
	ResetToken string `gorm:"index;size:64" bson:"reset_token,omitempty"`

	// ResetTokenIssuedAt is when ResetToken was issued, nil when no
	// token is outstanding. Tokens past their configured lifetime
	// validate as absent. A pointer so the cleared state persists as
	// SQL NULL: MySQL in strict mode rejects the zero time.Time
	// ("0000-00-00") that a value field would write.
	ResetTokenIssuedAt *time.Time `bson:"reset_token_issued_at,omitempty"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `bson:"updated_at"`
}

// HasResetToken reports whether a reset flow is in progress.
func (u *User) HasResetToken() bool {
	return u.ResetToken != ""
}
