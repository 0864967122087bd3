// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

// Domain outcomes of the auth operations. Handlers switch on these to pick
// a redirect destination and a flash notice; anything not in this list is
// an unexpected lower-layer failure and is shown as a generic notice.
var (
	// ErrDuplicateAccount is returned when registering with an email that
	// already belongs to an existing user.
	ErrDuplicateAccount = errors.New("an account with this email already exists")

	// ErrUnknownAccount is returned when no user exists for the given email.
	ErrUnknownAccount = errors.New("no account with this email")

	// ErrBadPassword is returned when the user exists but the password
	// does not verify against the stored hash.
	ErrBadPassword = errors.New("incorrect password")

	// ErrInvalidToken is returned when no user holds the given reset
	// token, or the token has expired.
	ErrInvalidToken = errors.New("invalid or expired reset token")

	// ErrPasswordMismatch is returned when the new password and its
	// confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrDeliveryFailed is returned when the mailer did not confirm
	// acceptance of the reset mail.
	ErrDeliveryFailed = errors.New("could not deliver the reset email")
)
