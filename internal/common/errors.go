// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Sign-in outcome classification. All of them are recoverable.
	ErrValidation          = errors.New("validation error")
	ErrAccountCollision    = errors.New("account exists with different credential")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// Phone flow errors, reported verbatim from the backend.
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrProviderDisabled   = errors.New("provider disabled")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// Session controller errors.
	ErrAlreadyAuthenticating  = errors.New("already authenticating")
	ErrNoActiveSession        = errors.New("no active session")
	ErrCredentialConsumed     = errors.New("credential already consumed")
	ErrAuthenticationCanceled = errors.New("authentication canceled by sign-out")
)

// wireErrors lists the sentinels that travel between server and client by
// their message text.
var wireErrors = []error{
	ErrValidation,
	ErrAccountCollision,
	ErrInvalidCredential,
	ErrProviderUnavailable,
	ErrQuotaExceeded,
	ErrProviderDisabled,
	ErrInvalidPhoneNumber,
	ErrNoActiveSession,
	ErrInvalidToken,
	ErrTokenExpired,
}

// ErrorByMessage returns the sentinel whose text equals msg.
func ErrorByMessage(msg string) (error, bool) {
	for _, e := range wireErrors {
		if e.Error() == msg {
			return e, true
		}
	}
	return nil, false
}
