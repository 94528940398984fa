package models

import "time"

// PhoneVerification is a pending SMS code. It lives in the cache under its
// ID until it expires or is redeemed. Attempts are counted under a separate
// key.
type PhoneVerification struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	CodeHash    string    `json:"code_hash"`
	ResendToken string    `json:"resend_token"`
	SentAt      time.Time `json:"sent_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the code can no longer be redeemed at now.
func (v *PhoneVerification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// EmailVerification is the payload behind a verification link token.
type EmailVerification struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
