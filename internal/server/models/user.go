package models

import "time"

// Provider names stored in Identity.Provider.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderTwitter  = "twitter"
	ProviderPhone    = "phone"
	ProviderFirebase = "firebase"
)

// User is an account. Email and PhoneNumber are optional; a user signed in
// only by phone has no email and vice versa.
type User struct {
	ID            string
	Email         string
	PhoneNumber   string
	EmailVerified bool
	// PasswordHash is an argon2id PHC string, empty for accounts without a
	// password identity.
	PasswordHash string
	CreatedAt    time.Time
}

// Identity links a User to one provider account. Provider+Subject is unique.
type Identity struct {
	ID       string
	UserID   string
	Provider string
	// Subject is the provider's stable id: the email for password, the
	// `sub` claim for Google and Firebase, the numeric id for Facebook and
	// Twitter, the E.164 number for phone.
	Subject   string
	Email     string
	CreatedAt time.Time
}
