// Package models defines the values exchanged between credential providers,
// the backend client and the session controller.
package models

// ProviderKind tags a credential with the identity method that produced it.
type ProviderKind string

const (
	ProviderPassword ProviderKind = "password"
	ProviderGoogle   ProviderKind = "google"
	ProviderFacebook ProviderKind = "facebook"
	ProviderTwitter  ProviderKind = "twitter"
	ProviderPhone    ProviderKind = "phone"
	ProviderFirebase ProviderKind = "firebase"
)

// Session is the authenticated principal. Email and PhoneNumber are empty
// when the backend does not know them.
type Session struct {
	ID            string
	Email         string
	PhoneNumber   string
	EmailVerified bool
	Provider      ProviderKind

	// IDToken is the backend-issued token used for follow-up calls.
	IDToken string
}

// PendingVerification is the state of a phone sign-in between code dispatch
// and code submission.
type PendingVerification struct {
	VerificationID string
	ResendToken    string
	PhoneNumber    string
}

// SignInRequest is the backend view of a credential. Only the fields relevant
// to Kind are set.
type SignInRequest struct {
	Kind           ProviderKind
	Email          string
	Password       string
	Token          string
	Secret         string
	VerificationID string
	Code           string
}

// PhoneDispatch is the backend answer to a verification code request.
type PhoneDispatch struct {
	VerificationID string
	ResendToken    string
	AutoVerified   bool
	Code           string
}
