// Package proto holds the wire contract of gophauth.IdentityService: request
// and response messages, the gRPC service descriptor and a client stub.
//
// Messages travel as JSON through the codec registered in codec.go, so the
// package has no generated code.
package proto

// Provider names as they appear on the wire.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderTwitter  = "twitter"
	ProviderPhone    = "phone"
	ProviderFirebase = "firebase"
)

type User struct {
	Id            string `json:"id"`
	Email         string `json:"email,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Provider      string `json:"provider"`
}

// SignInRequest carries one credential. Which fields are set depends on
// Provider:
//
//	password  Email, Password
//	google    Token (ID token)
//	facebook  Token (access token)
//	twitter   Token, Secret
//	firebase  Token (Firebase ID token)
//	phone     VerificationId, Code
type SignInRequest struct {
	Provider       string `json:"provider"`
	Email          string `json:"email,omitempty"`
	Password       string `json:"password,omitempty"`
	Token          string `json:"token,omitempty"`
	Secret         string `json:"secret,omitempty"`
	VerificationId string `json:"verification_id,omitempty"`
	Code           string `json:"code,omitempty"`
}

type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

type SendEmailVerificationRequest struct{}

type SendEmailVerificationResponse struct {
	Email string `json:"email"`
}

type SendVerificationCodeRequest struct {
	PhoneNumber    string `json:"phone_number"`
	TimeoutSeconds int32  `json:"timeout_seconds"`
	ResendToken    string `json:"resend_token,omitempty"`
}

// SendVerificationCodeResponse reports either a dispatched SMS or, for numbers
// the backend can verify on its own, an auto-retrieved Code.
type SendVerificationCodeResponse struct {
	VerificationId string `json:"verification_id"`
	ResendToken    string `json:"resend_token,omitempty"`
	AutoVerified   bool   `json:"auto_verified"`
	Code           string `json:"code,omitempty"`
}

type UnlinkRequest struct {
	Provider string `json:"provider"`
}

type UnlinkResponse struct{}
