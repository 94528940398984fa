// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultPhoneVerificationTimeout is the window a client grants the backend to
// dispatch an SMS code or report auto-verification.
const DefaultPhoneVerificationTimeout = 60
