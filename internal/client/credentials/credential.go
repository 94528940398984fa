// Package credentials turns provider-specific proofs of identity (passwords,
// OAuth tokens, SMS codes) into single-use Credential values accepted by the
// session controller.
package credentials

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Credential is an opaque, immutable proof of identity. It can be consumed
// once; replaying it requires a fresh constructor call.
type Credential struct {
	req      models.SignInRequest
	consumed atomic.Bool
}

func newCredential(req models.SignInRequest) *Credential {
	return &Credential{req: req}
}

// Kind reports the provider that produced the credential.
func (c *Credential) Kind() models.ProviderKind {
	return c.req.Kind
}

// Consume hands out the backend request exactly once.
func (c *Credential) Consume() (models.SignInRequest, error) {
	if !c.consumed.CompareAndSwap(false, true) {
		return models.SignInRequest{}, common.ErrCredentialConsumed
	}
	return c.req, nil
}

// Consumed reports whether Consume has already succeeded.
func (c *Credential) Consumed() bool {
	return c.consumed.Load()
}

// String never includes secrets.
func (c *Credential) String() string {
	return fmt.Sprintf("credential(%s)", c.req.Kind)
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", common.ErrValidation, name)
	}
	return nil
}

// Password builds an email/password credential.
func Password(email, password string) (*Credential, error) {
	if err := required("email", email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return newCredential(models.SignInRequest{
		Kind:     models.ProviderPassword,
		Email:    strings.TrimSpace(email),
		Password: password,
	}), nil
}

// FromIDToken wraps a Google ID token.
func FromIDToken(token string) (*Credential, error) {
	return fromToken(models.ProviderGoogle, "id token", token)
}

// FromAccessToken wraps a Facebook access token.
func FromAccessToken(token string) (*Credential, error) {
	return fromToken(models.ProviderFacebook, "access token", token)
}

// FromFirebaseIDToken wraps an ID token minted by Firebase Authentication.
func FromFirebaseIDToken(token string) (*Credential, error) {
	return fromToken(models.ProviderFirebase, "firebase id token", token)
}

// FromOAuthPair wraps a Twitter OAuth 1.0a token and secret.
func FromOAuthPair(token, secret string) (*Credential, error) {
	if err := required("oauth token", token); err != nil {
		return nil, err
	}
	if err := required("oauth secret", secret); err != nil {
		return nil, err
	}
	return newCredential(models.SignInRequest{
		Kind:   models.ProviderTwitter,
		Token:  strings.TrimSpace(token),
		Secret: strings.TrimSpace(secret),
	}), nil
}

func fromToken(kind models.ProviderKind, name, token string) (*Credential, error) {
	if err := required(name, token); err != nil {
		return nil, err
	}
	return newCredential(models.SignInRequest{Kind: kind, Token: strings.TrimSpace(token)}), nil
}
