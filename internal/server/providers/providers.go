// Package providers verifies third-party sign-in assertions (Google ID
// tokens, Facebook access tokens, Twitter OAuth1 pairs, Firebase ID tokens)
// and reports the account they vouch for.
//
// Verifiers return common.ErrInvalidCredential when the provider rejects the
// assertion and common.ErrProviderUnavailable when it cannot be reached.
package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Identity is the provider account behind a verified assertion.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	PhoneNumber   string
}

// Verifier checks one provider's assertion. secret is only used by OAuth1
// providers.
type Verifier interface {
	Verify(ctx context.Context, token, secret string) (*Identity, error)
}

// Registry maps provider names to verifiers.
type Registry map[string]Verifier

// Get returns common.ErrProviderDisabled for unregistered providers.
func (r Registry) Get(provider string) (Verifier, error) {
	v, ok := r[provider]
	if !ok || v == nil {
		return nil, common.ErrProviderDisabled
	}
	return v, nil
}

const defaultHTTPTimeout = 10 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// classifyStatus maps a provider HTTP status to a sign-in error.
func classifyStatus(provider string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return fmt.Errorf("%s: http %d: %w", provider, code, common.ErrProviderUnavailable)
	default:
		return fmt.Errorf("%s: http %d: %w", provider, code, common.ErrInvalidCredential)
	}
}

func unavailable(provider string, err error) error {
	return fmt.Errorf("%s: %v: %w", provider, err, common.ErrProviderUnavailable)
}
