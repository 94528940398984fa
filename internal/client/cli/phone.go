package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/credentials"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// phoneResult carries whichever phone callback fired.
type phoneResult struct {
	cred    *credentials.Credential
	pending *models.PendingVerification
	err     error
}

func (a *App) PhoneRequest(ctx context.Context, countryCode, number string) error {
	a.mu.Lock()
	a.country, a.number, a.pending = countryCode, number, nil
	a.mu.Unlock()

	return a.awaitPhone(ctx, func(cb credentials.PhoneCallbacks) {
		a.phone.RequestVerification(ctx, countryCode, number, a.config.PhoneVerificationTimeout, cb)
	})
}

func (a *App) PhoneResend(ctx context.Context) error {
	a.mu.Lock()
	country, number := a.country, a.number
	var token string
	if a.pending != nil {
		token = a.pending.ResendToken
	}
	a.mu.Unlock()

	if number == "" {
		return fmt.Errorf("%w: request a code with phone-request first", common.ErrValidation)
	}
	return a.awaitPhone(ctx, func(cb credentials.PhoneCallbacks) {
		a.phone.ResendVerification(ctx, country, number, a.config.PhoneVerificationTimeout, token, cb)
	})
}

func (a *App) PhoneVerify(ctx context.Context, code string) error {
	a.mu.Lock()
	pending := a.pending
	a.mu.Unlock()

	cred, err := a.phone.CompleteVerification(pending, code)
	if err != nil {
		return err
	}
	if _, err := a.session.SignIn(ctx, cred); err != nil {
		return err
	}

	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()
	return nil
}

// awaitPhone starts a phone request and blocks until its callback fires, so
// the outcome is printed before the next prompt.
func (a *App) awaitPhone(ctx context.Context, start func(credentials.PhoneCallbacks)) error {
	done := make(chan phoneResult, 1)
	start(credentials.PhoneCallbacks{
		AutoVerified: func(c *credentials.Credential) { done <- phoneResult{cred: c} },
		CodeSent:     func(p *models.PendingVerification) { done <- phoneResult{pending: p} },
		Failed:       func(err error) { done <- phoneResult{err: err} },
	})

	var res phoneResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	switch {
	case res.err != nil:
		return res.err
	case res.cred != nil:
		fmt.Fprintln(a.out, "Phone number verified automatically")
		_, err := a.session.SignIn(ctx, res.cred)
		return err
	default:
		a.mu.Lock()
		a.pending = res.pending
		a.mu.Unlock()
		fmt.Fprintf(a.out, "Code sent to %s, enter it with phone-verify <code>\n", res.pending.PhoneNumber)
		return nil
	}
}
