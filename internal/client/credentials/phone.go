package credentials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// PhoneBackend dispatches SMS verification codes.
type PhoneBackend interface {
	SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*models.PhoneDispatch, error)
}

// PhoneCallbacks receive the outcome of a verification request. Exactly one
// of them is invoked per request, on a goroutine owned by the provider.
type PhoneCallbacks struct {
	// AutoVerified is called when the code was retrieved without user input.
	AutoVerified func(*Credential)
	// CodeSent is called once an SMS is on its way.
	CodeSent func(*models.PendingVerification)
	// Failed gets one of common.ErrInvalidPhoneNumber, common.ErrQuotaExceeded,
	// common.ErrProviderDisabled or common.ErrProviderUnavailable.
	Failed func(error)
}

// PhoneProvider drives the SMS verification flow.
type PhoneProvider struct {
	backend PhoneBackend
	logger  logging.Logger
}

func NewPhoneProvider(backend PhoneBackend, logger logging.Logger) *PhoneProvider {
	if logger == nil {
		logger = logging.Nop()
	}
	return &PhoneProvider{backend: backend, logger: logger.With("module", "phone_provider")}
}

// RequestVerification asks the backend to send a code to countryCode+number.
// It returns immediately; the outcome is reported through cb. The timeout is
// passed to the backend and bounds the request, a non-positive value selects
// common.DefaultPhoneVerificationTimeout.
func (p *PhoneProvider) RequestVerification(ctx context.Context, countryCode, number string, timeout time.Duration, cb PhoneCallbacks) {
	p.dispatch(ctx, countryCode, number, timeout, "", cb)
}

// ResendVerification repeats a request. A resend token issued by an earlier
// CodeSent lets the backend skip its resend cool-down.
func (p *PhoneProvider) ResendVerification(ctx context.Context, countryCode, number string, timeout time.Duration, resendToken string, cb PhoneCallbacks) {
	p.dispatch(ctx, countryCode, number, timeout, resendToken, cb)
}

// CompleteVerification builds a phone credential from the code the user typed.
func (p *PhoneProvider) CompleteVerification(pending *models.PendingVerification, code string) (*Credential, error) {
	if pending == nil || pending.VerificationID == "" {
		return nil, fmt.Errorf("%w: no pending verification", common.ErrValidation)
	}
	if err := required("verification code", code); err != nil {
		return nil, err
	}
	return phoneCredential(pending.VerificationID, strings.TrimSpace(code)), nil
}

func phoneCredential(verificationID, code string) *Credential {
	return newCredential(models.SignInRequest{
		Kind:           models.ProviderPhone,
		VerificationID: verificationID,
		Code:           code,
	})
}

// FullNumber joins a country prefix and a local number, dropping the
// separators people tend to type.
func FullNumber(countryCode, number string) string {
	clean := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return clean.Replace(strings.TrimSpace(countryCode)) + clean.Replace(strings.TrimSpace(number))
}

func (p *PhoneProvider) dispatch(ctx context.Context, countryCode, number string, timeout time.Duration, resendToken string, cb PhoneCallbacks) {
	if timeout <= 0 {
		timeout = common.DefaultPhoneVerificationTimeout * time.Second
	}
	full := FullNumber(countryCode, number)

	go func() {
		if strings.TrimSpace(number) == "" {
			cb.failed(fmt.Errorf("%w: number is required", common.ErrInvalidPhoneNumber))
			return
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		res, err := p.backend.SendVerificationCode(ctx, full, timeout, resendToken)
		if err != nil {
			p.logger.Warn(ctx, "phone verification failed", "phone", full, "error", err)
			cb.failed(err)
			return
		}

		if res.AutoVerified {
			p.logger.Info(ctx, "phone number auto-verified", "phone", full)
			cb.autoVerified(phoneCredential(res.VerificationID, res.Code))
			return
		}

		p.logger.Info(ctx, "verification code sent", "phone", full, "resend", resendToken != "")
		cb.codeSent(&models.PendingVerification{
			VerificationID: res.VerificationID,
			ResendToken:    res.ResendToken,
			PhoneNumber:    full,
		})
	}()
}

func (cb PhoneCallbacks) autoVerified(c *Credential) {
	if cb.AutoVerified != nil {
		cb.AutoVerified(c)
	}
}

func (cb PhoneCallbacks) codeSent(v *models.PendingVerification) {
	if cb.CodeSent != nil {
		cb.CodeSent(v)
	}
}

func (cb PhoneCallbacks) failed(err error) {
	if cb.Failed != nil {
		cb.Failed(err)
	}
}
