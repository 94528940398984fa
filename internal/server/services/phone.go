package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// PhoneDispatch is the outcome of a verification code request. For
// auto-verified numbers Code carries the code and no SMS was sent.
type PhoneDispatch struct {
	VerificationID string
	ResendToken    string
	AutoVerified   bool
	Code           string
}

func verificationKey(id string) string { return "phone:v:" + id }
func phoneNumberKey(num string) string { return "phone:n:" + num }
func attemptsKey(id string) string      { return "phone:a:" + id }

// SendVerificationCode starts or restarts phone verification for an E.164
// number. A second request within the resend cool-down returns the pending
// verification unless a matching resend token is supplied.
func (s *IdentityService) SendVerificationCode(ctx context.Context, phoneNumber string, timeout time.Duration, resendToken string) (*PhoneDispatch, error) {
	if !s.cfg.ProviderEnabled(models.ProviderPhone) {
		return nil, common.ErrProviderDisabled
	}
	if !e164.MatchString(phoneNumber) {
		return nil, common.ErrInvalidPhoneNumber
	}
	if timeout <= 0 {
		timeout = common.DefaultPhoneVerificationTimeout * time.Second
	}

	now := s.now()
	pending, err := s.pendingFor(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	if code, ok := s.cfg.Phone.TestNumbers[phoneNumber]; ok {
		v, err := s.storeVerification(ctx, phoneNumber, code, pending, now)
		if err != nil {
			return nil, err
		}
		s.metrics.ObservePhoneCode("auto_verified")
		return &PhoneDispatch{VerificationID: v.ID, ResendToken: v.ResendToken, AutoVerified: true, Code: code}, nil
	}

	if pending != nil {
		if resendToken == "" {
			if now.Sub(pending.SentAt) < s.cfg.Phone.ResendCooldown {
				s.metrics.ObservePhoneCode("reused")
				return &PhoneDispatch{VerificationID: pending.ID, ResendToken: pending.ResendToken}, nil
			}
		} else if subtle.ConstantTimeCompare([]byte(resendToken), []byte(pending.ResendToken)) != 1 {
			return nil, fmt.Errorf("unknown resend token: %w", common.ErrValidation)
		}
	}

	res, err := s.limiter.Allow(ctx, "phone:"+phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if !res.Allowed {
		s.metrics.ObservePhoneCode("quota")
		return nil, common.ErrQuotaExceeded
	}

	code, err := common.MakeRandDigits(s.cfg.Phone.CodeLength)
	if err != nil {
		return nil, common.ErrorInternal
	}

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	body := fmt.Sprintf("%s is your verification code.", code)
	if err := s.sms.SendSMS(sendCtx, phoneNumber, body); err != nil {
		s.metrics.ObservePhoneCode("failed")
		return nil, fmt.Errorf("send sms: %v: %w", err, common.ErrProviderUnavailable)
	}

	v, err := s.storeVerification(ctx, phoneNumber, code, pending, now)
	if err != nil {
		return nil, err
	}

	if pending != nil {
		s.metrics.ObservePhoneCode("resent")
	} else {
		s.metrics.ObservePhoneCode("sent")
	}
	s.logger.Info(ctx, "verification code sent", "verification_id", v.ID)
	return &PhoneDispatch{VerificationID: v.ID, ResendToken: v.ResendToken}, nil
}

// pendingFor returns the live verification for phoneNumber, or nil.
func (s *IdentityService) pendingFor(ctx context.Context, phoneNumber string) (*models.PhoneVerification, error) {
	id, err := s.cache.Get(ctx, phoneNumberKey(phoneNumber))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	v, err := s.loadVerification(ctx, string(id))
	if err != nil || v == nil {
		return nil, err
	}
	if v.Expired(s.now()) {
		return nil, nil
	}
	return v, nil
}

// storeVerification replaces prev, if any, with a fresh verification for
// code. The resend token survives resends.
func (s *IdentityService) storeVerification(ctx context.Context, phoneNumber, code string, prev *models.PhoneVerification, now time.Time) (*models.PhoneVerification, error) {
	v := &models.PhoneVerification{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		CodeHash:    cryptox.HashSecret(code),
		SentAt:      now,
		ExpiresAt:   now.Add(s.cfg.Phone.CodeTTL),
	}
	if prev != nil {
		v.ResendToken = prev.ResendToken
		if err := s.cache.Delete(ctx, verificationKey(prev.ID)); err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	} else {
		tok, err := common.MakeRandHexString(16)
		if err != nil {
			return nil, common.ErrorInternal
		}
		v.ResendToken = tok
	}

	if err := s.saveVerification(ctx, v, s.cfg.Phone.CodeTTL); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, phoneNumberKey(phoneNumber), []byte(v.ID), s.cfg.Phone.CodeTTL); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return v, nil
}

func (s *IdentityService) loadVerification(ctx context.Context, id string) (*models.PhoneVerification, error) {
	raw, err := s.cache.Get(ctx, verificationKey(id))
	if errors.Is(err, cache.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	var v models.PhoneVerification
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	return &v, nil
}

func (s *IdentityService) saveVerification(ctx context.Context, v *models.PhoneVerification, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}
	if err := s.cache.Set(ctx, verificationKey(v.ID), raw, ttl); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

func (s *IdentityService) dropVerification(ctx context.Context, v *models.PhoneVerification) {
	if err := s.cache.Delete(ctx, verificationKey(v.ID)); err != nil {
		s.logger.Warn(ctx, "failed to drop verification", "verification_id", v.ID, "error", err)
	}
	s.forgetVerification(ctx, v)
}

// forgetVerification removes the lookup and counter keys of v. The
// verification itself is gone already.
func (s *IdentityService) forgetVerification(ctx context.Context, v *models.PhoneVerification) {
	for _, k := range []string{phoneNumberKey(v.PhoneNumber), attemptsKey(v.ID)} {
		if err := s.cache.Delete(ctx, k); err != nil {
			s.logger.Warn(ctx, "failed to drop verification", "verification_id", v.ID, "error", err)
		}
	}
}

// signInPhone redeems an SMS code. Each verification allows MaxAttempts
// wrong codes and is consumed by the first correct one.
func (s *IdentityService) signInPhone(ctx context.Context, verificationID, code string) (*AuthResult, error) {
	if verificationID == "" || code == "" {
		return nil, fmt.Errorf("verification id and code are required: %w", common.ErrValidation)
	}

	v, err := s.loadVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if v == nil || v.Expired(now) {
		return nil, common.ErrInvalidCredential
	}

	// The attempt is counted before the code is looked at, so parallel
	// guesses cannot share one slot.
	n, err := s.cache.Incr(ctx, attemptsKey(v.ID), v.ExpiresAt.Sub(now))
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if n > int64(s.cfg.Phone.MaxAttempts) {
		s.dropVerification(ctx, v)
		return nil, common.ErrInvalidCredential
	}
	if !cryptox.EqualSecret(code, v.CodeHash) {
		return nil, common.ErrInvalidCredential
	}

	// Only the caller that removes the verification may redeem it.
	if _, err := s.cache.Take(ctx, verificationKey(v.ID)); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("cache: %w", err)
	}
	s.forgetVerification(ctx, v)

	var user *models.User
	err = s.repomanager.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		identities := s.repomanager.Identities(tx)

		linked, err := identities.GetByProviderSubject(ctx, models.ProviderPhone, v.PhoneNumber)
		if err == nil {
			user, err = users.GetByID(ctx, linked.UserID)
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("get identity: %w", err)
		}

		user, err = users.GetByPhone(ctx, v.PhoneNumber)
		if errors.Is(err, common.ErrorNotFound) {
			user, err = users.Create(ctx, &models.User{PhoneNumber: v.PhoneNumber})
			if err != nil {
				return collisionOr(err, "create user")
			}
		} else if err != nil {
			return fmt.Errorf("get user: %w", err)
		}

		_, err = identities.Create(ctx, &models.Identity{
			UserID: user.ID, Provider: models.ProviderPhone, Subject: v.PhoneNumber,
		})
		return collisionOr(err, "create identity")
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user, models.ProviderPhone)
}
