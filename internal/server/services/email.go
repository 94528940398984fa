package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const emailSubject = "Verify your email"

func emailTokenKey(token string) string { return "email:" + cryptox.HashSecret(token) }

// SendEmailVerification mails a verification link to the user's address and
// returns that address.
func (s *IdentityService) SendEmailVerification(ctx context.Context, userID string) (string, error) {
	user, err := s.repomanager.Users(s.repomanager.DB()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	if user.Email == "" {
		return "", fmt.Errorf("account has no email: %w", common.ErrValidation)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}

	ttl := s.cfg.Email.VerificationTTL
	raw, err := json.Marshal(models.EmailVerification{
		UserID: user.ID, Email: user.Email, ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("encode verification: %w", err)
	}
	if err := s.cache.Set(ctx, emailTokenKey(token), raw, ttl); err != nil {
		return "", fmt.Errorf("cache: %w", err)
	}

	link := strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/verify-email?" + url.Values{"token": {token}}.Encode()
	text := fmt.Sprintf("Follow this link to verify your email address:\n\n%s\n", link)
	html := fmt.Sprintf(`<p>Follow <a href="%s">this link</a> to verify your email address.</p>`, link)

	if err := s.mailer.SendMail(ctx, user.Email, emailSubject, text, html); err != nil {
		_ = s.cache.Delete(ctx, emailTokenKey(token))
		return "", fmt.Errorf("send mail: %v: %w", err, common.ErrProviderUnavailable)
	}

	s.metrics.ObserveEmail("sent")
	s.logger.Info(ctx, "verification email sent", "uid", user.ID)
	return user.Email, nil
}

// ConfirmEmail redeems a verification link token. The token is single-use and
// is void once the account's email has changed.
func (s *IdentityService) ConfirmEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrInvalidToken
	}

	key := emailTokenKey(token)
	raw, err := s.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, common.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	var v models.EmailVerification
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	if !s.now().Before(v.ExpiresAt) {
		return nil, common.ErrInvalidToken
	}

	users := s.repomanager.Users(s.repomanager.DB())
	user, err := users.GetByID(ctx, v.UserID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.Email != v.Email {
		return nil, common.ErrInvalidToken
	}

	if err := users.SetEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("set email verified: %w", err)
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to drop email token", "uid", user.ID, "error", err)
	}
	user.EmailVerified = true

	s.metrics.ObserveEmail("confirmed")
	s.logger.Info(ctx, "email verified", "uid", user.ID)
	return user, nil
}
