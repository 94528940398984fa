// Package services contains server-side business logic. IdentityService
// verifies credentials, links provider accounts to users and mints session
// tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/cache"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/notify"
	"github.com/dmitrijs2005/gophauth/internal/server/providers"
	"github.com/dmitrijs2005/gophauth/internal/server/rate"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

// hashPassword is a test seam.
var hashPassword = cryptox.HashPassword

// Observer receives business events for metrics.
type Observer interface {
	ObserveSignIn(provider string, err error)
	ObservePhoneCode(result string)
	ObserveEmail(action string)
}

type nopObserver struct{}

func (nopObserver) ObserveSignIn(string, error) {}
func (nopObserver) ObservePhoneCode(string)     {}
func (nopObserver) ObserveEmail(string)         {}

// Deps are the collaborators of IdentityService. Nil Metrics and Logger are
// replaced with no-ops.
type Deps struct {
	Providers providers.Registry
	Cache     cache.Cache
	Limiter   rate.Limiter
	SMS       notify.SMSSender
	Mailer    notify.Mailer
	Metrics   Observer
	Logger    logging.Logger
}

// SignInInput is one credential. Which fields matter depends on Provider.
type SignInInput struct {
	Provider       string
	Email          string
	Password       string
	Token          string
	Secret         string
	VerificationID string
	Code           string
}

// AuthResult is a signed-in user plus its session token.
type AuthResult struct {
	User        *models.User
	Provider    string
	AccessToken string
}

type IdentityService struct {
	repomanager repomanager.RepositoryManager
	cfg         *config.Config
	providers   providers.Registry
	cache       cache.Cache
	limiter     rate.Limiter
	sms         notify.SMSSender
	mailer      notify.Mailer
	metrics     Observer
	logger      logging.Logger

	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	now                         func() time.Time
}

func NewIdentityService(m repomanager.RepositoryManager, cfg *config.Config, d Deps) *IdentityService {
	if d.Metrics == nil {
		d.Metrics = nopObserver{}
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	return &IdentityService{
		repomanager:                 m,
		cfg:                         cfg,
		providers:                   d.Providers,
		cache:                       d.Cache,
		limiter:                     d.Limiter,
		sms:                         d.SMS,
		mailer:                      d.Mailer,
		metrics:                     d.Metrics,
		logger:                      d.Logger.With("module", "identity_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		now:                         time.Now,
	}
}

// SignIn dispatches on the credential's provider.
func (s *IdentityService) SignIn(ctx context.Context, in SignInInput) (res *AuthResult, err error) {
	defer func() { s.metrics.ObserveSignIn(providerLabel(in.Provider), err) }()

	if !s.cfg.ProviderEnabled(in.Provider) {
		return nil, common.ErrProviderDisabled
	}

	switch in.Provider {
	case models.ProviderPassword:
		res, err = s.signInPassword(ctx, in.Email, in.Password)
	case models.ProviderPhone:
		res, err = s.signInPhone(ctx, in.VerificationID, in.Code)
	case models.ProviderGoogle, models.ProviderFacebook, models.ProviderTwitter, models.ProviderFirebase:
		res, err = s.signInFederated(ctx, in.Provider, in.Token, in.Secret)
	default:
		return nil, fmt.Errorf("unknown provider %q: %w", in.Provider, common.ErrValidation)
	}

	if err != nil {
		s.logger.Info(ctx, "sign-in failed", "provider", in.Provider, "error", err)
		return nil, err
	}
	s.logger.Info(ctx, "sign-in completed", "provider", in.Provider, "uid", res.User.ID)
	return res, nil
}

func (s *IdentityService) signInPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := s.repomanager.Users(s.repomanager.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredential
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, common.ErrInvalidCredential
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidCredential
	}

	return s.issue(user, models.ProviderPassword)
}

// CreateAccount registers an email/password user. An email already owned by
// any account yields ErrAccountCollision.
func (s *IdentityService) CreateAccount(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer func() { s.metrics.ObserveSignIn(models.ProviderPassword, err) }()

	if !s.cfg.ProviderEnabled(models.ProviderPassword) {
		return nil, common.ErrProviderDisabled
	}
	email = normalizeEmail(email)
	if _, perr := mail.ParseAddress(email); email == "" || perr != nil {
		return nil, fmt.Errorf("malformed email: %w", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", minPasswordLength, common.ErrValidation)
	}

	hash, err := hashPassword(password, cryptox.DefaultPasswordParams)
	if err != nil {
		s.logger.Error(ctx, "hash password", "error", err)
		return nil, common.ErrorInternal
	}

	var user *models.User
	err = s.repomanager.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		if _, err := users.GetByEmail(ctx, email); err == nil {
			return common.ErrAccountCollision
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("get user: %w", err)
		}

		var err error
		user, err = users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			return collisionOr(err, "create user")
		}

		_, err = s.repomanager.Identities(tx).Create(ctx, &models.Identity{
			UserID: user.ID, Provider: models.ProviderPassword, Subject: email, Email: email,
		})
		return collisionOr(err, "create identity")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "account created", "uid", user.ID)
	return s.issue(user, models.ProviderPassword)
}

// Unlink detaches provider from the user. Unlinking the last provider deletes
// the account.
func (s *IdentityService) Unlink(ctx context.Context, userID, provider string) error {
	if provider == "" {
		return fmt.Errorf("provider is required: %w", common.ErrValidation)
	}

	err := s.repomanager.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		identities := s.repomanager.Identities(tx)
		users := s.repomanager.Users(tx)

		linked, err := identities.ListByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list identities: %w", err)
		}

		if err := identities.Delete(ctx, userID, provider); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%s is not linked: %w", provider, common.ErrValidation)
			}
			return fmt.Errorf("delete identity: %w", err)
		}

		if len(linked) <= 1 {
			return users.Delete(ctx, userID)
		}
		if provider == models.ProviderPassword {
			return users.SetPasswordHash(ctx, userID, "")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "provider unlinked", "uid", userID, "provider", provider)
	return nil
}

// Authenticate resolves a session token to its user id and provider.
func (s *IdentityService) Authenticate(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *IdentityService) issue(user *models.User, provider string) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, provider, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: user, Provider: provider, AccessToken: token}, nil
}

func collisionOr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorAlreadyExists):
		return common.ErrAccountCollision
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func providerLabel(p string) string {
	switch p {
	case models.ProviderPassword, models.ProviderGoogle, models.ProviderFacebook,
		models.ProviderTwitter, models.ProviderPhone, models.ProviderFirebase:
		return p
	}
	return "unknown"
}
