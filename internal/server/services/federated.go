package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/providers"
)

// signInFederated verifies token with the provider and signs in the linked
// user, creating one on first sign-in. A new provider account whose email or
// phone number already belongs to another user is an account collision.
func (s *IdentityService) signInFederated(ctx context.Context, provider, token, secret string) (*AuthResult, error) {
	if token == "" {
		return nil, fmt.Errorf("%s token is required: %w", provider, common.ErrValidation)
	}

	verifier, err := s.providers.Get(provider)
	if err != nil {
		return nil, err
	}
	id, err := verifier.Verify(ctx, token, secret)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.repomanager.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		identities := s.repomanager.Identities(tx)

		linked, err := identities.GetByProviderSubject(ctx, provider, id.Subject)
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

		if err := s.checkCollision(ctx, tx, id); err != nil {
			return err
		}

		user, err = users.Create(ctx, &models.User{
			Email:         normalizeEmail(id.Email),
			PhoneNumber:   id.PhoneNumber,
			EmailVerified: id.EmailVerified,
		})
		if err != nil {
			return collisionOr(err, "create user")
		}

		_, err = identities.Create(ctx, &models.Identity{
			UserID: user.ID, Provider: provider, Subject: id.Subject, Email: id.Email,
		})
		return collisionOr(err, "create identity")
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user, provider)
}

func (s *IdentityService) checkCollision(ctx context.Context, tx dbx.DBTX, id *providers.Identity) error {
	users := s.repomanager.Users(tx)

	if email := normalizeEmail(id.Email); email != "" {
		if _, err := users.GetByEmail(ctx, email); err == nil {
			return common.ErrAccountCollision
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("get user: %w", err)
		}
	}
	if id.PhoneNumber != "" {
		if _, err := users.GetByPhone(ctx, id.PhoneNumber); err == nil {
			return common.ErrAccountCollision
		} else if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("get user: %w", err)
		}
	}
	return nil
}
