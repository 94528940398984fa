// Package identities stores the provider accounts linked to a user.
package identities

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create links a provider account. A provider+subject pair already
	// linked yields common.ErrorAlreadyExists.
	Create(ctx context.Context, identity *models.Identity) (*models.Identity, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*models.Identity, error)
	ListByUser(ctx context.Context, userID string) ([]models.Identity, error)
	// Delete unlinks provider from userID, returning common.ErrorNotFound
	// when no such link exists.
	Delete(ctx context.Context, userID, provider string) error
}
