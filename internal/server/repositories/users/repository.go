// Package users stores accounts. PostgresRepository backs production;
// MemoryRepository serves tests and DSN-less runs.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts user, assigning ID and CreatedAt. A taken email or phone
	// number yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	SetEmailVerified(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	// Delete removes the user and, through the foreign key, its identities.
	Delete(ctx context.Context, id string) error
}
