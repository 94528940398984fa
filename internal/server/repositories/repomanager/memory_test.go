package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	var userID string
	err := m.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := m.Users(tx).Create(ctx, &models.User{Email: "a@b.c"})
		if err != nil {
			return err
		}
		userID = u.ID
		_, err = m.Identities(tx).Create(ctx, &models.Identity{UserID: u.ID, Provider: "password", Subject: "a@b.c"})
		return err
	})
	require.NoError(t, err)

	got, err := m.Users(m.DB()).GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)

	list, err := m.Identities(m.DB()).ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, m.Close())
}
