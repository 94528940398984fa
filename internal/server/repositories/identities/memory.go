package identities

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Identity
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Identity)}
}

func (r *MemoryRepository) Create(_ context.Context, identity *models.Identity) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.items {
		if i.Provider == identity.Provider && i.Subject == identity.Subject {
			return nil, common.ErrorAlreadyExists
		}
	}

	identity.ID = uuid.NewString()
	identity.CreatedAt = time.Now().UTC()
	r.items[identity.ID] = *identity
	return identity, nil
}

func (r *MemoryRepository) GetByProviderSubject(_ context.Context, provider, subject string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, i := range r.items {
		if i.Provider == provider && i.Subject == subject {
			return &i, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []models.Identity
	for _, i := range r.items {
		if i.UserID == userID {
			result = append(result, i)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].CreatedAt.Before(result[b].CreatedAt) })
	return result, nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, i := range r.items {
		if i.UserID == userID && i.Provider == provider {
			delete(r.items, id)
			return nil
		}
	}
	return common.ErrorNotFound
}
