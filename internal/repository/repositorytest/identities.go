package repositorytest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/repository"
)

// Identities is an in-memory IdentityRepository
type Identities struct {
	mu    sync.Mutex
	links map[string]domain.IdentityLink
}

// NewIdentities creates an empty store
func NewIdentities() *Identities {
	return &Identities{links: make(map[string]domain.IdentityLink)}
}

var _ repository.IdentityRepository = (*Identities)(nil)

func (i *Identities) Link(_ context.Context, link *domain.IdentityLink) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := link.Provider + "|" + link.Subject
	if _, ok := i.links[key]; ok {
		return repository.ErrDuplicateIdentity
	}
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	i.links[key] = *link
	return nil
}

func (i *Identities) GetBySubject(_ context.Context, provider, subject string) (*domain.IdentityLink, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	link, ok := i.links[provider+"|"+subject]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &link, nil
}

// Len returns the number of stored links
func (i *Identities) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.links)
}
