package tokenstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/common"
)

// MemoryStore keeps the credential for the life of the process only.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *models.Credential
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, cred models.Credential) error {
	if cred.TokenType == "" {
		cred.TokenType = common.DefaultTokenType
	}
	m.mu.Lock()
	m.cred = &cred
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (models.Credential, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil || m.cred.AccessToken == "" {
		return models.Credential{}, false, nil
	}
	return *m.cred, true, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.cred = nil
	m.mu.Unlock()
	return nil
}
