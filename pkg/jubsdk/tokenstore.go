package jubsdk

import (
	"context"
	"sync"
)

// TokenStore persists the session token between processes. Keys are the
// canonical server address. Load returns "" when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, server string) (string, error)
	Save(ctx context.Context, server, token string) error
	Delete(ctx context.Context, server string) error
}

// MemoryStore keeps tokens for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, server string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[server], nil
}

func (m *MemoryStore) Save(_ context.Context, server, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[server] = token
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, server string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, server)
	return nil
}
