package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/greenseam/storefront/internal/storage"
)

// Manager hands out one Store per session. It is the explicit dependency
// handed to whatever surface renders the cart; there is no ambient global.
type Manager struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *slog.Logger
	stores map[string]*Store
}

// NewManager creates a cart manager over the given store.
func NewManager(kv storage.KV, logger *slog.Logger) *Manager {
	return &Manager{
		kv:     kv,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// GetOrCreate returns the cart store for sessionID, creating the session when
// the ID is empty. The returned session ID is either the one passed in or the
// newly generated one; callers set it back on the session cookie.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*Store, string) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store, sessionID
	}

	store := NewStore(ctx, m.kv, sessionID, m.logger)
	m.stores[sessionID] = store
	return store, sessionID
}

// Get returns the cart store for an existing session, or nil when the
// session has never touched a cart.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	if sessionID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store
	}

	// A restarted process loses its in-memory map but not the persisted
	// records; rebuild the store from storage.
	store := NewStore(ctx, m.kv, sessionID, m.logger)
	m.stores[sessionID] = store
	return store
}

// Release drops a session's store from the in-memory map, e.g. on session
// end. The persisted record is untouched.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}
