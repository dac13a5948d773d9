package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/storage"
)

// schemaVersion tags persisted cart records. Records with a different
// version are discarded rather than migrated; the cart is cheap to rebuild.
const schemaVersion = 1

// persistedCart is the single durable record kept per session.
type persistedCart struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// Store owns one session's cart state. All public operations apply as a
// single atomic step: the mutation, the recomputed totals and the persisted
// snapshot are produced under one lock, and the snapshot written always
// reflects the mutation just applied.
type Store struct {
	mu        sync.Mutex
	sessionID string
	kv        storage.KV
	logger    *slog.Logger

	items   []LineItem
	visible bool
}

// NewStore creates the cart store for a session, restoring any persisted
// record. A corrupt or unknown-version record is discarded and the cart
// starts empty; that path is logged, never surfaced.
func NewStore(ctx context.Context, kv storage.KV, sessionID string, logger *slog.Logger) *Store {
	s := &Store{
		sessionID: sessionID,
		kv:        kv,
		logger:    logger,
	}

	data, err := kv.Get(ctx, s.storageKey())
	if errors.Is(err, storage.ErrKeyNotFound) {
		return s
	}
	if err != nil {
		logger.Warn("failed to load persisted cart, starting empty",
			slog.String("session_id", sessionID), slog.Any("error", err))
		return s
	}

	var record persistedCart
	if err := json.Unmarshal(data, &record); err != nil || record.Version != schemaVersion {
		logger.Warn("discarding unreadable persisted cart",
			slog.String("session_id", sessionID),
			slog.Int("version", record.Version), slog.Any("error", err))
		if delErr := kv.Delete(ctx, s.storageKey()); delErr != nil {
			logger.Warn("failed to discard corrupt cart record", slog.Any("error", delErr))
		}
		return s
	}

	// Drop lines that violate the quantity invariant rather than trusting
	// the stored record blindly.
	for _, li := range record.Items {
		if li.Quantity < 1 {
			continue
		}
		s.items = append(s.items, li)
	}

	return s
}

// SessionID returns the owning session's identifier.
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddItem adds a product to the cart, merging into an existing line when the
// (product, color, size) identity matches. Adding also opens the cart UI.
func (s *Store) AddItem(ctx context.Context, product *domain.Product, quantity int64, color, size string) (*Summary, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if !product.InStock {
		return nil, ErrOutOfStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ProductID: product.ID, Color: color, Size: size}
	prior := cloneLines(s.items)

	if idx := s.indexOf(key); idx >= 0 {
		s.items[idx].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{
			Key:      key,
			Quantity: quantity,
			Product: Snapshot{
				Name:               product.Name,
				UnitPrice:          product.Price,
				OnSale:             product.IsSale,
				OriginalPrice:      product.OriginalPrice,
				DiscountPercentage: product.DiscountPercentage,
				ImageURL:           product.PrimaryImage(),
			},
		})
	}

	s.visible = true

	if err := s.persistLocked(ctx); err != nil {
		s.items = prior
		return nil, err
	}
	return summarize(s.items), nil
}

// RemoveItem deletes the line matching key. Removing an absent key is a no-op.
func (s *Store) RemoveItem(ctx context.Context, key Key) (*Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return summarize(s.items), nil
	}

	prior := cloneLines(s.items)
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	if err := s.persistLocked(ctx); err != nil {
		s.items = prior
		return nil, err
	}
	return summarize(s.items), nil
}

// UpdateQuantity sets the quantity for the line matching key. A quantity of
// zero or less removes the line. Updating an absent key is a no-op and never
// creates a line.
func (s *Store) UpdateQuantity(ctx context.Context, key Key, quantity int64) (*Summary, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return summarize(s.items), nil
	}

	prior := cloneLines(s.items)
	s.items[idx].Quantity = quantity

	if err := s.persistLocked(ctx); err != nil {
		s.items = prior
		return nil, err
	}
	return summarize(s.items), nil
}

// Clear empties the cart and removes the persisted record.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.items
	s.items = nil

	if err := s.kv.Delete(ctx, s.storageKey()); err != nil {
		s.items = prior
		return domain.Internal(err, "cart.clear", "failed to clear persisted cart")
	}
	return nil
}

// Summary returns the current contents with recomputed derived totals.
func (s *Store) Summary() *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.items)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// ToggleVisibility flips the cart drawer flag and returns the new value.
// The flag is a pure UI affordance, independent of cart contents.
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = !s.visible
	return s.visible
}

// Visible reports whether the cart drawer is open.
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// cloneLines copies the line slice so a failed persist can restore it; the
// in-place removal in RemoveItem would otherwise corrupt the saved state.
func cloneLines(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func (s *Store) indexOf(key Key) int {
	for i, li := range s.items {
		if li.Key == key {
			return i
		}
	}
	return -1
}

// persistLocked writes the current items as the session's durable record.
// Callers must hold s.mu so the snapshot matches the mutation just applied.
func (s *Store) persistLocked(ctx context.Context) error {
	record := persistedCart{Version: schemaVersion, Items: s.items}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.Internal(err, "cart.persist", "failed to serialize cart")
	}

	if err := s.kv.Set(ctx, s.storageKey(), data); err != nil {
		return domain.Internal(err, "cart.persist", "failed to persist cart")
	}
	return nil
}

func (s *Store) storageKey() string {
	return fmt.Sprintf("cart:%s", s.sessionID)
}
