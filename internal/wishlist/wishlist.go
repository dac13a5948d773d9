// Package wishlist keeps a per-user set of saved product IDs. Adds are
// idempotent: saving an already-saved product succeeds rather than erroring,
// matching what a unique-constraint upsert does server-side.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/storage"
)

// Service manages wishlists keyed by user ID.
type Service struct {
	kv storage.KV
}

// NewService creates a wishlist service over the given store.
func NewService(kv storage.KV) *Service {
	return &Service{kv: kv}
}

// Add saves a product to the user's wishlist. Adding a product already on
// the list is a success, not an error.
func (s *Service) Add(ctx context.Context, userID string, productID int64) error {
	if userID == "" {
		return domain.Unauthorized("wishlist.add", "Authentication required")
	}
	if productID <= 0 {
		return domain.Invalid("wishlist.add", "Missing product ID")
	}

	ids, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if slices.Contains(ids, productID) {
		return nil
	}

	return s.save(ctx, userID, append(ids, productID))
}

// Remove deletes a product from the user's wishlist. Removing an absent
// product is a no-op.
func (s *Service) Remove(ctx context.Context, userID string, productID int64) error {
	if userID == "" {
		return domain.Unauthorized("wishlist.remove", "Authentication required")
	}

	ids, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	idx := slices.Index(ids, productID)
	if idx < 0 {
		return nil
	}

	return s.save(ctx, userID, slices.Delete(ids, idx, idx+1))
}

// List returns the user's saved product IDs in the order they were added.
func (s *Service) List(ctx context.Context, userID string) ([]int64, error) {
	if userID == "" {
		return nil, domain.Unauthorized("wishlist.list", "Authentication required")
	}
	return s.load(ctx, userID)
}

// Contains reports whether the product is on the user's wishlist.
func (s *Service) Contains(ctx context.Context, userID string, productID int64) (bool, error) {
	ids, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, productID), nil
}

func (s *Service) load(ctx context.Context, userID string) ([]int64, error) {
	data, err := s.kv.Get(ctx, key(userID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "wishlist.load", "failed to load wishlist")
	}

	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, domain.Internal(err, "wishlist.load", "failed to decode wishlist")
	}
	return ids, nil
}

func (s *Service) save(ctx context.Context, userID string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return domain.Internal(err, "wishlist.save", "failed to serialize wishlist")
	}
	if err := s.kv.Set(ctx, key(userID), data); err != nil {
		return domain.Internal(err, "wishlist.save", "failed to persist wishlist")
	}
	return nil
}

func key(userID string) string { return "wishlist:" + userID }
