// Package reviews keeps customer product reviews: authenticated create,
// newest-first listing per product, and the aggregate rating shown on the
// product page.
package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/storage"
)

// Review is one customer's rating and write-up for a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    string    `json:"user_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Service manages product reviews keyed by product ID.
type Service struct {
	kv  storage.KV
	now func() time.Time
}

// NewService creates a reviews service over the given store.
func NewService(kv storage.KV) *Service {
	return &Service{kv: kv, now: time.Now}
}

// Create validates and saves a review for the product. The author name
// defaults to the email's local part when the identity carries no display
// name.
func (s *Service) Create(ctx context.Context, userID, author string, productID int64, rating int, title, comment string) (*Review, error) {
	if userID == "" {
		return nil, domain.Unauthorized("reviews.create", "You must be logged in to submit a review")
	}
	if productID <= 0 {
		return nil, domain.Invalid("reviews.create", "Missing product ID")
	}

	fields := make(map[string]string)
	if rating < 1 || rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5"
	}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "This field is required"
	}
	if strings.TrimSpace(comment) == "" {
		fields["comment"] = "This field is required"
	}
	if len(fields) > 0 {
		return nil, domain.NewValidationError("reviews.create", fields)
	}

	review := Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Author:    author,
		Rating:    rating,
		Title:     strings.TrimSpace(title),
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now(),
	}

	existing, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, productID, append(existing, review)); err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns the product's reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, productID int64) ([]Review, error) {
	stored, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

// AverageRating returns the mean rating rounded to one decimal place, zero
// when there are no reviews.
func AverageRating(reviews []Review) decimal.Decimal {
	if len(reviews) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(1)
}

func (s *Service) load(ctx context.Context, productID int64) ([]Review, error) {
	data, err := s.kv.Get(ctx, key(productID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "reviews.load", "failed to load reviews")
	}

	var reviews []Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, domain.Internal(err, "reviews.load", "failed to decode reviews")
	}
	return reviews, nil
}

func (s *Service) save(ctx context.Context, productID int64, reviews []Review) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return domain.Internal(err, "reviews.save", "failed to serialize reviews")
	}
	if err := s.kv.Set(ctx, key(productID), data); err != nil {
		return domain.Internal(err, "reviews.save", "failed to persist reviews")
	}
	return nil
}

func key(productID int64) string {
	return "reviews:" + strconv.FormatInt(productID, 10)
}
