// Package compare implements the side-by-side comparison set: at most four
// products, membership keyed by product id.
package compare

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/storage/kv"
)

// StorageKey is the persistence key for the compare-set state.
const StorageKey = "compare"

// MaxItems is the comparison set capacity.
const MaxItems = 4

var (
	// ErrAlreadyAdded is returned when the product is already being compared.
	ErrAlreadyAdded = errors.New("product already in comparison")
	// ErrFull is returned when the set already holds MaxItems products.
	ErrFull = errors.New("comparison limited to 4 products")
)

// Service holds the comparison set. Mutations are written through to the
// injected store; write failures are logged and the in-memory set stays
// authoritative.
type Service struct {
	store kv.Store
	lg    *zap.Logger

	mu    sync.Mutex
	items []product.Product
}

// NewService hydrates the comparison set from the store.
func NewService(ctx context.Context, store kv.Store, lg *zap.Logger) (*Service, error) {
	s := &Service{store: store, lg: lg}
	if _, err := kv.LoadJSON(ctx, store, StorageKey, &s.items); err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends the product. Duplicates and adds beyond MaxItems are rejected
// and leave the set unchanged.
func (s *Service) Add(ctx context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == p.ID {
			return ErrAlreadyAdded
		}
	}
	if len(s.items) >= MaxItems {
		return ErrFull
	}
	s.items = append(s.items, p)
	s.persist(ctx)
	return nil
}

// Remove deletes the product if present; removing an absent product is a
// no-op.
func (s *Service) Remove(ctx context.Context, productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// Contains reports membership by product id.
func (s *Service) Contains(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Clear empties the comparison set.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the comparison set in insertion order.
func (s *Service) Items() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) persist(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.store, StorageKey, s.items); err != nil {
		s.lg.Warn("compare state not persisted", zap.Error(err))
	}
}
