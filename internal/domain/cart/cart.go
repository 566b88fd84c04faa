// Package cart implements the session cart: one line item per product,
// quantities merged on repeated adds, totals derived on every read. The
// full item list is persisted under a single key after each mutation.
package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/storage/kv"
)

// StorageKey is the persistence key for the cart state.
const StorageKey = "cart"

// Item is a product chosen for purchase together with its quantity.
type Item struct {
	product.Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price multiplied by quantity for this line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddResult reports whether an add created a new line or merged into an
// existing one, so callers can word their notification accordingly.
type AddResult struct {
	Item   Item
	Merged bool
}

// Service holds the cart state. The in-memory list is authoritative; every
// mutation is written through to the injected store, and write failures are
// logged and otherwise ignored so the session keeps working.
type Service struct {
	store kv.Store
	lg    *zap.Logger

	mu    sync.Mutex
	items []Item
}

// NewService hydrates the cart from the store. A missing key yields an
// empty cart.
func NewService(ctx context.Context, store kv.Store, lg *zap.Logger) (*Service, error) {
	s := &Service{store: store, lg: lg}
	if _, err := kv.LoadJSON(ctx, store, StorageKey, &s.items); err != nil {
		return nil, err
	}
	return s, nil
}

// AddItem inserts the product with the given quantity, or increments the
// existing line's quantity when the product is already in the cart.
func (s *Service) AddItem(ctx context.Context, p product.Product, quantity int) AddResult {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items[i].Quantity += quantity
			s.persist(ctx)
			return AddResult{Item: s.items[i], Merged: true}
		}
	}

	item := Item{Product: p, Quantity: quantity}
	s.items = append(s.items, item)
	s.persist(ctx)
	return AddResult{Item: item}
}

// RemoveItem deletes the line for productID. Removing an absent product is
// a no-op.
func (s *Service) RemoveItem(ctx context.Context, productID int) {
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

// UpdateQuantity overwrites the quantity of the line for productID.
// A quantity of zero or less removes the line instead.
func (s *Service) UpdateQuantity(ctx context.Context, productID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == productID {
			s.items[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.persist(ctx)
}

// Items returns a copy of the current line items in insertion order.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems recomputes the sum of quantities across all lines.
func (s *Service) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice recomputes the sum of price times quantity across all lines.
func (s *Service) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return totalPrice(s.items)
}

func totalPrice(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// persist writes the full item list through to the store. Callers must hold
// s.mu.
func (s *Service) persist(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.store, StorageKey, s.items); err != nil {
		s.lg.Warn("cart state not persisted", zap.Error(err))
	}
}
