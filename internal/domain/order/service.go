package order

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/storage/kv"
)

// DefaultSeedBalance is the stored-value account's starting amount when the
// store holds no balance yet (5,000,000 VND).
var DefaultSeedBalance = decimal.NewFromInt(5_000_000)

// DefaultReviewAuthor labels reviews from the anonymous storefront session.
const DefaultReviewAuthor = "customer"

// Config tunes the order service.
type Config struct {
	// SeedBalance initializes the balance when none is persisted.
	// Zero means DefaultSeedBalance.
	SeedBalance decimal.Decimal
	// ReviewAuthor labels submitted reviews. Empty means DefaultReviewAuthor.
	ReviewAuthor string
}

// Service holds the order list (most recent first), the balance ledger, and
// the per-product review lists. Each of the three is persisted under its own
// key after mutation; persist failures are logged and in-memory state stays
// authoritative for the session.
type Service struct {
	store  kv.Store
	lg     *zap.Logger
	author string
	now    func() time.Time

	mu       sync.Mutex
	orders   []Order
	balance  decimal.Decimal
	reviews  map[int][]Review
	lastIDms int64
}

// NewService hydrates orders, balance, and reviews from the store. A missing
// balance entry is seeded from cfg.
func NewService(ctx context.Context, store kv.Store, lg *zap.Logger, cfg Config) (*Service, error) {
	s := &Service{
		store:   store,
		lg:      lg,
		author:  cfg.ReviewAuthor,
		now:     time.Now,
		reviews: make(map[int][]Review),
	}
	if s.author == "" {
		s.author = DefaultReviewAuthor
	}

	if _, err := kv.LoadJSON(ctx, store, OrdersKey, &s.orders); err != nil {
		return nil, err
	}
	if _, err := kv.LoadJSON(ctx, store, ReviewsKey, &s.reviews); err != nil {
		return nil, err
	}

	found, err := kv.LoadJSON(ctx, store, BalanceKey, &s.balance)
	if err != nil {
		return nil, err
	}
	if !found {
		s.balance = cfg.SeedBalance
		if s.balance.IsZero() {
			s.balance = DefaultSeedBalance
		}
		s.persistBalance(ctx)
	}

	return s, nil
}

// AddOrder stamps a unique time-ordered id and creation timestamp, sets the
// status to pending, and prepends the order to the list.
func (s *Service) AddOrder(ctx context.Context, draft Draft) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]Item, len(draft.Items))
	for i, it := range draft.Items {
		items[i] = Item{Item: it}
	}

	now := s.now()
	o := Order{
		ID:             s.nextID(now),
		Items:          items,
		Total:          draft.Total,
		Status:         StatusPending,
		CreatedAt:      now,
		Address:        draft.Address,
		ShippingMethod: draft.ShippingMethod,
		PaymentMethod:  draft.PaymentMethod,
		Discount:       draft.Discount,
	}
	s.orders = append([]Order{o}, s.orders...)
	s.persistOrders(ctx)
	return &o
}

// nextID derives an id from the creation time, bumped by one millisecond
// when two orders land in the same tick so ids stay unique and sortable.
// Callers must hold s.mu.
func (s *Service) nextID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastIDms {
		ms = s.lastIDms + 1
	}
	s.lastIDms = ms
	return fmt.Sprintf("ORD-%d", ms)
}

// Orders returns a copy of all orders, most recent first.
func (s *Service) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyOrders(s.orders)
}

// OrdersByStatus returns orders whose status is any of the given statuses,
// preserving the most-recent-first ordering. No statuses means all orders.
func (s *Service) OrdersByStatus(statuses ...Status) []Order {
	if len(statuses) == 0 {
		return s.Orders()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Order
	for _, o := range s.orders {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, o)
				break
			}
		}
	}
	return s.copyOrders(out)
}

// Get returns the order with the given id, or ErrNotFound.
func (s *Service) Get(id string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			o := s.orders[i]
			o.Items = append([]Item(nil), o.Items...)
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateStatus moves the order to a new status. Transitions outside the
// lifecycle graph are rejected with InvalidTransitionError and leave the
// order unchanged.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) error {
	if !to.Valid() {
		return errors.Errorf("unknown status %q", to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		from := s.orders[i].Status
		if !from.CanTransitionTo(to) {
			return &InvalidTransitionError{From: from, To: to}
		}
		s.orders[i].Status = to
		s.persistOrders(ctx)
		return nil
	}
	return ErrNotFound
}

// AddReview marks the order's line for productID as reviewed and appends a
// review record to the product's list. The flag write is idempotent; the
// review append is not, so reviewing twice leaves the flag true and two
// records. The two writes hit separate store keys and are best-effort: a
// failure of either is logged without rolling back the other.
func (s *Service) AddReview(ctx context.Context, orderID string, productID, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var target *Order
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			target = &s.orders[i]
			break
		}
	}
	if target == nil {
		return ErrNotFound
	}

	found := false
	for i := range target.Items {
		if target.Items[i].ID == productID {
			target.Items[i].Reviewed = true
			found = true
			break
		}
	}
	if !found {
		return ErrItemNotFound
	}
	s.persistOrders(ctx)

	s.reviews[productID] = append(s.reviews[productID], Review{
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
		Author:    s.author,
	})
	if err := kv.SaveJSON(ctx, s.store, ReviewsKey, s.reviews); err != nil {
		s.lg.Warn("reviews not persisted", zap.Error(err))
	}
	return nil
}

// Reviews returns the review list for a product, oldest first. An unknown
// product yields an empty list.
func (s *Service) Reviews(productID int) []Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Review(nil), s.reviews[productID]...)
}

// Balance returns the current stored-value balance.
func (s *Service) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balance
}

// UpdateBalance applies a signed delta to the balance and returns the new
// value. The ledger is caller-driven and may go negative; only the checkout
// flow enforces sufficient funds before debiting.
func (s *Service) UpdateBalance(ctx context.Context, delta decimal.Decimal) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance = s.balance.Add(delta)
	s.persistBalance(ctx)
	return s.balance
}

func (s *Service) copyOrders(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.Items = append([]Item(nil), o.Items...)
		out[i] = o
	}
	return out
}

// persistOrders and persistBalance require s.mu to be held.
func (s *Service) persistOrders(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.store, OrdersKey, s.orders); err != nil {
		s.lg.Warn("orders not persisted", zap.Error(err))
	}
}

func (s *Service) persistBalance(ctx context.Context) {
	if err := kv.SaveJSON(ctx, s.store, BalanceKey, s.balance); err != nil {
		s.lg.Warn("balance not persisted", zap.Error(err))
	}
}
