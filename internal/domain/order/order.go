// Package order implements the order book: append-only order records with a
// validated status lifecycle, per-product reviews, and the user balance
// ledger backing the simulated stored-value payment method.
package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/huandz/freshmart/internal/domain/cart"
)

// Persistence keys. Orders, the balance, and the review lists are three
// independent entries in the backing store.
const (
	OrdersKey  = "orders"
	BalanceKey = "userBalance"
	ReviewsKey = "reviews"
)

var (
	// ErrNotFound is returned when no order exists with the given id.
	ErrNotFound = errors.New("order not found")
	// ErrItemNotFound is returned when an order does not contain the product.
	ErrItemNotFound = errors.New("order item not found")
	// ErrInvalidRating is returned when a review rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Item is an order line: the cart line frozen at checkout plus a reviewed
// marker set once the buyer has rated the product.
type Item struct {
	cart.Item
	Reviewed bool `json:"reviewed,omitempty"`
}

// Order is an immutable record of a completed checkout. Only the status and
// the per-item reviewed flags change after creation, both through Service
// methods.
type Order struct {
	ID             string          `json:"id"`
	Items          []Item          `json:"items"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"date"`
	Address        string          `json:"address"`
	ShippingMethod string          `json:"shippingMethod"`
	PaymentMethod  string          `json:"paymentMethod"`
	Discount       decimal.Decimal `json:"discount"`
}

// Draft carries the fields the checkout flow provides; Service stamps the
// id, creation time, and initial pending status.
type Draft struct {
	Items          []cart.Item
	Total          decimal.Decimal
	Address        string
	ShippingMethod string
	PaymentMethod  string
	Discount       decimal.Decimal
}

// Review is a buyer rating for a product, stored denormalized per product
// id, independent of the order it originated from.
type Review struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"date"`
	Author    string    `json:"userName"`
}
