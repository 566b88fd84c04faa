// Package checkout composes the cart, promo, and order stores into the
// purchase flow. A checkout session is created from a non-empty cart, may
// have at most one discount code applied, and on confirmation debits the
// balance, creates a pending order, and clears the cart. Validation
// failures abort the whole flow with no side effects.
package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart is returned when checkout starts (or confirms) with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingAddress is returned when the shipping address is blank.
	ErrMissingAddress = errors.New("shipping address is required")
	// ErrPromoApplied is returned when a session already has a code applied.
	ErrPromoApplied = errors.New("discount code already applied")
	// ErrSessionClosed is returned when confirming an already confirmed session.
	ErrSessionClosed = errors.New("checkout session already completed")
)

// InsufficientBalanceError reports that the stored-value balance does not
// cover the order total.
type InsufficientBalanceError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

// Shortfall returns how much the balance is missing.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %s more", e.Shortfall())
}

// ShippingMethod is one of the two fixed-fee delivery tiers.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

var shippingFees = map[ShippingMethod]int64{
	ShippingStandard: 30_000,
	ShippingExpress:  50_000,
}

// Valid reports whether m is a known shipping method.
func (m ShippingMethod) Valid() bool {
	_, ok := shippingFees[m]
	return ok
}

// Fee returns the flat delivery fee for the tier.
func (m ShippingMethod) Fee() decimal.Decimal {
	return decimal.NewFromInt(shippingFees[m])
}

// Label is the human-readable tier name stored on orders.
func (m ShippingMethod) Label() string {
	switch m {
	case ShippingExpress:
		return "Express delivery (1-2 days)"
	default:
		return "Standard delivery (3-5 days)"
	}
}

// PaymentMethod selects how the order is settled. Both methods are
// simulated; only balance has an observable effect (the debit).
type PaymentMethod string

const (
	PaymentBalance PaymentMethod = "balance"
	PaymentQR      PaymentMethod = "qr"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentBalance || m == PaymentQR
}

// Label is the human-readable method name stored on orders.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentQR:
		return "QR transfer"
	default:
		return "Store credit"
	}
}

// Quote is the priced breakdown of a checkout session.
type Quote struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}
