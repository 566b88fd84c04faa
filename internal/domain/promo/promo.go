// Package promo implements discount codes applied to the pre-shipping
// subtotal at checkout.
package promo

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage reduces the subtotal by a percentage.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed reduces the subtotal by a fixed amount, capped at the
	// subtotal.
	DiscountFixed DiscountType = "fixed"
)

// ErrInvalidCode is returned when a code is unknown or inactive.
var ErrInvalidCode = errors.New("invalid discount code")

// DefaultCode is the promotional code seeded into every fresh installation:
// a flat 10% off the pre-shipping subtotal.
const DefaultCode = "HUANDZ"

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{{
		Code:         DefaultCode,
		DiscountType: DiscountPercentage,
		Value:        decimal.NewFromInt(10),
		Description:  "10% off your order",
		Active:       true,
	}}
}

// Rule defines a code's discount behaviour.
type Rule struct {
	Code         string
	DiscountType DiscountType
	Value        decimal.Decimal
	Description  string
	Active       bool
}

// Discount holds a computed discount amount and the rule's description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Repository provides rule lookup. FindByCode returns ErrInvalidCode for
// unknown codes.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}

// Apply computes the discount a rule yields on a subtotal. The result never
// exceeds the subtotal.
func Apply(rule *Rule, subtotal decimal.Decimal) Discount {
	var amount decimal.Decimal
	switch rule.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(rule.Value).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		amount = rule.Value
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return Discount{Amount: amount, Description: rule.Description}
}
