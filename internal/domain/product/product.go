// Package product defines the catalog model and its repository contract.
// The catalog is read-mostly: the storefront only queries it, while the
// admin surface may create, update, and delete entries.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID            int              `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Category      string           `json:"category"`
	Rating        float64          `json:"rating"`
	InStock       bool             `json:"inStock"`
	Unit          string           `json:"unit"`
	Image         string           `json:"image"`
}

// DiscountPercent reports the rounded percentage saved against the original
// price, or 0 when the product is not marked down.
func (p Product) DiscountPercent() int {
	if p.OriginalPrice == nil || p.OriginalPrice.IsZero() {
		return 0
	}
	saved := p.OriginalPrice.Sub(p.Price)
	pct := saved.Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// Repository defines catalog persistence. Read methods serve the storefront;
// the mutating methods back the admin surface.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int) (*Product, error)
	GetByIDs(ctx context.Context, ids []int) ([]Product, error)

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int) error
}
