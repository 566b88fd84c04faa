package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huandz/freshmart/internal/domain/promo"
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// FindByCode looks up a rule by exact code, returning promo.ErrInvalidCode
// for unknown codes.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*promo.Rule, error) {
	var rule promo.Rule
	err := r.pool.QueryRow(ctx, `
		SELECT code, discount_type, value, description, active
		FROM promo_codes WHERE code = $1`, code,
	).Scan(&rule.Code, &rule.DiscountType, &rule.Value, &rule.Description, &rule.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, promo.ErrInvalidCode
	}
	if err != nil {
		return nil, errors.Wrapf(err, "find promo %q", code)
	}
	return &rule, nil
}
