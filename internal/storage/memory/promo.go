package memory

import (
	"context"
	"sync"

	"github.com/huandz/freshmart/internal/domain/promo"
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository is a map-backed promo rule set.
type PromoRepository struct {
	mu    sync.RWMutex
	rules map[string]promo.Rule
}

// NewPromoRepository seeds the repository with the given rules.
func NewPromoRepository(seed []promo.Rule) *PromoRepository {
	r := &PromoRepository{rules: make(map[string]promo.Rule, len(seed))}
	for _, rule := range seed {
		r.rules[rule.Code] = rule
	}
	return r
}

func (r *PromoRepository) FindByCode(_ context.Context, code string) (*promo.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[code]
	if !ok {
		return nil, promo.ErrInvalidCode
	}
	return &rule, nil
}
