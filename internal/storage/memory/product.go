// Package memory provides in-process repository implementations used when
// the storefront runs without external storage, and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/huandz/freshmart/internal/domain/product"
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository is a map-backed catalog. Listing order is by id,
// matching the PostgreSQL implementation.
type ProductRepository struct {
	mu     sync.RWMutex
	byID   map[int]product.Product
	nextID int
}

// NewProductRepository seeds the catalog with the given products.
func NewProductRepository(seed []product.Product) *ProductRepository {
	r := &ProductRepository{byID: make(map[int]product.Product, len(seed)), nextID: 1}
	for _, p := range seed {
		r.byID[p.ID] = p
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (r *ProductRepository) GetByIDs(_ context.Context, ids []int) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == 0 {
		p.ID = r.nextID
	}
	if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
