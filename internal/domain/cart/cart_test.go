package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/storage/kv"
)

func testProduct(id int, price int64) product.Product {
	return product.Product{
		ID:       id,
		Name:     "Product",
		Price:    decimal.NewFromInt(price),
		Category: "test",
		InStock:  true,
		Unit:     "kg",
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(context.Background(), kv.NewMemory(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestAddItem_MergesQuantities(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	p := testProduct(1, 100000)

	res := s.AddItem(ctx, p, 2)
	assert.False(t, res.Merged)
	assert.Equal(t, 2, res.Item.Quantity)

	res = s.AddItem(ctx, p, 3)
	assert.True(t, res.Merged)
	assert.Equal(t, 5, res.Item.Quantity)

	// Still a single line for the product.
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	res := s.AddItem(ctx, testProduct(1, 1000), 0)
	assert.Equal(t, 1, res.Item.Quantity)
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	s.AddItem(ctx, testProduct(1, 1000), 1)
	s.AddItem(ctx, testProduct(2, 2000), 1)

	s.RemoveItem(ctx, 1)
	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)

	// Absent product: no-op.
	s.RemoveItem(ctx, 99)
	assert.Len(t, s.Items(), 1)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	s.AddItem(ctx, testProduct(1, 1000), 2)

	s.UpdateQuantity(ctx, 1, 7)
	assert.Equal(t, 7, s.Items()[0].Quantity)

	s.UpdateQuantity(ctx, 1, 0)
	assert.Empty(t, s.Items())

	s.AddItem(ctx, testProduct(1, 1000), 2)
	s.UpdateQuantity(ctx, 1, -1)
	assert.Empty(t, s.Items())
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	s.AddItem(ctx, testProduct(1, 100000), 2)
	s.AddItem(ctx, testProduct(2, 50000), 1)

	assert.Equal(t, 3, s.TotalItems())
	assert.True(t, decimal.NewFromInt(250000).Equal(s.TotalPrice()))

	// Derived reads are recomputed, not cached: a mutation must be reflected.
	s.UpdateQuantity(ctx, 1, 1)
	assert.Equal(t, 2, s.TotalItems())
	assert.True(t, decimal.NewFromInt(150000).Equal(s.TotalPrice()))
}

func TestHydration(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	first, err := NewService(ctx, store, zap.NewNop())
	require.NoError(t, err)
	first.AddItem(ctx, testProduct(1, 100000), 2)

	second, err := NewService(ctx, store, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, second.Items(), 1)
	assert.Equal(t, 2, second.Items()[0].Quantity)
	assert.True(t, decimal.NewFromInt(200000).Equal(second.TotalPrice()))
}

// failingStore rejects all writes, simulating an exhausted storage quota.
type failingStore struct {
	kv.Store
}

func (f failingStore) Set(_ context.Context, _ string, _ []byte) error {
	return errors.New("quota exceeded")
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	s, err := NewService(ctx, failingStore{kv.NewMemory()}, zap.NewNop())
	require.NoError(t, err)

	s.AddItem(ctx, testProduct(1, 1000), 1)
	assert.Len(t, s.Items(), 1)
}
