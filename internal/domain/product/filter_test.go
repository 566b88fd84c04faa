package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testCatalog() []Product {
	orig := dec(30000)
	return []Product{
		{ID: 1, Name: "Organic Carrots", Category: "Vegetables", Price: dec(25000), OriginalPrice: &orig, Rating: 5, InStock: true, Unit: "kg"},
		{ID: 2, Name: "Fresh Salmon", Category: "Seafood", Price: dec(185000), Rating: 4.5, InStock: true, Unit: "kg"},
		{ID: 3, Name: "Carrot Juice", Category: "Drinks", Price: dec(40000), Rating: 3, InStock: false, Unit: "bottle"},
		{ID: 4, Name: "Brown Rice", Category: "Grains", Price: dec(55000), Rating: 4, InStock: true, Unit: "bag"},
	}
}

func TestFilter_Apply(t *testing.T) {
	catalog := testCatalog()
	min := dec(30000)
	max := dec(60000)

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []int
	}{
		{"no constraints", Filter{}, []int{1, 2, 3, 4}},
		{"query is case-insensitive substring", Filter{Query: "carrot"}, []int{1, 3}},
		{"query whitespace trimmed", Filter{Query: "  salmon  "}, []int{2}},
		{"category", Filter{Category: "Seafood"}, []int{2}},
		{"price range", Filter{MinPrice: &min, MaxPrice: &max}, []int{3, 4}},
		{"min rating", Filter{MinRating: 4}, []int{1, 2, 4}},
		{"combined", Filter{Query: "carrot", MinRating: 4}, []int{1}},
		{"no match", Filter{Query: "durian"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(catalog)
			ids := make([]int, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilter_Sort(t *testing.T) {
	catalog := testCatalog()

	got := Filter{Sort: SortPriceAsc}.Apply(catalog)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[len(got)-1].ID)

	got = Filter{Sort: SortPriceDesc}.Apply(catalog)
	assert.Equal(t, 2, got[0].ID)

	got = Filter{Sort: SortRating}.Apply(catalog)
	assert.Equal(t, 1, got[0].ID)

	got = Filter{Sort: SortName}.Apply(catalog)
	assert.Equal(t, "Brown Rice", got[0].Name)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	catalog := testCatalog()
	Filter{Sort: SortPriceDesc}.Apply(catalog)
	assert.Equal(t, 1, catalog[0].ID)
}

func TestCategories(t *testing.T) {
	got := Categories(testCatalog())
	assert.Equal(t, []string{"Vegetables", "Seafood", "Drinks", "Grains"}, got)
}

func TestDiscountPercent(t *testing.T) {
	catalog := testCatalog()
	assert.Equal(t, 17, catalog[0].DiscountPercent()) // (30000-25000)/30000 ≈ 16.7
	assert.Equal(t, 0, catalog[1].DiscountPercent())
}
