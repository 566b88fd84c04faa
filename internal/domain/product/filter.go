package product

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortOrder enumerates the supported catalog orderings.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortName      SortOrder = "name"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating"
)

// Filter narrows and orders a catalog listing. Zero values mean "no
// constraint": an empty query matches everything, a nil price bound is
// unbounded, MinRating 0 admits all ratings.
type Filter struct {
	Query     string
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating float64
	Sort      SortOrder
}

// Apply returns the products matching the filter, in the requested order.
// The input slice is not modified.
func (f Filter) Apply(products []Product) []Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if p.Rating < f.MinRating {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}

	return out
}

// Categories returns the distinct categories present in the catalog, in
// first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
