// Package data embeds the default product catalog used when the storefront
// runs without a database.
package data

import (
	_ "embed"
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/huandz/freshmart/internal/domain/product"
)

//go:embed products.json
var productsJSON []byte

// Catalog decodes the embedded default catalog.
func Catalog() ([]product.Product, error) {
	var products []product.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, errors.Wrap(err, "decode embedded catalog")
	}
	return products, nil
}
