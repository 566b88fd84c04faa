package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/huandz/freshmart/internal/domain/product"
)

// listProducts serves the catalog, narrowed and ordered by query parameters:
// q, category, min_price, max_price, min_rating, sort.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list products"))
		return
	}

	out := filter.Apply(products)
	for i := range out {
		out[i] = h.withImageBase(out[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get product"))
		return
	}
	writeJSON(w, http.StatusOK, h.withImageBase(*p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p product.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "product name is required")
		return
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		respondError(w, r, errors.Wrap(err, "create product"))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var p product.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.ID = id

	if err := h.products.Update(r.Context(), &p); err != nil {
		respondError(w, r, errors.Wrap(err, "update product"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondError(w, r, errors.Wrap(err, "delete product"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list products"))
		return
	}
	writeJSON(w, http.StatusOK, product.Categories(products))
}

// listReviews returns a product's reviews, oldest first. The product must
// exist; an unreviewed product yields an empty list.
func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := h.products.GetByID(r.Context(), id); err != nil {
		respondError(w, r, errors.Wrap(err, "get product"))
		return
	}
	writeJSON(w, http.StatusOK, h.orders.Reviews(id))
}

func parseFilter(r *http.Request) (product.Filter, error) {
	q := r.URL.Query()
	f := product.Filter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     product.SortOrder(q.Get("sort")),
	}

	switch f.Sort {
	case product.SortDefault, product.SortName, product.SortPriceAsc,
		product.SortPriceDesc, product.SortRating:
	default:
		return f, errors.Errorf("unknown sort order %q", f.Sort)
	}

	for name, dst := range map[string]**decimal.Decimal{
		"min_price": &f.MinPrice,
		"max_price": &f.MaxPrice,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, errors.Wrapf(err, "parse %s", name)
		}
		*dst = &d
	}

	if raw := q.Get("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, errors.Wrap(err, "parse min_rating")
		}
		f.MinRating = rating
	}

	return f, nil
}

// withImageBase prefixes relative image paths with the configured base URL.
func (h *Handler) withImageBase(p product.Product) product.Product {
	if h.imageBaseURL != "" && p.Image != "" && !strings.Contains(p.Image, "://") {
		p.Image = h.imageBaseURL + p.Image
	}
	return p
}
