package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/huandz/freshmart/internal/domain/product"
)

type productListView struct {
	Items []product.Product `json:"items"`
}

func listView(items []product.Product) productListView {
	if items == nil {
		items = []product.Product{}
	}
	return productListView{Items: items}
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listView(h.wishlist.Items()))
}

func (h *Handler) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"productId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get product"))
		return
	}

	if err := h.wishlist.Add(r.Context(), *p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listView(h.wishlist.Items()))
}

func (h *Handler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.wishlist.Remove(r.Context(), id)
	writeJSON(w, http.StatusOK, listView(h.wishlist.Items()))
}

func (h *Handler) clearWishlist(w http.ResponseWriter, r *http.Request) {
	h.wishlist.Clear(r.Context())
	writeJSON(w, http.StatusOK, listView(h.wishlist.Items()))
}
