package handler

import (
	"net/http"

	"github.com/go-faster/errors"
)

func (h *Handler) getCompare(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listView(h.compare.Items()))
}

func (h *Handler) addCompareItem(w http.ResponseWriter, r *http.Request) {
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

	if err := h.compare.Add(r.Context(), *p); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listView(h.compare.Items()))
}

func (h *Handler) removeCompareItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	h.compare.Remove(r.Context(), id)
	writeJSON(w, http.StatusOK, listView(h.compare.Items()))
}

func (h *Handler) clearCompare(w http.ResponseWriter, r *http.Request) {
	h.compare.Clear(r.Context())
	writeJSON(w, http.StatusOK, listView(h.compare.Items()))
}
