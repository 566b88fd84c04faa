package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/huandz/freshmart/internal/domain/order"
)

// listOrders returns orders most recent first, optionally narrowed by a
// comma-separated status query parameter.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var statuses []order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			st := order.Status(strings.TrimSpace(s))
			if !st.Valid() {
				writeError(w, http.StatusBadRequest, "unknown status "+string(st))
				return
			}
			statuses = append(statuses, st)
		}
	}

	out := h.orders.OrdersByStatus(statuses...)
	if out == nil {
		out = []order.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get order"))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// trackOrder returns the order together with its position on the
// pending → shipping → delivered track. Terminal failure states report -1.
func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get order"))
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Order    *order.Order `json:"order"`
		Progress int          `json:"progress"`
	}{Order: o, Progress: o.Status.Progress()})
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status order.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(req.Status))
		return
	}

	id := r.PathValue("id")
	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Get(id)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get order"))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// addReview rates a product bought in the order: the order line is flagged
// reviewed and the review lands on the product's list.
func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int    `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.orders.AddReview(r.Context(), r.PathValue("id"), req.ProductID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.orders.Reviews(req.ProductID))
}

type balanceView struct {
	Balance decimal.Decimal `json:"balance"`
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, balanceView{Balance: h.orders.Balance()})
}

// adjustBalance applies a signed delta to the stored-value balance.
func (h *Handler) adjustBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance := h.orders.UpdateBalance(r.Context(), req.Amount)
	writeJSON(w, http.StatusOK, balanceView{Balance: balance})
}
