package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/huandz/freshmart/internal/domain/checkout"
)

type quoteView struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// quoteCheckout prices the current cart for a shipping tier and optional
// discount code without committing anything.
func (h *Handler) quoteCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Shipping  checkout.ShippingMethod `json:"shipping"`
		PromoCode string                  `json:"promoCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Shipping.Valid() {
		req.Shipping = checkout.ShippingStandard
	}

	session, err := h.checkout.Begin(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.PromoCode != "" {
		if _, err := session.ApplyPromo(r.Context(), req.PromoCode); err != nil {
			respondError(w, r, err)
			return
		}
	}

	q, err := session.Quote(r.Context(), req.Shipping)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteView{
		Subtotal:    q.Subtotal,
		ShippingFee: q.ShippingFee,
		Discount:    q.Discount,
		Total:       q.Total,
	})
}

// confirmCheckout runs the whole purchase in one shot and returns the
// created order.
func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address   string                  `json:"address"`
		Shipping  checkout.ShippingMethod `json:"shipping"`
		Payment   checkout.PaymentMethod  `json:"payment"`
		PromoCode string                  `json:"promoCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.checkout.Checkout(r.Context(), checkout.Request{
		ConfirmRequest: checkout.ConfirmRequest{
			Address:  req.Address,
			Shipping: req.Shipping,
			Payment:  req.Payment,
		},
		PromoCode: req.PromoCode,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
