package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/huandz/freshmart/internal/domain/checkout"
	"github.com/huandz/freshmart/internal/domain/compare"
	"github.com/huandz/freshmart/internal/domain/order"
	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/domain/promo"
	"github.com/huandz/freshmart/internal/domain/wishlist"
)

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// pathID parses the {id} path segment as a product id.
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, errors.Wrap(err, "parse id")
	}
	return id, nil
}

// respondError converts domain errors to HTTP error responses. Errors no
// case recognizes are logged and reported as 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, wishlist.ErrAlreadyAdded),
		errors.Is(err, compare.ErrAlreadyAdded),
		errors.Is(err, checkout.ErrPromoApplied),
		errors.Is(err, checkout.ErrSessionClosed):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, compare.ErrFull),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingAddress),
		errors.Is(err, promo.ErrInvalidCode),
		errors.Is(err, order.ErrItemNotFound),
		errors.Is(err, order.ErrInvalidRating):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		var balErr *checkout.InsufficientBalanceError
		if errors.As(err, &balErr) {
			writeJSON(w, http.StatusPaymentRequired, struct {
				errorResponse
				Shortfall string `json:"shortfall"`
			}{
				errorResponse: errorResponse{
					Code:    http.StatusPaymentRequired,
					Message: balErr.Error(),
				},
				Shortfall: balErr.Shortfall().String(),
			})
			return
		}

		var trErr *order.InvalidTransitionError
		if errors.As(err, &trErr) {
			writeError(w, http.StatusUnprocessableEntity, trErr.Error())
			return
		}

		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
