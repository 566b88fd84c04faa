// Package handler exposes the storefront over a JSON HTTP API. Each handler
// decodes the request, delegates to a domain service, and maps domain errors
// to status codes; no business logic lives here.
package handler

import (
	"net/http"

	"github.com/huandz/freshmart/internal/chat"
	"github.com/huandz/freshmart/internal/domain/cart"
	"github.com/huandz/freshmart/internal/domain/checkout"
	"github.com/huandz/freshmart/internal/domain/compare"
	"github.com/huandz/freshmart/internal/domain/order"
	"github.com/huandz/freshmart/internal/domain/product"
	"github.com/huandz/freshmart/internal/domain/wishlist"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler wires every storefront endpoint to its domain dependency.
type Handler struct {
	products     product.Repository
	cart         *cart.Service
	wishlist     *wishlist.Service
	compare      *compare.Service
	orders       *order.Service
	checkout     *checkout.Service
	chat         *chat.Responder
	imageBaseURL string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	cartSvc *cart.Service,
	wishlistSvc *wishlist.Service,
	compareSvc *compare.Service,
	orderSvc *order.Service,
	checkoutSvc *checkout.Service,
	chatSvc *chat.Responder,
) *Handler {
	return &Handler{
		products:     products,
		cart:         cartSvc,
		wishlist:     wishlistSvc,
		compare:      compareSvc,
		orders:       orderSvc,
		checkout:     checkoutSvc,
		chat:         chatSvc,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.HandleFunc("GET /api/categories", h.listCategories)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("GET /api/wishlist", h.getWishlist)
	mux.HandleFunc("POST /api/wishlist/items", h.addWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist/items/{id}", h.removeWishlistItem)
	mux.HandleFunc("DELETE /api/wishlist", h.clearWishlist)

	mux.HandleFunc("GET /api/compare", h.getCompare)
	mux.HandleFunc("POST /api/compare/items", h.addCompareItem)
	mux.HandleFunc("DELETE /api/compare/items/{id}", h.removeCompareItem)
	mux.HandleFunc("DELETE /api/compare", h.clearCompare)

	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/orders/{id}/tracking", h.trackOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("POST /api/orders/{id}/reviews", h.addReview)

	mux.HandleFunc("GET /api/balance", h.getBalance)
	mux.HandleFunc("POST /api/balance/adjust", h.adjustBalance)

	mux.HandleFunc("POST /api/checkout/quote", h.quoteCheckout)
	mux.HandleFunc("POST /api/checkout", h.confirmCheckout)

	mux.HandleFunc("POST /api/chat", h.chatReply)

	return mux
}
