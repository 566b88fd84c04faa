//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
)

func clearCart(t *testing.T) {
	t.Helper()
	resp := doRequest(t, http.MethodDelete, "/api/cart", nil)
	resp.Body.Close()
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return f
}

func TestProducts_List(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 12 {
		t.Fatalf("expected 12 products, got %d", len(products))
	}
}

func TestProducts_FilterByCategory(t *testing.T) {
	resp := doGet(t, "/api/products?category=Vegetables")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("expected at least one vegetable")
	}
	for _, p := range products {
		if p.Category != "Vegetables" {
			t.Errorf("product %d: category %q, want Vegetables", p.ID, p.Category)
		}
	}
}

func TestProducts_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/99999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("body code: got %d, want 404", body.Code)
	}
}

func TestCategories(t *testing.T) {
	resp := doGet(t, "/api/categories")
	defer resp.Body.Close()

	categories := decodeJSON[[]string](t, resp)
	if len(categories) == 0 {
		t.Fatal("expected at least one category")
	}
}

func TestCart_AddAndMerge(t *testing.T) {
	clearCart(t)

	resp := doPost(t, "/api/cart/items", map[string]any{"productId": 1, "quantity": 2})
	resp.Body.Close()
	resp = doPost(t, "/api/cart/items", map[string]any{"productId": 1, "quantity": 1})
	defer resp.Body.Close()

	cart := decodeJSON[cartResponse](t, resp)
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", cart.Items[0].Quantity)
	}
	if cart.TotalItems != 3 {
		t.Errorf("totalItems: got %d, want 3", cart.TotalItems)
	}
}

func TestCheckout_FullFlow(t *testing.T) {
	clearCart(t)

	balResp := doGet(t, "/api/balance")
	before := mustFloat(t, decodeJSON[balanceResponse](t, balResp).Balance)
	balResp.Body.Close()

	// Two kg of carrots: 2 × 25,000.
	resp := doPost(t, "/api/cart/items", map[string]any{"productId": 1, "quantity": 2})
	resp.Body.Close()

	// Quote: 50,000 − 10% + 30,000 standard shipping = 75,000.
	resp = doPost(t, "/api/checkout/quote", map[string]any{
		"shipping":  "standard",
		"promoCode": "HUANDZ",
	})
	quote := decodeJSON[quoteResponse](t, resp)
	resp.Body.Close()
	if got := mustFloat(t, quote.Total); got != 75000 {
		t.Fatalf("quote total: got %v, want 75000", got)
	}

	resp = doPost(t, "/api/checkout", map[string]any{
		"address":   "12 Nguyen Hue, District 1",
		"shipping":  "standard",
		"payment":   "balance",
		"promoCode": "HUANDZ",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}
	if got := mustFloat(t, order.Total); got != 75000 {
		t.Errorf("order total: got %v, want 75000", got)
	}

	// Cart cleared.
	cartResp := doGet(t, "/api/cart")
	cart := decodeJSON[cartResponse](t, cartResp)
	cartResp.Body.Close()
	if len(cart.Items) != 0 {
		t.Errorf("cart not cleared: %d items", len(cart.Items))
	}

	// Balance debited by the order total.
	balResp = doGet(t, "/api/balance")
	after := mustFloat(t, decodeJSON[balanceResponse](t, balResp).Balance)
	balResp.Body.Close()
	if before-after != 75000 {
		t.Errorf("balance delta: got %v, want 75000", before-after)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	clearCart(t)

	resp := doPost(t, "/api/checkout", map[string]any{"address": "somewhere"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestOrders_StatusLifecycle(t *testing.T) {
	clearCart(t)

	resp := doPost(t, "/api/cart/items", map[string]any{"productId": 2, "quantity": 1})
	resp.Body.Close()
	resp = doPost(t, "/api/checkout", map[string]any{"address": "somewhere", "payment": "qr"})
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	// Skipping straight to delivered is rejected.
	resp = doRequest(t, http.MethodPatch, "/api/orders/"+order.ID+"/status",
		map[string]any{"status": "delivered"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, http.MethodPatch, "/api/orders/"+order.ID+"/status",
		map[string]any{"status": "shipping"})
	updated := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()
	if updated.Status != "shipping" {
		t.Fatalf("status: got %q, want shipping", updated.Status)
	}

	resp = doGet(t, "/api/orders/"+order.ID+"/tracking")
	tracking := decodeJSON[trackingResponse](t, resp)
	resp.Body.Close()
	if tracking.Progress != 1 {
		t.Errorf("progress: got %d, want 1", tracking.Progress)
	}

	resp = doGet(t, "/api/orders?status=shipping")
	listed := decodeJSON[[]orderResponse](t, resp)
	resp.Body.Close()
	found := false
	for _, o := range listed {
		if o.ID == order.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("order %s not in shipping listing", order.ID)
	}
}

func TestOrders_Review(t *testing.T) {
	clearCart(t)

	resp := doPost(t, "/api/cart/items", map[string]any{"productId": 3, "quantity": 1})
	resp.Body.Close()
	resp = doPost(t, "/api/checkout", map[string]any{"address": "somewhere", "payment": "qr"})
	order := decodeJSON[orderResponse](t, resp)
	resp.Body.Close()

	resp = doPost(t, "/api/orders/"+order.ID+"/reviews", map[string]any{
		"productId": 3, "rating": 5, "comment": "very fresh",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	reviewsResp := doGet(t, "/api/products/3/reviews")
	reviews := decodeJSON[[]map[string]any](t, reviewsResp)
	reviewsResp.Body.Close()
	if len(reviews) == 0 {
		t.Fatal("expected at least one review")
	}
}

func TestWishlist_Duplicate(t *testing.T) {
	resp := doRequest(t, http.MethodDelete, "/api/wishlist", nil)
	resp.Body.Close()

	resp = doPost(t, "/api/wishlist/items", map[string]any{"productId": 4})
	resp.Body.Close()

	resp = doPost(t, "/api/wishlist/items", map[string]any{"productId": 4})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCompare_Cap(t *testing.T) {
	resp := doRequest(t, http.MethodDelete, "/api/compare", nil)
	resp.Body.Close()

	for id := 1; id <= 4; id++ {
		resp := doPost(t, "/api/compare/items", map[string]any{"productId": id})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %d: expected 200, got %d", id, resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp = doPost(t, "/api/compare/items", map[string]any{"productId": 5})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestChat(t *testing.T) {
	resp := doPost(t, "/api/chat", map[string]any{"message": "hello"})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[map[string]string](t, resp)
	if body["reply"] == "" {
		t.Error("expected a non-empty reply")
	}
}

func TestAdmin_CreateAndDelete(t *testing.T) {
	resp := doPost(t, "/api/products", map[string]any{
		"name": "Dragon Fruit", "price": "60000", "category": "Fruits",
		"inStock": true, "unit": "kg",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	del := doRequest(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", created.ID), nil)
	defer del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.StatusCode)
	}
}
