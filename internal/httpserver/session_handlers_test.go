package httpserver

import (
	"net/http"
	"testing"
)

func TestCreateSession(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodPost, "/api/session", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	out := decode[map[string]string](t, rec)
	if out["token"] != "tok-s1" || out["sessionId"] != "s1" || out["expiresAt"] != "2030-01-01T00:00:00Z" {
		t.Fatalf("unexpected body %v", out)
	}
}

func TestStateBeforeHydrate(t *testing.T) {
	router := newTestRouter(t, testDeps())
	view := decode[stateView](t, do(router, http.MethodGet, "/api/session/state", "", "tok-s1"))
	if view.Hydrated || len(view.Cart) != 0 {
		t.Fatalf("expected unhydrated empty state, got %+v", view)
	}
	view = decode[stateView](t, do(router, http.MethodPost, "/api/session/hydrate", "", "tok-s1"))
	if !view.Hydrated {
		t.Fatalf("expected hydrated state, got %+v", view)
	}
}

func TestCartFlow(t *testing.T) {
	router := newTestRouter(t, testDeps())

	rec := do(router, http.MethodPost, "/api/cart/items", `{"productId":"p1","size":"M"}`, "tok-s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
	}
	do(router, http.MethodPost, "/api/cart/items", `{"productId":"p1","size":"M"}`, "tok-s1")
	view := decode[stateView](t, do(router, http.MethodPost, "/api/cart/items", `{"productId":"p1","size":"L"}`, "tok-s1"))
	if len(view.Cart) != 2 || view.ItemCount != 3 || view.CartTotal != 6000 {
		t.Fatalf("unexpected cart %+v", view)
	}

	view = decode[stateView](t, do(router, http.MethodPatch, "/api/cart/items", `{"productId":"p1","size":"M","delta":-5}`, "tok-s1"))
	if view.Cart[0].Quantity != 1 {
		t.Fatalf("expected quantity floored at 1, got %d", view.Cart[0].Quantity)
	}

	view = decode[stateView](t, do(router, http.MethodDelete, "/api/cart/items?productId=p1&size=L", "", "tok-s1"))
	if len(view.Cart) != 1 {
		t.Fatalf("expected one line left, got %+v", view.Cart)
	}

	view = decode[stateView](t, do(router, http.MethodDelete, "/api/cart", "", "tok-s1"))
	if len(view.Cart) != 0 || view.CartTotal != 0 {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}

func TestAddToCart_Errors(t *testing.T) {
	router := newTestRouter(t, testDeps())
	rec := do(router, http.MethodPost, "/api/cart/items", `{"size":"M"}`, "tok-s1")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decode[errorBody](t, rec); body.Field != "productId" {
		t.Fatalf("expected productId field, got %+v", body)
	}
	if rec := do(router, http.MethodPost, "/api/cart/items", `{"productId":"missing"}`, "tok-s1"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/api/cart/items", `{bad`, "tok-s1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestWishlistToggle(t *testing.T) {
	router := newTestRouter(t, testDeps())
	type toggleResp struct {
		InWishlist bool      `json:"inWishlist"`
		State      stateView `json:"state"`
	}

	first := decode[toggleResp](t, do(router, http.MethodPost, "/api/wishlist/toggle", `{"productId":"p1"}`, "tok-s1"))
	if !first.InWishlist || len(first.State.Wishlist) != 1 {
		t.Fatalf("expected added, got %+v", first)
	}
	check := decode[map[string]bool](t, do(router, http.MethodGet, "/api/wishlist/items/p1", "", "tok-s1"))
	if !check["inWishlist"] {
		t.Fatal("expected p1 in wishlist")
	}
	second := decode[toggleResp](t, do(router, http.MethodPost, "/api/wishlist/toggle", `{"productId":"p1"}`, "tok-s1"))
	if second.InWishlist || len(second.State.Wishlist) != 0 {
		t.Fatalf("expected removed, got %+v", second)
	}
}

func TestWishlistAddRemove(t *testing.T) {
	router := newTestRouter(t, testDeps())
	do(router, http.MethodPost, "/api/wishlist/items", `{"productId":"p1"}`, "tok-s1")
	view := decode[stateView](t, do(router, http.MethodPost, "/api/wishlist/items", `{"productId":"p1"}`, "tok-s1"))
	if len(view.Wishlist) != 1 {
		t.Fatalf("expected idempotent add, got %+v", view.Wishlist)
	}
	view = decode[stateView](t, do(router, http.MethodDelete, "/api/wishlist/items/p1", "", "tok-s1"))
	if len(view.Wishlist) != 0 {
		t.Fatalf("expected removal, got %+v", view.Wishlist)
	}
	view = decode[stateView](t, do(router, http.MethodDelete, "/api/wishlist", "", "tok-s1"))
	if len(view.Wishlist) != 0 {
		t.Fatalf("expected empty wishlist, got %+v", view.Wishlist)
	}
}

func TestCheckoutItem(t *testing.T) {
	router := newTestRouter(t, testDeps())
	view := decode[stateView](t, do(router, http.MethodPut, "/api/checkout-item", `{"productId":"p1","size":"S","quantity":2}`, "tok-s1"))
	if view.CheckoutItem == nil || view.CheckoutItem.Quantity != 2 || !view.IsCartOpen {
		t.Fatalf("expected intent with open drawer, got %+v", view)
	}
	view = decode[stateView](t, do(router, http.MethodPatch, "/api/checkout-item", `{"delta":1}`, "tok-s1"))
	if view.CheckoutItem.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", view.CheckoutItem.Quantity)
	}
	view = decode[stateView](t, do(router, http.MethodDelete, "/api/checkout-item", "", "tok-s1"))
	if view.CheckoutItem != nil || !view.IsCartOpen {
		t.Fatalf("expected intent cleared with drawer open, got %+v", view)
	}
}

func TestOverlay(t *testing.T) {
	router := newTestRouter(t, testDeps())
	view := decode[stateView](t, do(router, http.MethodPost, "/api/overlay/cart/open", "", "tok-s1"))
	if !view.IsCartOpen {
		t.Fatal("expected cart open")
	}
	view = decode[stateView](t, do(router, http.MethodPost, "/api/overlay/wishlist/toggle", "", "tok-s1"))
	if view.IsCartOpen || !view.IsWishlistOpen {
		t.Fatalf("expected only wishlist open, got %+v", view)
	}
	view = decode[stateView](t, do(router, http.MethodPost, "/api/overlay/wishlist/close", "", "tok-s1"))
	if view.IsWishlistOpen {
		t.Fatal("expected wishlist closed")
	}
	if rec := do(router, http.MethodPost, "/api/overlay/menu/open", "", "tok-s1"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown overlay, got %d", rec.Code)
	}
	if rec := do(router, http.MethodPost, "/api/overlay/cart/spin", "", "tok-s1"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown action, got %d", rec.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	router := newTestRouter(t, testDeps())
	do(router, http.MethodPost, "/api/cart/items", `{"productId":"p1"}`, "tok-s1")
	view := decode[stateView](t, do(router, http.MethodPost, "/api/session/hydrate", "", "tok-s2"))
	if len(view.Cart) != 0 {
		t.Fatalf("expected s2 empty, got %+v", view.Cart)
	}
}
