// Package store holds the shopping-session state: cart, wishlist, the
// single-item checkout intent and which overlay is open. Every operation
// returns a new State and leaves the receiver untouched.
package store

import "storefront/internal/domain"

// Overlay is the drawer currently shown. Only one can be open at a time.
type Overlay string

const (
	OverlayNone     Overlay = "none"
	OverlayCart     Overlay = "cart"
	OverlayWishlist Overlay = "wishlist"
)

type State struct {
	Cart         []domain.CartItem     `json:"cart"`
	Wishlist     []domain.WishlistItem `json:"wishlist"`
	CheckoutItem *domain.CartItem      `json:"checkoutItem,omitempty"`
	Overlay      Overlay               `json:"overlay"`
}

// Empty is the state of a session that has not been hydrated yet.
func Empty() State {
	return State{
		Cart:     []domain.CartItem{},
		Wishlist: []domain.WishlistItem{},
		Overlay:  OverlayNone,
	}
}

func (s State) IsCartOpen() bool     { return s.Overlay == OverlayCart }
func (s State) IsWishlistOpen() bool { return s.Overlay == OverlayWishlist }

func (s State) OpenCart() State {
	s.Overlay = OverlayCart
	return s
}

func (s State) OpenWishlist() State {
	s.Overlay = OverlayWishlist
	return s
}

func (s State) CloseCart() State {
	if s.Overlay == OverlayCart {
		s.Overlay = OverlayNone
	}
	return s
}

func (s State) CloseWishlist() State {
	if s.Overlay == OverlayWishlist {
		s.Overlay = OverlayNone
	}
	return s
}

func (s State) ToggleCart() State {
	if s.IsCartOpen() {
		return s.CloseCart()
	}
	return s.OpenCart()
}

func (s State) ToggleWishlistDrawer() State {
	if s.IsWishlistOpen() {
		return s.CloseWishlist()
	}
	return s.OpenWishlist()
}

// ActiveItems is what checkout charges for: the intent when one is set,
// otherwise the whole cart.
func (s State) ActiveItems() []domain.CartItem {
	if s.CheckoutItem != nil {
		return []domain.CartItem{*s.CheckoutItem}
	}
	return s.Cart
}

// ClearActive empties whatever ActiveItems returned. A buy-now purchase
// leaves the cart alone.
func (s State) ClearActive() State {
	if s.CheckoutItem != nil {
		return s.ClearCheckoutItem()
	}
	return s.ClearCart()
}

// Total sums price times quantity over items.
func Total(items []domain.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
