package store

import (
	"time"

	"storefront/internal/domain"
)

func (s State) IsInWishlist(id string) bool {
	return s.wishlistIndex(id) >= 0
}

func (s State) wishlistIndex(id string) int {
	for i, item := range s.Wishlist {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// ToggleWishlist removes the product when saved and saves it otherwise.
func (s State) ToggleWishlist(p domain.Product, now time.Time) State {
	if s.IsInWishlist(p.ID) {
		return s.RemoveFromWishlist(p.ID)
	}
	return s.AddToWishlist(p, now)
}

// AddToWishlist saves the product; saving it twice keeps the first entry.
func (s State) AddToWishlist(p domain.Product, now time.Time) State {
	if s.IsInWishlist(p.ID) {
		return s
	}
	wishlist := make([]domain.WishlistItem, len(s.Wishlist), len(s.Wishlist)+1)
	copy(wishlist, s.Wishlist)
	s.Wishlist = append(wishlist, domain.WishlistItem{Product: p, DateAdded: now.UnixMilli()})
	return s
}

func (s State) RemoveFromWishlist(id string) State {
	idx := s.wishlistIndex(id)
	if idx < 0 {
		return s
	}
	wishlist := make([]domain.WishlistItem, 0, len(s.Wishlist)-1)
	wishlist = append(wishlist, s.Wishlist[:idx]...)
	wishlist = append(wishlist, s.Wishlist[idx+1:]...)
	s.Wishlist = wishlist
	return s
}

func (s State) ClearWishlist() State {
	s.Wishlist = []domain.WishlistItem{}
	return s
}
