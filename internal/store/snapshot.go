package store

import (
	"encoding/json"
	"reflect"

	"storefront/internal/domain"
)

// Snapshot is the persisted part of a State. The checkout intent and the
// open overlay belong to the running session only.
type Snapshot struct {
	Cart     []domain.CartItem     `json:"cart"`
	Wishlist []domain.WishlistItem `json:"wishlist"`
}

func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Cart:     make([]domain.CartItem, len(s.Cart)),
		Wishlist: make([]domain.WishlistItem, len(s.Wishlist)),
	}
	copy(snap.Cart, s.Cart)
	copy(snap.Wishlist, s.Wishlist)
	return snap
}

// Restore builds a fresh State from persisted data. Hand-edited or stale
// slots are normalised: duplicate lines merge and quantities floor at one.
func Restore(snap Snapshot) State {
	st := Empty()
	for _, item := range snap.Cart {
		item.Quantity = floorQuantity(item.Quantity)
		if idx := st.findLine(item.Key()); idx >= 0 {
			st.Cart[idx].Quantity += item.Quantity
			continue
		}
		st.Cart = append(st.Cart, item)
	}
	for _, item := range snap.Wishlist {
		if st.IsInWishlist(item.ID) {
			continue
		}
		st.Wishlist = append(st.Wishlist, item)
	}
	return st
}

// PersistedEqual reports whether a and b would persist to the same snapshot.
func PersistedEqual(a, b State) bool {
	return reflect.DeepEqual(a.Snapshot(), b.Snapshot())
}

func (s Snapshot) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Snapshot) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}
