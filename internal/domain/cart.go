package domain

// CartItem is a product line in the bag. Two items are the same line only
// when product id, size and colour all match.
type CartItem struct {
	Product
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

// LineKey identifies a cart line.
type LineKey struct {
	ID    string
	Size  string
	Color string
}

func (i CartItem) Key() LineKey {
	return LineKey{ID: i.ID, Size: i.SelectedSize, Color: i.SelectedColor}
}

// Subtotal is price times quantity.
func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// WishlistItem is a saved product; identity is the product id alone.
type WishlistItem struct {
	Product
	DateAdded int64 `json:"dateAdded,omitempty"`
}
