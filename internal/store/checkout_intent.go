package store

import "storefront/internal/domain"

// SetCheckoutItem stores a buy-now item outside the cart and opens the cart
// drawer so the same checkout panel handles it.
func (s State) SetCheckoutItem(item domain.CartItem) State {
	item.Images = item.ImagesForColor(item.SelectedColor)
	item.Quantity = floorQuantity(item.Quantity)
	s.CheckoutItem = &item
	return s.OpenCart()
}

// ClearCheckoutItem drops the intent. The drawer stays as it was.
func (s State) ClearCheckoutItem() State {
	s.CheckoutItem = nil
	return s
}

func (s State) UpdateCheckoutItemQuantity(delta int) State {
	if s.CheckoutItem == nil {
		return s
	}
	item := *s.CheckoutItem
	item.Quantity = floorQuantity(item.Quantity + delta)
	s.CheckoutItem = &item
	return s
}
