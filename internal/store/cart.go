package store

import "storefront/internal/domain"

func (s State) findLine(key domain.LineKey) int {
	for i, item := range s.Cart {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// AddToCart bumps the matching line by one or appends a new line showing
// the images of the chosen colour. Size and colour are stored as given.
func (s State) AddToCart(p domain.Product, size, color string) State {
	key := domain.LineKey{ID: p.ID, Size: size, Color: color}
	cart := make([]domain.CartItem, len(s.Cart), len(s.Cart)+1)
	copy(cart, s.Cart)
	if idx := s.findLine(key); idx >= 0 {
		cart[idx].Quantity++
	} else {
		p.Images = p.ImagesForColor(color)
		cart = append(cart, domain.CartItem{
			Product:       p,
			Quantity:      1,
			SelectedSize:  size,
			SelectedColor: color,
		})
	}
	s.Cart = cart
	return s
}

// RemoveFromCart drops the matching line. Unknown lines leave the state as is.
func (s State) RemoveFromCart(id, size, color string) State {
	idx := s.findLine(domain.LineKey{ID: id, Size: size, Color: color})
	if idx < 0 {
		return s
	}
	cart := make([]domain.CartItem, 0, len(s.Cart)-1)
	cart = append(cart, s.Cart[:idx]...)
	cart = append(cart, s.Cart[idx+1:]...)
	s.Cart = cart
	return s
}

// UpdateQuantity applies delta to the matching line, never going below one.
// Removing a line is only done through RemoveFromCart.
func (s State) UpdateQuantity(id, size, color string, delta int) State {
	idx := s.findLine(domain.LineKey{ID: id, Size: size, Color: color})
	if idx < 0 {
		return s
	}
	cart := make([]domain.CartItem, len(s.Cart))
	copy(cart, s.Cart)
	cart[idx].Quantity = floorQuantity(cart[idx].Quantity + delta)
	s.Cart = cart
	return s
}

func (s State) CartTotal() int64 {
	return Total(s.Cart)
}

// ItemCount is the number of units across all cart lines.
func (s State) ItemCount() int {
	n := 0
	for _, item := range s.Cart {
		n += item.Quantity
	}
	return n
}

func (s State) ClearCart() State {
	s.Cart = []domain.CartItem{}
	return s
}

func floorQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
