package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create inserts o unless an order with the same gateway payment id
	// exists, in which case that order is returned with created=false.
	Create(ctx context.Context, o domain.Order) (out *domain.Order, created bool, err error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Order, error)
}
