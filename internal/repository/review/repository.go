package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	// ListByProduct returns reviews with the given status, newest first.
	ListByProduct(ctx context.Context, productID string, status domain.ReviewStatus) ([]domain.Review, error)
}
