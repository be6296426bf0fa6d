package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// ListByIDs returns the products found among ids, in catalog order.
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ListByHandles(ctx context.Context, handles []string) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	// Search matches term as a case-insensitive word prefix in title,
	// category, description or any variant colour name.
	Search(ctx context.Context, term string) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
