package collection

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

type collectionRepo interface {
	List(ctx context.Context) ([]domain.Collection, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Collection, error)
}

type productLister interface {
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
}

type Service struct {
	repo     collectionRepo
	products productLister
	logger   *zap.Logger
}

func New(repo collectionRepo, products productLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, products: products, logger: logger.Named("collections")}
}

func (s *Service) List(ctx context.Context) ([]domain.Collection, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Collection{}
	}
	return list, nil
}

// Get returns the collection with the products whose category equals its
// filter tag. A collection without a tag has no products.
func (s *Service) Get(ctx context.Context, slug string) (*domain.Collection, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.Invalid("slug", "is required")
	}
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.Products = []domain.Product{}
	if c.FilterTag == "" {
		return c, nil
	}
	products, err := s.products.ListByCategory(ctx, c.FilterTag)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		c.Products = products
	}
	s.logger.Debug("collection loaded", zap.String("slug", slug), zap.Int("products", len(c.Products)))
	return c, nil
}
