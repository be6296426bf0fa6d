package review

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/validate"
)

type reviewRepo interface {
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string, status domain.ReviewStatus) ([]domain.Review, error)
}

type productFinder interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

type Service struct {
	repo     reviewRepo
	products productFinder
	logger   *zap.Logger
}

func New(repo reviewRepo, products productFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, products: products, logger: logger.Named("reviews")}
}

type CreateInput struct {
	Name    string `json:"name" validate:"required,max=80"`
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// Create stores a review as Pending; it shows once moderated to Approved.
func (s *Service) Create(ctx context.Context, slug string, in CreateInput) (*domain.Review, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Review{
		ProductID: p.ID,
		Name:      in.Name,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Status:    domain.ReviewPending,
	})
}

func (s *Service) ListApproved(ctx context.Context, slug string) ([]domain.Review, error) {
	p, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByProduct(ctx, p.ID, domain.ReviewApproved)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Review{}
	}
	return list, nil
}
