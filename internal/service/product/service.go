package product

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// RecommendedLimit is how many other products a product page suggests.
const RecommendedLimit = 3

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ListByHandles(ctx context.Context, handles []string) ([]domain.Product, error)
	Search(ctx context.Context, term string) ([]domain.Product, error)
}

type Service struct {
	repo   productRepo
	logger *zap.Logger
}

func New(repo productRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("catalog")}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return nonNil(s.repo.List(ctx))
}

func (s *Service) Get(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.Invalid("slug", "is required")
	}
	return s.repo.GetBySlug(ctx, slug)
}

// ByID resolves a product reference sent by a client, such as a cart add.
func (s *Service) ByID(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Invalid("productId", "is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Recommended returns up to RecommendedLimit other products, same category first.
func (s *Service) Recommended(ctx context.Context, slug string) ([]domain.Product, error) {
	current, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	var same, other []domain.Product
	for _, p := range all {
		if p.ID == current.ID {
			continue
		}
		if p.Category == current.Category {
			same = append(same, p)
		} else {
			other = append(other, p)
		}
	}
	out := append(same, other...)
	if len(out) > RecommendedLimit {
		out = out[:RecommendedLimit]
	}
	if out == nil {
		out = []domain.Product{}
	}
	return out, nil
}

// Search returns nothing for a blank term.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Product{}, nil
	}
	return nonNil(s.repo.Search(ctx, term))
}

// Upsells collects the pairs-well-with products of the given cart products,
// skipping duplicates and anything already in the cart.
func (s *Service) Upsells(ctx context.Context, cartProductIDs []string) ([]domain.Product, error) {
	if len(cartProductIDs) == 0 {
		return []domain.Product{}, nil
	}
	inCart, err := s.repo.ListByIDs(ctx, cartProductIDs)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]bool, len(cartProductIDs))
	for _, id := range cartProductIDs {
		skip[id] = true
	}
	seen := make(map[string]bool)
	var handles []string
	for _, p := range inCart {
		for _, h := range p.PairsWellWith {
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			handles = append(handles, h)
		}
	}
	if len(handles) == 0 {
		return []domain.Product{}, nil
	}

	found, err := s.repo.ListByHandles(ctx, handles)
	if err != nil {
		return nil, err
	}
	byHandle := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byHandle[p.Handle] = p
	}
	out := make([]domain.Product, 0, len(handles))
	for _, h := range handles {
		p, ok := byHandle[h]
		if !ok || skip[p.ID] {
			continue
		}
		skip[p.ID] = true
		out = append(out, p)
	}
	s.logger.Debug("upsells", zap.Int("cart_products", len(cartProductIDs)), zap.Int("count", len(out)))
	return out, nil
}

func nonNil(list []domain.Product, err error) ([]domain.Product, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Product{}
	}
	return list, nil
}
