package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type stubRepo struct {
	products   []domain.Product
	err        error
	lastSearch string
}

func (s *stubRepo) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.Handle == slug {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *stubRepo) ListByHandles(_ context.Context, handles []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range s.products {
		for _, h := range handles {
			if p.Handle == h {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *stubRepo) Search(_ context.Context, term string) ([]domain.Product, error) {
	s.lastSearch = term
	return nil, s.err
}

func catalog() []domain.Product {
	return []domain.Product{
		{ID: "1", Handle: "vest", Category: "knitwear", PairsWellWith: []string{"trouser", "loafer", "trouser"}},
		{ID: "2", Handle: "cardigan", Category: "knitwear", PairsWellWith: []string{"trouser", "vest"}},
		{ID: "3", Handle: "trouser", Category: "trousers"},
		{ID: "4", Handle: "loafer", Category: "footwear"},
		{ID: "5", Handle: "polo", Category: "knitwear"},
	}
}

func TestRecommended_SameCategoryFirst(t *testing.T) {
	svc := New(&stubRepo{products: catalog()}, nil)
	got, err := svc.Recommended(context.Background(), "vest")
	if err != nil {
		t.Fatalf("recommended: %v", err)
	}
	if len(got) != RecommendedLimit {
		t.Fatalf("expected %d, got %d", RecommendedLimit, len(got))
	}
	if got[0].Handle != "cardigan" || got[1].Handle != "polo" {
		t.Fatalf("expected knitwear first, got %+v", got)
	}
	for _, p := range got {
		if p.Handle == "vest" {
			t.Fatalf("recommended included the product itself")
		}
	}
}

func TestRecommended_NotFound(t *testing.T) {
	svc := New(&stubRepo{products: catalog()}, nil)
	if _, err := svc.Recommended(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsells_DedupesAndSkipsCart(t *testing.T) {
	svc := New(&stubRepo{products: catalog()}, nil)
	got, err := svc.Upsells(context.Background(), []string{"1", "2"})
	if err != nil {
		t.Fatalf("upsells: %v", err)
	}
	if len(got) != 2 || got[0].Handle != "trouser" || got[1].Handle != "loafer" {
		t.Fatalf("unexpected upsells %+v", got)
	}
}

func TestUpsells_EmptyCart(t *testing.T) {
	svc := New(&stubRepo{products: catalog()}, nil)
	got, err := svc.Upsells(context.Background(), nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %v %v", got, err)
	}
}

func TestSearch_BlankTermSkipsRepo(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo, nil)
	got, err := svc.Search(context.Background(), "   ")
	if err != nil || len(got) != 0 {
		t.Fatalf("unexpected %v %v", got, err)
	}
	if repo.lastSearch != "" {
		t.Fatalf("repo should not be queried for a blank term")
	}
	if _, err := svc.Search(context.Background(), " linen "); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastSearch != "linen" {
		t.Fatalf("expected trimmed term, got %q", repo.lastSearch)
	}
}

func TestGet_RequiresSlug(t *testing.T) {
	svc := New(&stubRepo{}, nil)
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestByID(t *testing.T) {
	svc := New(&stubRepo{products: []domain.Product{{ID: "p1", Handle: "vest"}}}, nil)
	p, err := svc.ByID(context.Background(), " p1 ")
	if err != nil || p.Handle != "vest" {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if _, err := svc.ByID(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var verr *domain.ValidationError
	if _, err := svc.ByID(context.Background(), ""); !errors.As(err, &verr) || verr.Field != "productId" {
		t.Fatalf("expected productId validation error, got %v", err)
	}
}
