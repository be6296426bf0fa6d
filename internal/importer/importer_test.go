package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

const header = `id,handle,title,description,price,originalPrice,category,gender,sizeType,sizes,pairsWellWith,image,variant.colorName,variant.colorHex,variant.image,variant.stock`

func TestCSVImporter_Run(t *testing.T) {
	csvData := header + `
00000000-0000-0000-0000-000000000001,sterling-vest,Sterling Vest,Cashmere,"10,600",18600,knitwear,men,clothing,S;M;L,pleated-trouser,/vest.jpg,Charcoal,#36454F,/vest-charcoal-1.jpg,3
,,,,,,,,,,,,,,/vest-charcoal-2.jpg,
,,,,,,,,,,,,Oat,#D8CBB3,/vest-oat.jpg,0
,wool-beanie,Wool Beanie,,900,,accessories,,onesize,,,/beanie.jpg,,,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(repo.items) != 2 {
		t.Fatalf("expected 2 products imported, got %d (%d saved)", count, len(repo.items))
	}

	vest := repo.items[0]
	if vest.ID != "00000000-0000-0000-0000-000000000001" || vest.Handle != "sterling-vest" || vest.Price != 10600 {
		t.Fatalf("unexpected product data: %+v", vest)
	}
	if vest.OriginalPrice == nil || *vest.OriginalPrice != 18600 {
		t.Fatalf("expected original price, got %v", vest.OriginalPrice)
	}
	if len(vest.Sizes) != 3 || len(vest.PairsWellWith) != 1 || vest.PairsWellWith[0] != "pleated-trouser" {
		t.Fatalf("unexpected lists: sizes=%v pairs=%v", vest.Sizes, vest.PairsWellWith)
	}
	if len(vest.Images) != 1 || len(vest.Variants) != 2 {
		t.Fatalf("expected 1 image and 2 variants, got %+v", vest)
	}
	if len(vest.Variants[0].Images) != 2 || vest.Variants[0].Stock != 3 || vest.Variants[1].ColorName != "Oat" {
		t.Fatalf("unexpected variants %+v", vest.Variants)
	}

	beanie := repo.items[1]
	if beanie.SizeType != domain.SizeTypeOneSize || beanie.Price != 900 || beanie.OriginalPrice != nil {
		t.Fatalf("unexpected beanie %+v", beanie)
	}
}

func TestCSVImporter_Errors(t *testing.T) {
	cases := map[string]string{
		"missing price": header + "\n,tee,Tee,,,,,,,,,,,,,",
		"bad price":     header + "\n,tee,Tee,,abc,,,,,,,,,,,",
		"bad size type": header + "\n,tee,Tee,,100,,,,huge,,,,,,,",
		"orphan image":  header + "\n,tee,Tee,,100,,,,,,,,,,/x.jpg,",
		"bad stock":     header + "\n,tee,Tee,,100,,,,,,,,Red,#f00,,many",
		"short id":      header + "\nabc,tee,Tee,,100,,,,,,,,,,,",
	}
	for name, data := range cases {
		if _, err := NewCSVImporter(strings.NewReader(data), &stubProductRepo{}, nil).Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestCSVImporter_RepoError(t *testing.T) {
	repo := &stubProductRepo{err: errors.New("db down")}
	_, err := NewCSVImporter(strings.NewReader(header+"\n,tee,Tee,,100,,,,,,,,,,,"), repo, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "tee") {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}
