package domain

import "testing"

func TestProductFlatten(t *testing.T) {
	orig := int64(18600)
	p := Product{
		Price:         10600,
		OriginalPrice: &orig,
		Variants: []Variant{
			{ColorName: "Black", ColorHex: "#000", Images: []string{"/b.jpg"}},
			{ColorName: "Ivory", ColorHex: "#FDFBF7"},
		},
	}.Flatten()

	if p.DiscountLabel != "SAVE RS. 8000" {
		t.Fatalf("unexpected label %q", p.DiscountLabel)
	}
	if len(p.Colors) != 2 || p.Colors[0] != "#000" {
		t.Fatalf("unexpected colors %v", p.Colors)
	}
	if len(p.Images) != 1 || p.Images[0] != "/b.jpg" {
		t.Fatalf("expected first variant images, got %v", p.Images)
	}
	if p.SizeType != SizeTypeClothing {
		t.Fatalf("expected clothing default, got %q", p.SizeType)
	}
}

func TestProductLabel_KeepsExplicit(t *testing.T) {
	orig := int64(100)
	p := Product{Price: 200, OriginalPrice: &orig}
	if p.Label() != "" {
		t.Fatalf("expected no label when original is lower, got %q", p.Label())
	}
	p.DiscountLabel = "30% OFF"
	if p.Label() != "30% OFF" {
		t.Fatalf("expected explicit label kept")
	}
}

func TestImagesForColor(t *testing.T) {
	p := Product{
		Images:   []string{"/default.jpg"},
		Variants: []Variant{{ColorName: "Navy", ColorHex: "#001F3F", Images: []string{"/navy.jpg"}}, {ColorName: "Sand", ColorHex: "#C2B280"}},
	}
	cases := map[string]string{
		"#001F3F": "/navy.jpg",
		"Navy":    "/navy.jpg",
		"Sand":    "/default.jpg",
		"Pink":    "/default.jpg",
		"":        "/default.jpg",
	}
	for color, want := range cases {
		if got := p.ImagesForColor(color); len(got) != 1 || got[0] != want {
			t.Fatalf("color %q: expected %s, got %v", color, want, got)
		}
	}
}

func TestSizeTypeRequiresSize(t *testing.T) {
	if !SizeTypeClothing.RequiresSize() || !SizeTypeNumeric.RequiresSize() || SizeTypeOneSize.RequiresSize() {
		t.Fatalf("unexpected size requirement")
	}
}
