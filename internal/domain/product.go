package domain

import (
	"fmt"
	"time"
)

// SizeType tells the storefront which size selector a product needs.
type SizeType string

const (
	SizeTypeClothing SizeType = "clothing"
	SizeTypeNumeric  SizeType = "numeric"
	SizeTypeOneSize  SizeType = "onesize"
)

// RequiresSize reports whether a size must be chosen before checkout.
func (t SizeType) RequiresSize() bool {
	return t != SizeTypeOneSize
}

// Variant is one colourway of a product.
type Variant struct {
	ColorName string   `json:"colorName"`
	ColorHex  string   `json:"colorHex"`
	Images    []string `json:"images"`
	Stock     int      `json:"stock"`
}

type Product struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Handle        string    `json:"handle"`
	Description   string    `json:"description,omitempty"`
	Price         int64     `json:"price"`
	OriginalPrice *int64    `json:"originalPrice,omitempty"`
	DiscountLabel string    `json:"discountLabel,omitempty"`
	Category      string    `json:"category"`
	Gender        string    `json:"gender,omitempty"`
	Images        []string  `json:"images"`
	Colors        []string  `json:"colors"`
	Variants      []Variant `json:"variants,omitempty"`
	Sizes         []string  `json:"sizes,omitempty"`
	SizeType      SizeType  `json:"sizeType,omitempty"`
	IsOutOfStock  bool      `json:"isOutOfStock,omitempty"`
	PairsWellWith []string  `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// ImagesForColor returns the images of the variant matching color by hex or
// name, or the product's default images when no variant has imagery for it.
func (p Product) ImagesForColor(color string) []string {
	if color == "" {
		return p.Images
	}
	for _, v := range p.Variants {
		if v.ColorHex != color && v.ColorName != color {
			continue
		}
		if len(v.Images) > 0 {
			return v.Images
		}
		break
	}
	return p.Images
}

// Discount returns originalPrice - price, or 0 without a higher original price.
func (p Product) Discount() int64 {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price {
		return 0
	}
	return *p.OriginalPrice - p.Price
}

// Label fills DiscountLabel from the price pair when the catalog left it blank.
func (p Product) Label() string {
	if p.DiscountLabel != "" {
		return p.DiscountLabel
	}
	if d := p.Discount(); d > 0 {
		return fmt.Sprintf("SAVE RS. %d", d)
	}
	return ""
}

// Flatten fills the derived storefront fields: colour swatches from the
// variants, images from the first variant when the product has none, the
// discount label and the default size type.
func (p Product) Flatten() Product {
	if len(p.Colors) == 0 && len(p.Variants) > 0 {
		colors := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			if v.ColorHex != "" {
				colors = append(colors, v.ColorHex)
			}
		}
		p.Colors = colors
	}
	if len(p.Images) == 0 && len(p.Variants) > 0 {
		p.Images = p.Variants[0].Images
	}
	if p.SizeType == "" {
		p.SizeType = SizeTypeClothing
	}
	p.DiscountLabel = p.Label()
	return p
}
