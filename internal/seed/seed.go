package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	collectionrepo "storefront/internal/repository/collection"
	productrepo "storefront/internal/repository/product"
	reviewrepo "storefront/internal/repository/review"
)

func price(v int64) *int64 { return &v }

var collections = []domain.Collection{
	{Handle: "knitwear", Title: "Knitwear", FilterTag: "knitwear", Description: "Cashmere and merino for cold mornings"},
	{Handle: "shirts", Title: "Shirts", FilterTag: "shirts", Description: "Linen and oxford cloth"},
	{Handle: "accessories", Title: "Accessories", FilterTag: "accessories", SizeType: domain.SizeTypeOneSize},
}

var products = []domain.Product{
	{
		Handle:        "sterling-cashmere-vest",
		Title:         "The Sterling Cashmere Vest",
		Description:   "A sleeveless layer in pure cashmere.",
		Price:         10600,
		OriginalPrice: price(18600),
		Category:      "knitwear",
		Gender:        "men",
		Sizes:         []string{"S", "M", "L", "XL"},
		SizeType:      domain.SizeTypeClothing,
		Variants: []domain.Variant{
			{ColorName: "Charcoal", ColorHex: "#36454F", Images: []string{"/images/vest-charcoal.jpg"}, Stock: 8},
			{ColorName: "Oat", ColorHex: "#D8CBB3", Images: []string{"/images/vest-oat.jpg"}, Stock: 4},
		},
		PairsWellWith: []string{"linen-camp-shirt", "wool-beanie"},
	},
	{
		Handle:      "linen-camp-shirt",
		Title:       "Linen Camp Shirt",
		Description: "Relaxed camp collar in washed linen.",
		Price:       3400,
		Category:    "shirts",
		Gender:      "men",
		Images:      []string{"/images/camp-shirt.jpg"},
		Sizes:       []string{"S", "M", "L"},
		SizeType:    domain.SizeTypeClothing,
		Variants: []domain.Variant{
			{ColorName: "Sage", ColorHex: "#9CAF88", Stock: 12},
		},
		PairsWellWith: []string{"sterling-cashmere-vest"},
	},
	{
		Handle:      "oxford-button-down",
		Title:       "Oxford Button Down",
		Description: "Heavy oxford cloth with a soft roll collar.",
		Price:       2900,
		Category:    "shirts",
		Images:      []string{"/images/oxford.jpg"},
		Sizes:       []string{"S", "M", "L", "XL"},
		SizeType:    domain.SizeTypeClothing,
	},
	{
		Handle:   "wool-beanie",
		Title:    "Wool Beanie",
		Price:    900,
		Category: "accessories",
		Images:   []string{"/images/beanie.jpg"},
		SizeType: domain.SizeTypeOneSize,
	},
}

// Apply inserts demo catalog data for manual testing. Re-running it updates
// the same rows; the sample review is only added once.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	productRepo := productrepo.NewPostgres(pool, logger)
	collectionRepo := collectionrepo.NewPostgres(pool, logger)
	reviewRepo := reviewrepo.NewPostgres(pool, logger)

	for _, c := range collections {
		if _, err := collectionRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert collection %s: %w", c.Handle, err)
		}
	}

	var vestID string
	for _, p := range products {
		saved, err := productRepo.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Handle, err)
		}
		if p.Handle == "sterling-cashmere-vest" {
			vestID = saved.ID
		}
	}

	existing, err := reviewRepo.ListByProduct(ctx, vestID, domain.ReviewApproved)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	if len(existing) == 0 {
		if _, err := reviewRepo.Create(ctx, domain.Review{
			ProductID: vestID,
			Name:      "Ravi",
			Rating:    5,
			Comment:   "Warm without the bulk. Sizing runs true.",
			Status:    domain.ReviewApproved,
		}); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
	}

	logger.Info("seed applied", zap.Int("collections", len(collections)), zap.Int("products", len(products)))
	return nil
}
