package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

const selectColumns = `
SELECT id::text, handle, title, description, price, original_price, discount_label, category, gender,
       images, variants, sizes, size_type, is_out_of_stock, pairs_well_with, created_at
FROM products
`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	result, err := r.query(ctx, selectColumns+`ORDER BY created_at DESC, handle ASC`)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.getOne(ctx, selectColumns+`WHERE handle = $1`, "slug", slug)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.getOne(ctx, selectColumns+`WHERE id::text = $1`, "id", id)
}

func (r *postgresRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, selectColumns+`WHERE id::text = ANY($1) ORDER BY created_at DESC, handle ASC`, ids)
}

func (r *postgresRepo) ListByHandles(ctx context.Context, handles []string) ([]domain.Product, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	return r.query(ctx, selectColumns+`WHERE handle = ANY($1) ORDER BY created_at DESC, handle ASC`, handles)
}

func (r *postgresRepo) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	result, err := r.query(ctx, selectColumns+`WHERE category = $1 ORDER BY created_at DESC, handle ASC`, category)
	if err != nil {
		r.logger.Error("list by category", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("list by category", zap.String("category", category), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Search(ctx context.Context, term string) ([]domain.Product, error) {
	// Leading space lets one pattern match the start of any word.
	pattern := "% " + escapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
	const where = `
WHERE ' ' || lower(title) LIKE $1
   OR ' ' || lower(category) LIKE $1
   OR ' ' || lower(description) LIKE $1
   OR EXISTS (
       SELECT 1 FROM jsonb_array_elements(variants) v
       WHERE ' ' || lower(v->>'colorName') LIKE $1
   )
ORDER BY created_at DESC, handle ASC
`
	result, err := r.query(ctx, selectColumns+where, pattern)
	if err != nil {
		r.logger.Error("search", zap.String("term", term), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("search", zap.String("term", term), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, handle, title, description, price, original_price, discount_label, category, gender,
                      images, variants, sizes, size_type, is_out_of_stock, pairs_well_with)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (handle) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    original_price = EXCLUDED.original_price,
    discount_label = EXCLUDED.discount_label,
    category = EXCLUDED.category,
    gender = EXCLUDED.gender,
    images = EXCLUDED.images,
    variants = EXCLUDED.variants,
    sizes = EXCLUDED.sizes,
    size_type = EXCLUDED.size_type,
    is_out_of_stock = EXCLUDED.is_out_of_stock,
    pairs_well_with = EXCLUDED.pairs_well_with
RETURNING id::text, created_at
`
	images, variants, sizes, pairs, err := encodeLists(p)
	if err != nil {
		return nil, err
	}
	sizeType := p.SizeType
	if sizeType == "" {
		sizeType = domain.SizeTypeClothing
	}

	res := p
	res.SizeType = sizeType
	err = r.pool.QueryRow(ctx, q,
		p.ID, p.Handle, p.Title, p.Description, p.Price, p.OriginalPrice, p.DiscountLabel, p.Category, p.Gender,
		images, variants, sizes, string(sizeType), p.IsOutOfStock, pairs,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert", zap.String("handle", p.Handle), zap.Error(err))
		return nil, err
	}
	if p.ID != "" && res.ID != p.ID {
		return nil, fmt.Errorf("product repo: id mismatch for handle=%s existing_id=%s import_id=%s", p.Handle, res.ID, p.ID)
	}
	r.logger.Debug("upserted", zap.String("handle", res.Handle), zap.String("id", res.ID))
	return &res, nil
}

func (r *postgresRepo) getOne(ctx context.Context, q, field, value string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, q, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.String(field, value))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String(field, value), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                              domain.Product
		images, variants, sizes, pairs []byte
		sizeType                       string
	)
	if err := row.Scan(&p.ID, &p.Handle, &p.Title, &p.Description, &p.Price, &p.OriginalPrice, &p.DiscountLabel,
		&p.Category, &p.Gender, &images, &variants, &sizes, &sizeType, &p.IsOutOfStock, &pairs, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := decodeList(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images for %s: %w", p.Handle, err)
	}
	if err := decodeList(variants, &p.Variants); err != nil {
		return nil, fmt.Errorf("decode variants for %s: %w", p.Handle, err)
	}
	if err := decodeList(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("decode sizes for %s: %w", p.Handle, err)
	}
	if err := decodeList(pairs, &p.PairsWellWith); err != nil {
		return nil, fmt.Errorf("decode pairs for %s: %w", p.Handle, err)
	}
	p.SizeType = domain.SizeType(sizeType)
	flat := p.Flatten()
	return &flat, nil
}

func decodeList(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func encodeLists(p domain.Product) (images, variants, sizes, pairs []byte, err error) {
	enc := func(v any) []byte {
		if err != nil {
			return nil
		}
		var b []byte
		b, err = json.Marshal(v)
		return b
	}
	images = enc(nonNil(p.Images))
	if p.Variants == nil {
		variants = enc([]domain.Variant{})
	} else {
		variants = enc(p.Variants)
	}
	sizes = enc(nonNil(p.Sizes))
	pairs = enc(nonNil(p.PairsWellWith))
	return images, variants, sizes, pairs, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
