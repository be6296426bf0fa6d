package collection

import (
	"context"
	"errors"

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
	return &postgresRepo{pool: pool, logger: logger.Named("collection_repo")}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Collection, error) {
	const q = `
SELECT id::text, handle, title, image_url, description, filter_tag, size_type
FROM collections
ORDER BY title ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Handle, &c.Title, &c.ImageURL, &c.Description, &c.FilterTag, &c.SizeType); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("list", zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	const q = `
SELECT id::text, handle, title, image_url, description, filter_tag, size_type
FROM collections
WHERE handle = $1
`
	var c domain.Collection
	err := r.pool.QueryRow(ctx, q, slug).Scan(&c.ID, &c.Handle, &c.Title, &c.ImageURL, &c.Description, &c.FilterTag, &c.SizeType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get not found", zap.String("slug", slug))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Collection) (*domain.Collection, error) {
	const q = `
INSERT INTO collections (handle, title, image_url, description, filter_tag, size_type)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (handle) DO UPDATE
SET title = EXCLUDED.title,
    image_url = COALESCE(NULLIF(EXCLUDED.image_url, ''), collections.image_url),
    description = COALESCE(NULLIF(EXCLUDED.description, ''), collections.description),
    filter_tag = COALESCE(NULLIF(EXCLUDED.filter_tag, ''), collections.filter_tag),
    size_type = COALESCE(NULLIF(EXCLUDED.size_type, ''), collections.size_type)
RETURNING id::text, image_url, description, filter_tag, size_type
`
	out := c
	err := r.pool.QueryRow(ctx, q, c.Handle, c.Title, c.ImageURL, c.Description, c.FilterTag, string(c.SizeType)).
		Scan(&out.ID, &out.ImageURL, &out.Description, &out.FilterTag, &out.SizeType)
	if err != nil {
		r.logger.Error("upsert", zap.String("handle", c.Handle), zap.Error(err))
		return nil, err
	}
	return &out, nil
}
