package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
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
	return &postgresRepo{pool: pool, logger: logger.Named("review_repo")}
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Review) (*domain.Review, error) {
	const q = `
INSERT INTO reviews (product_id, name, rating, comment, status)
VALUES ($1::uuid, $2, $3, $4, $5)
RETURNING id::text, created_at
`
	out := in
	err := r.pool.QueryRow(ctx, q, in.ProductID, in.Name, in.Rating, in.Comment, string(in.Status)).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("create", zap.String("product_id", in.ProductID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("review created", zap.String("id", out.ID), zap.String("product_id", in.ProductID), zap.Int("rating", in.Rating))
	return &out, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string, status domain.ReviewStatus) ([]domain.Review, error) {
	const q = `
SELECT id::text, product_id::text, name, rating, comment, status, created_at
FROM reviews
WHERE product_id::text = $1 AND status = $2
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, productID, string(status))
	if err != nil {
		r.logger.Error("list", zap.String("product_id", productID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var (
			rv     domain.Review
			status string
		)
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.Name, &rv.Rating, &rv.Comment, &status, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.Status = domain.ReviewStatus(status)
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
