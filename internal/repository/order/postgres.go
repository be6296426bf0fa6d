package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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
	return &postgresRepo{pool: pool, logger: logger.Named("order_repo")}
}

const selectColumns = `
SELECT id::text, order_number, payment_id, email, lines, total_price, status, shipping_address, created_at
FROM orders
`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, bool, error) {
	const q = `
INSERT INTO orders (order_number, payment_id, email, lines, total_price, status, shipping_address)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (payment_id) WHERE payment_id <> 'COD' DO NOTHING
RETURNING id::text, created_at
`
	lines, err := json.Marshal(nonNilLines(o.Lines))
	if err != nil {
		return nil, false, fmt.Errorf("encode lines: %w", err)
	}

	out := o
	err = r.pool.QueryRow(ctx, q, o.OrderNumber, o.PaymentID, o.Email, lines, o.TotalPrice, string(o.Status), o.ShippingAddress).
		Scan(&out.ID, &out.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		existing, getErr := r.GetByPaymentID(ctx, o.PaymentID)
		if getErr != nil {
			return nil, false, getErr
		}
		r.logger.Info("order already recorded", zap.String("payment_id", o.PaymentID), zap.String("order_id", existing.ID))
		return existing, false, nil
	case err != nil:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, false, domain.ErrAlreadyExists
		}
		r.logger.Error("create", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, false, err
	}
	r.logger.Info("order created",
		zap.String("order_id", out.ID),
		zap.String("order_number", out.OrderNumber),
		zap.String("payment_id", out.PaymentID),
		zap.Int64("total", out.TotalPrice),
	)
	return &out, true, nil
}

func (r *postgresRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, selectColumns+`WHERE payment_id = $1 ORDER BY created_at ASC LIMIT 1`, paymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get by payment", zap.String("payment_id", paymentID), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`WHERE lower(email) = lower($1) ORDER BY created_at DESC`, email)
	if err != nil {
		r.logger.Error("list by email", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("list by email", zap.Int("count", len(result)))
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		lines  []byte
		status string
	)
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.PaymentID, &o.Email, &lines, &o.TotalPrice, &status, &o.ShippingAddress, &o.CreatedAt); err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &o.Lines); err != nil {
			return nil, fmt.Errorf("decode lines for %s: %w", o.OrderNumber, err)
		}
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func nonNilLines(l []domain.OrderLine) []domain.OrderLine {
	if l == nil {
		return []domain.OrderLine{}
	}
	return l
}
