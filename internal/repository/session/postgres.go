package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/store"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	ttl    time.Duration
	logger *zap.Logger
}

// NewPostgres keeps slots in session_snapshots. Expired rows read as empty.
func NewPostgres(pool *pgxpool.Pool, ttl time.Duration, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, ttl: ttl, logger: logger.Named("session_pg")}
}

func (r *postgresRepo) Load(ctx context.Context, sessionID string) (store.Snapshot, error) {
	const q = `
SELECT snapshot
FROM session_snapshots
WHERE session_id = $1 AND (expires_at IS NULL OR expires_at > now())
`
	var raw []byte
	if err := r.pool.QueryRow(ctx, q, SlotPrefix+sessionID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return emptySnapshot(), nil
		}
		r.logger.Error("load", zap.String("session_id", sessionID), zap.Error(err))
		return store.Snapshot{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return store.Snapshot{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return snap, nil
}

func (r *postgresRepo) Save(ctx context.Context, sessionID string, snap store.Snapshot) error {
	const q = `
INSERT INTO session_snapshots (session_id, snapshot, updated_at, expires_at)
VALUES ($1, $2, now(), $3)
ON CONFLICT (session_id) DO UPDATE
SET snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at,
    expires_at = EXCLUDED.expires_at
`
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sessionID, err)
	}
	var expires *time.Time
	if r.ttl > 0 {
		at := time.Now().Add(r.ttl)
		expires = &at
	}
	if _, err := r.pool.Exec(ctx, q, SlotPrefix+sessionID, raw, expires); err != nil {
		r.logger.Error("save", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM session_snapshots WHERE session_id = $1`, SlotPrefix+sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

// PurgeExpired removes rows past their expiry and reports how many went.
func PurgeExpired(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM session_snapshots WHERE expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
