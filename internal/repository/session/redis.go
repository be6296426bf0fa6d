package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/store"
)

type redisRepo struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis stores each slot as a JSON string that expires ttl after the last
// save. A zero ttl keeps slots forever.
func NewRedis(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisRepo{client: client, ttl: ttl, logger: logger.Named("session_redis")}
}

func (r *redisRepo) Load(ctx context.Context, sessionID string) (store.Snapshot, error) {
	var snap store.Snapshot
	err := r.client.Get(ctx, SlotPrefix+sessionID).Scan(&snap)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptySnapshot(), nil
		}
		r.logger.Error("load", zap.String("session_id", sessionID), zap.Error(err))
		return store.Snapshot{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return snap, nil
}

func (r *redisRepo) Save(ctx context.Context, sessionID string, snap store.Snapshot) error {
	if err := r.client.Set(ctx, SlotPrefix+sessionID, snap, r.ttl).Err(); err != nil {
		r.logger.Error("save", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	r.logger.Debug("saved", zap.String("session_id", sessionID), zap.Int("cart_lines", len(snap.Cart)), zap.Int("wishlist", len(snap.Wishlist)))
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, SlotPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
