// Package session stores the persisted part of a shopping session (cart and
// wishlist) under one slot per session id.
package session

import (
	"context"

	"storefront/internal/store"
)

// SlotPrefix names the storage slot; the session id is appended.
const SlotPrefix = "tenet-storage:"

type Repository interface {
	// Load returns the stored snapshot, or an empty one when the slot is unset.
	Load(ctx context.Context, sessionID string) (store.Snapshot, error)
	Save(ctx context.Context, sessionID string, snap store.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

func emptySnapshot() store.Snapshot {
	return store.Empty().Snapshot()
}
