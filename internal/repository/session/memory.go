package session

import (
	"context"
	"sync"

	"storefront/internal/store"
)

type memoryRepo struct {
	mu    sync.RWMutex
	slots map[string]store.Snapshot
}

// NewMemory keeps slots in process memory. Used for tests and local runs
// without Redis.
func NewMemory() Repository {
	return &memoryRepo{slots: make(map[string]store.Snapshot)}
}

func (r *memoryRepo) Load(_ context.Context, sessionID string) (store.Snapshot, error) {
	r.mu.RLock()
	snap, ok := r.slots[SlotPrefix+sessionID]
	r.mu.RUnlock()
	if !ok {
		return emptySnapshot(), nil
	}
	return store.State{Cart: snap.Cart, Wishlist: snap.Wishlist}.Snapshot(), nil
}

func (r *memoryRepo) Save(_ context.Context, sessionID string, snap store.Snapshot) error {
	copied := store.State{Cart: snap.Cart, Wishlist: snap.Wishlist}.Snapshot()
	r.mu.Lock()
	r.slots[SlotPrefix+sessionID] = copied
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.slots, SlotPrefix+sessionID)
	r.mu.Unlock()
	return nil
}
