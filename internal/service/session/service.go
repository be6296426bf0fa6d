// Package session keeps the live State of every shopping session in memory
// and writes the cart and wishlist through to a persistence slot.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/store"
)

type slotRepo interface {
	Load(ctx context.Context, sessionID string) (store.Snapshot, error)
	Save(ctx context.Context, sessionID string, snap store.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type entry struct {
	mu       sync.Mutex
	state    store.State
	hydrated bool
	lastSeen time.Time
}

type Service struct {
	repo   slotRepo
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(repo slotRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		logger:   logger.Named("session"),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

func (s *Service) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{state: store.Empty()}
		s.sessions[id] = e
	}
	e.lastSeen = s.now()
	return e
}

// Hydrate loads the persisted cart and wishlist. Calls after the first
// successful one do nothing.
func (s *Service) Hydrate(ctx context.Context, id string) (store.State, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.hydrateLocked(ctx, id, e); err != nil {
		return store.Empty(), err
	}
	return e.state, nil
}

func (s *Service) hydrateLocked(ctx context.Context, id string, e *entry) error {
	if e.hydrated {
		return nil
	}
	snap, err := s.repo.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	e.state = store.Restore(snap)
	e.hydrated = true
	s.logger.Debug("session hydrated",
		zap.String("session_id", id),
		zap.Int("cart_lines", len(e.state.Cart)),
		zap.Int("wishlist_items", len(e.state.Wishlist)),
	)
	return nil
}

// State returns the current state and whether it has been hydrated. An
// unhydrated session reads as empty.
func (s *Service) State(id string) (store.State, bool) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.hydrated
}

// Apply runs fn against the session's state and keeps the result. The
// session is hydrated first. The slot is written only when the cart or
// wishlist changed; if that write fails the previous state stays in place.
func (s *Service) Apply(ctx context.Context, id string, fn func(store.State) store.State) (store.State, error) {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.hydrateLocked(ctx, id, e); err != nil {
		return store.Empty(), err
	}

	next := fn(e.state)
	if !store.PersistedEqual(e.state, next) {
		if err := s.repo.Save(ctx, id, next.Snapshot()); err != nil {
			s.logger.Error("save session failed", zap.String("session_id", id), zap.Error(err))
			return e.state, fmt.Errorf("save session %s: %w", id, err)
		}
	}
	e.state = next
	return next, nil
}

// Clear drops the persisted slot and resets the live state to a hydrated
// empty session.
func (s *Service) Clear(ctx context.Context, id string) error {
	e := s.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	e.state = store.Empty()
	e.hydrated = true
	return nil
}

// Forget drops the in-memory copy only. The next access hydrates again.
func (s *Service) Forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep forgets sessions idle for longer than maxIdle and reports how many
// were dropped. Their persisted slots are untouched.
func (s *Service) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Debug("idle sessions swept", zap.Int("count", dropped))
	}
	return dropped
}
