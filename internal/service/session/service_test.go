package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	sessionrepo "storefront/internal/repository/session"
	"storefront/internal/store"
)

type countingRepo struct {
	sessionrepo.Repository
	loads   int
	saves   int
	saveErr error
}

func (r *countingRepo) Load(ctx context.Context, id string) (store.Snapshot, error) {
	r.loads++
	return r.Repository.Load(ctx, id)
}

func (r *countingRepo) Save(ctx context.Context, id string, snap store.Snapshot) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.Repository.Save(ctx, id, snap)
}

func newRepo() *countingRepo {
	return &countingRepo{Repository: sessionrepo.NewMemory()}
}

var tee = domain.Product{ID: "p1", Title: "Tee", Price: 900}

func TestStateBeforeHydrate(t *testing.T) {
	repo := newRepo()
	_ = repo.Repository.Save(context.Background(), "s1", store.Empty().AddToCart(tee, "M", "").Snapshot())
	svc := New(repo, nil)

	st, hydrated := svc.State("s1")
	if hydrated || len(st.Cart) != 0 {
		t.Fatalf("expected empty unhydrated state, got %+v hydrated=%v", st, hydrated)
	}

	st, err := svc.Hydrate(context.Background(), "s1")
	if err != nil || len(st.Cart) != 1 {
		t.Fatalf("hydrate: %+v %v", st, err)
	}
	if _, err := svc.Hydrate(context.Background(), "s1"); err != nil {
		t.Fatalf("second hydrate: %v", err)
	}
	if repo.loads != 1 {
		t.Fatalf("expected one load, got %d", repo.loads)
	}
}

func TestApplyHydratesBeforeWriting(t *testing.T) {
	repo := newRepo()
	_ = repo.Repository.Save(context.Background(), "s1", store.Empty().AddToCart(tee, "M", "").Snapshot())
	svc := New(repo, nil)

	st, err := svc.Apply(context.Background(), "s1", func(s store.State) store.State {
		return s.AddToCart(domain.Product{ID: "p2", Price: 100}, "", "")
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(st.Cart) != 2 {
		t.Fatalf("expected persisted line kept, got %+v", st.Cart)
	}
	snap, _ := repo.Repository.Load(context.Background(), "s1")
	if len(snap.Cart) != 2 {
		t.Fatalf("expected slot to hold both lines, got %+v", snap.Cart)
	}
}

func TestApplySkipsSaveForTransientChanges(t *testing.T) {
	repo := newRepo()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := svc.Apply(ctx, "s1", store.State.OpenCart); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Apply(ctx, "s1", func(s store.State) store.State {
		return s.SetCheckoutItem(domain.CartItem{Product: tee, Quantity: 1})
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if repo.saves != 0 {
		t.Fatalf("expected no saves, got %d", repo.saves)
	}
	st, _ := svc.State("s1")
	if st.CheckoutItem == nil {
		t.Fatal("expected checkout item in live state")
	}
}

func TestApplySaveFailureKeepsState(t *testing.T) {
	repo := newRepo()
	svc := New(repo, nil)
	ctx := context.Background()
	repo.saveErr = errors.New("boom")

	if _, err := svc.Apply(ctx, "s1", func(s store.State) store.State {
		return s.AddToCart(tee, "M", "")
	}); err == nil {
		t.Fatal("expected save error")
	}
	st, _ := svc.State("s1")
	if len(st.Cart) != 0 {
		t.Fatalf("expected cart unchanged, got %+v", st.Cart)
	}
}

func TestClearAndForget(t *testing.T) {
	repo := newRepo()
	svc := New(repo, nil)
	ctx := context.Background()
	if _, err := svc.Apply(ctx, "s1", func(s store.State) store.State { return s.AddToCart(tee, "", "") }); err != nil {
		t.Fatalf("apply: %v", err)
	}

	svc.Forget("s1")
	if _, hydrated := svc.State("s1"); hydrated {
		t.Fatal("expected forgotten session to need hydration")
	}
	st, _ := svc.Hydrate(ctx, "s1")
	if len(st.Cart) != 1 {
		t.Fatalf("expected cart back from slot, got %+v", st.Cart)
	}

	if err := svc.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, hydrated := svc.State("s1")
	if !hydrated || len(st.Cart) != 0 {
		t.Fatalf("expected empty hydrated state, got %+v %v", st, hydrated)
	}
	snap, _ := repo.Repository.Load(ctx, "s1")
	if len(snap.Cart) != 0 {
		t.Fatalf("expected slot deleted, got %+v", snap)
	}
}

func TestSweep(t *testing.T) {
	svc := New(newRepo(), nil)
	base := time.Now()
	svc.now = func() time.Time { return base }
	svc.State("old")
	svc.now = func() time.Time { return base.Add(time.Hour) }
	svc.State("new")

	if n := svc.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected one swept, got %d", n)
	}
	svc.mu.Lock()
	_, oldKept := svc.sessions["old"]
	_, newKept := svc.sessions["new"]
	svc.mu.Unlock()
	if oldKept || !newKept {
		t.Fatalf("unexpected sweep result old=%v new=%v", oldKept, newKept)
	}
}
