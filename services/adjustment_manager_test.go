package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/HSouheill/dealership_backend/repositories"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, repositories.ErrStoreUnavailable
}
func (failingStore) Set(context.Context, string, []byte) error {
	return repositories.ErrStoreUnavailable
}
func (failingStore) Delete(context.Context, string) error { return repositories.ErrStoreUnavailable }

func TestCollectionsBonusLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewAdjustmentManager(repositories.NewMemoryKVStore(), []float64{0, 50, 100})
	week := "2024-03-01"

	if _, err := m.LockCollectionsBonus(ctx, week); !errors.Is(err, ErrNoBonusSelected) {
		t.Fatalf("lock without value: err = %v", err)
	}
	if _, err := m.SelectCollectionsBonus(ctx, week, 75); !errors.Is(err, ErrInvalidBonusTier) {
		t.Fatalf("invalid tier: err = %v", err)
	}

	rec, err := m.SelectCollectionsBonus(ctx, week, 50)
	if err != nil || rec.Value == nil || *rec.Value != 50 || rec.Locked {
		t.Fatalf("select = %+v, %v", rec, err)
	}
	rec, err = m.LockCollectionsBonus(ctx, week)
	if err != nil || !rec.Locked {
		t.Fatalf("lock = %+v, %v", rec, err)
	}
	if _, err := m.LockCollectionsBonus(ctx, week); err != nil {
		t.Fatalf("second lock should be a no-op: %v", err)
	}
	if _, err := m.SelectCollectionsBonus(ctx, week, 100); !errors.Is(err, ErrCollectionsLocked) {
		t.Fatalf("select while locked: err = %v", err)
	}
	if err := m.ClearCollectionsBonus(ctx, week); !errors.Is(err, ErrCollectionsLocked) {
		t.Fatalf("clear while locked: err = %v", err)
	}

	rec, err = m.UnlockCollectionsBonus(ctx, week)
	if err != nil || rec.Locked || rec.Value == nil || *rec.Value != 50 {
		t.Fatalf("unlock = %+v, %v", rec, err)
	}
	if err := m.ClearCollectionsBonus(ctx, week); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if state := m.State(ctx, week); state.CollectionsBonus != nil {
		t.Fatalf("bonus after clear = %+v", state.CollectionsBonus)
	}
}

func TestAdjustmentsPersistAcrossManagers(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryKVStore()
	week := "2024-03-01"

	first := NewAdjustmentManager(store, []float64{0, 50, 100})
	if _, err := first.SelectCollectionsBonus(ctx, week, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := first.LockCollectionsBonus(ctx, week); err != nil {
		t.Fatal(err)
	}
	if _, err := first.SetManualAmount(ctx, week, "row-1", "$1,234.50"); err != nil {
		t.Fatal(err)
	}
	if _, err := first.SetNote(ctx, week, "row-2", "  override 150 "); err != nil {
		t.Fatal(err)
	}

	second := NewAdjustmentManager(store, []float64{0, 50, 100})
	state := second.State(ctx, week)
	if state.CollectionsBonus == nil || !state.CollectionsBonus.Locked || *state.CollectionsBonus.Value != 100 {
		t.Fatalf("collections = %+v", state.CollectionsBonus)
	}
	if got := state.ManualAmounts["row-1"]; got != "1234.50" {
		t.Fatalf("manual amount = %q", got)
	}
	if got := state.Notes["row-2"]; got != "override 150" {
		t.Fatalf("note = %q", got)
	}
	if rec, err := second.PersistedCollections(ctx, week); err != nil || rec == nil || !rec.Locked {
		t.Fatalf("persisted = %+v, %v", rec, err)
	}
}

func TestSetManualAmountEmptyRemovesEntry(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryKVStore()
	m := NewAdjustmentManager(store, nil)
	week := "2024-03-01"

	if _, err := m.SetManualAmount(ctx, week, "row-1", "200"); err != nil {
		t.Fatal(err)
	}
	value, err := m.SetManualAmount(ctx, week, "row-1", "abc")
	if err != nil || value != "" {
		t.Fatalf("value = %q, err = %v", value, err)
	}
	if _, ok := m.State(ctx, week).ManualAmounts["row-1"]; ok {
		t.Fatal("entry should be removed")
	}
	if _, err := m.SetManualAmount(ctx, week, " ", "1"); !errors.Is(err, ErrInvalidRowKey) {
		t.Fatalf("blank row key: err = %v", err)
	}
}

func TestStoreFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	m := NewAdjustmentManager(failingStore{}, []float64{0, 50})
	week := "2024-03-01"

	if _, err := m.SetNote(ctx, week, "row-1", "hello"); err != nil {
		t.Fatalf("note: %v", err)
	}
	if _, err := m.SetManualAmount(ctx, week, "row-2", "125"); err != nil {
		t.Fatalf("manual amount: %v", err)
	}
	state := m.State(ctx, week)
	if state.Notes["row-1"] != "hello" || state.ManualAmounts["row-2"] != "125" {
		t.Fatalf("state = %+v", state)
	}
	if _, err := m.PersistedCollections(ctx, week); !errors.Is(err, repositories.ErrStoreUnavailable) {
		t.Fatalf("persisted err = %v", err)
	}
}

func TestCollectionsTransitionsNeedReadableStore(t *testing.T) {
	ctx := context.Background()
	m := NewAdjustmentManager(failingStore{}, []float64{0, 50})
	week := "2024-03-01"

	if _, err := m.SelectCollectionsBonus(ctx, week, 50); !errors.Is(err, repositories.ErrStoreUnavailable) {
		t.Fatalf("select: err = %v", err)
	}
	if _, err := m.LockCollectionsBonus(ctx, week); !errors.Is(err, repositories.ErrStoreUnavailable) {
		t.Fatalf("lock: err = %v", err)
	}
	if err := m.ClearCollectionsBonus(ctx, week); !errors.Is(err, repositories.ErrStoreUnavailable) {
		t.Fatalf("clear: err = %v", err)
	}
}

// flakyStore fails the first reads, then serves from the wrapped store.
type flakyStore struct {
	*repositories.MemoryKVStore
	mu        sync.Mutex
	failReads int
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	if s.failReads > 0 {
		s.failReads--
		s.mu.Unlock()
		return nil, false, repositories.ErrStoreUnavailable
	}
	s.mu.Unlock()
	return s.MemoryKVStore.Get(ctx, key)
}

func TestLockedBonusSurvivesFailedFirstRead(t *testing.T) {
	ctx := context.Background()
	week := "2024-03-01"
	backing := repositories.NewMemoryKVStore()

	seed := NewAdjustmentManager(backing, []float64{0, 50, 100})
	if _, err := seed.SelectCollectionsBonus(ctx, week, 50); err != nil {
		t.Fatal(err)
	}
	if _, err := seed.LockCollectionsBonus(ctx, week); err != nil {
		t.Fatal(err)
	}

	m := NewAdjustmentManager(&flakyStore{MemoryKVStore: backing, failReads: 3}, []float64{0, 50, 100})
	if _, err := m.SelectCollectionsBonus(ctx, week, 100); !errors.Is(err, ErrCollectionsLocked) {
		t.Fatalf("select over locked bonus: err = %v", err)
	}

	after := NewAdjustmentManager(backing, []float64{0, 50, 100})
	rec := after.State(ctx, week).CollectionsBonus
	if rec == nil || rec.Value == nil || *rec.Value != 50 || !rec.Locked {
		t.Fatalf("stored bonus = %+v", rec)
	}
}

func TestClearedBonusStaysClearedAfterRestart(t *testing.T) {
	ctx := context.Background()
	week := "2024-03-01"
	store := repositories.NewMemoryKVStore()

	m := NewAdjustmentManager(store, []float64{0, 50})
	if _, err := m.SelectCollectionsBonus(ctx, week, 50); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearCollectionsBonus(ctx, week); err != nil {
		t.Fatal(err)
	}

	rec, err := m.PersistedCollections(ctx, week)
	if err != nil || rec == nil || rec.Value != nil {
		t.Fatalf("persisted = %+v, %v", rec, err)
	}
	restarted := NewAdjustmentManager(store, []float64{0, 50})
	if got := restarted.State(ctx, week).CollectionsBonus; got != nil {
		t.Fatalf("collections after restart = %+v", got)
	}
	if _, err := restarted.LockCollectionsBonus(ctx, week); !errors.Is(err, ErrNoBonusSelected) {
		t.Fatalf("lock: err = %v", err)
	}
}

func TestSetManualAmountKeepsFirstDecimalPoint(t *testing.T) {
	m := NewAdjustmentManager(repositories.NewMemoryKVStore(), nil)
	value, err := m.SetManualAmount(context.Background(), "2024-03-01", "row-1", "$1.2.3")
	if err != nil || value != "1.23" {
		t.Fatalf("value = %q, err = %v", value, err)
	}
}
