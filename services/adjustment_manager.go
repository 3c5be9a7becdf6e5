package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/HSouheill/dealership_backend/repositories"
	"github.com/HSouheill/dealership_backend/utils"
)

// weekAdjustments is the in-memory state of one reporting week.
type weekAdjustments struct {
	collections       *models.CollectionsBonusRecord
	manual            map[string]string
	notes             map[string]string
	collectionsLoaded bool
	mapsLoaded        bool
}

// AdjustmentManager owns the hand-entered state of every reporting week: the
// collections bonus of the Key role, manual amounts and row notes. Every
// change is written through to the store; store failures are logged and the
// in-memory state stays authoritative.
type AdjustmentManager struct {
	store repositories.KVStore
	tiers []float64
	now   func() time.Time

	mu    sync.Mutex
	weeks map[string]*weekAdjustments
}

// NewAdjustmentManager creates a manager over store. tiers are the
// collections bonus values a user may pick.
func NewAdjustmentManager(store repositories.KVStore, tiers []float64) *AdjustmentManager {
	return &AdjustmentManager{
		store: store,
		tiers: append([]float64(nil), tiers...),
		now:   time.Now,
		weeks: make(map[string]*weekAdjustments),
	}
}

// Tiers returns the allowed collections bonus values.
func (m *AdjustmentManager) Tiers() []float64 {
	return append([]float64(nil), m.tiers...)
}

func collectionsKey(weekKey string) string { return "collections:" + weekKey }
func manualKey(weekKey string) string      { return "manual:" + weekKey }
func notesKey(weekKey string) string       { return "notes:" + weekKey }

// week returns the state of weekKey, loading it from the store the first
// time. A failed load is retried on the next call. Callers must hold m.mu.
func (m *AdjustmentManager) week(ctx context.Context, weekKey string) *weekAdjustments {
	w, ok := m.weeks[weekKey]
	if !ok {
		w = &weekAdjustments{manual: map[string]string{}, notes: map[string]string{}}
		m.weeks[weekKey] = w
	}
	if !w.collectionsLoaded {
		if err := m.loadCollections(ctx, weekKey, w); err != nil {
			log.Printf("Warning: failed to load collections bonus for week %s: %v", weekKey, err)
		}
	}
	if w.mapsLoaded {
		return w
	}

	loaded := true
	for _, target := range []struct {
		key string
		dst map[string]string
	}{
		{manualKey(weekKey), w.manual},
		{notesKey(weekKey), w.notes},
	} {
		stored, err := m.readMap(ctx, target.key)
		if err != nil {
			log.Printf("Warning: failed to load %s: %v", target.key, err)
			loaded = false
			continue
		}
		for k, v := range stored {
			if _, exists := target.dst[k]; !exists {
				target.dst[k] = v
			}
		}
	}
	w.mapsLoaded = loaded
	return w
}

// loadCollections reads the stored collections bonus into w. A cleared
// bonus is stored as a record without a value and loads as unselected.
func (m *AdjustmentManager) loadCollections(ctx context.Context, weekKey string, w *weekAdjustments) error {
	rec, err := m.readCollections(ctx, weekKey)
	if err != nil {
		return err
	}
	if rec != nil && rec.Value == nil {
		rec = nil
	}
	w.collections = rec
	w.collectionsLoaded = true
	return nil
}

// requireCollections makes sure the stored bonus has been seen before a
// transition acts on it, so a locked value is never overwritten blind.
func (m *AdjustmentManager) requireCollections(ctx context.Context, weekKey string, w *weekAdjustments) error {
	if w.collectionsLoaded {
		return nil
	}
	if err := m.loadCollections(ctx, weekKey, w); err != nil {
		log.Printf("Warning: collections bonus for week %s is unreadable: %v", weekKey, err)
		return fmt.Errorf("load collections bonus: %w", repositories.ErrStoreUnavailable)
	}
	return nil
}

func (m *AdjustmentManager) readCollections(ctx context.Context, weekKey string) (*models.CollectionsBonusRecord, error) {
	raw, found, err := m.store.Get(ctx, collectionsKey(weekKey))
	if err != nil || !found {
		return nil, err
	}
	var rec models.CollectionsBonusRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *AdjustmentManager) readMap(ctx context.Context, key string) (map[string]string, error) {
	raw, found, err := m.store.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *AdjustmentManager) persistCollections(ctx context.Context, weekKey string, rec *models.CollectionsBonusRecord) {
	raw, err := json.Marshal(rec)
	if err == nil {
		err = m.store.Set(ctx, collectionsKey(weekKey), raw)
	}
	if err != nil {
		log.Printf("Warning: failed to persist collections bonus for week %s: %v", weekKey, err)
	}
}

func (m *AdjustmentManager) persistMap(ctx context.Context, key string, values map[string]string) {
	var err error
	if len(values) == 0 {
		err = m.store.Delete(ctx, key)
	} else {
		var raw []byte
		if raw, err = json.Marshal(values); err == nil {
			err = m.store.Set(ctx, key, raw)
		}
	}
	if err != nil {
		log.Printf("Warning: failed to persist %s: %v", key, err)
	}
}

func copyRecord(rec *models.CollectionsBonusRecord) *models.CollectionsBonusRecord {
	if rec == nil {
		return nil
	}
	out := *rec
	if rec.Value != nil {
		v := *rec.Value
		out.Value = &v
	}
	return &out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// State returns a copy of the adjustments of weekKey.
func (m *AdjustmentManager) State(ctx context.Context, weekKey string) models.AdjustmentState {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	return models.AdjustmentState{
		WeekKey:          weekKey,
		CollectionsBonus: copyRecord(w.collections),
		ManualAmounts:    copyMap(w.manual),
		Notes:            copyMap(w.notes),
	}
}

// PersistedCollections reads the collections bonus straight from the store,
// bypassing memory. A cleared bonus comes back as a record without a value;
// a week never touched comes back nil.
func (m *AdjustmentManager) PersistedCollections(ctx context.Context, weekKey string) (*models.CollectionsBonusRecord, error) {
	return m.readCollections(ctx, weekKey)
}

func (m *AdjustmentManager) allowedTier(value float64) bool {
	for _, tier := range m.tiers {
		if tier == value {
			return true
		}
	}
	return false
}

// SelectCollectionsBonus picks a bonus tier for the week. A locked bonus
// must be unlocked first.
func (m *AdjustmentManager) SelectCollectionsBonus(ctx context.Context, weekKey string, value float64) (models.CollectionsBonusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if err := m.requireCollections(ctx, weekKey, w); err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	if w.collections != nil && w.collections.Locked {
		return *copyRecord(w.collections), ErrCollectionsLocked
	}
	if !m.allowedTier(value) {
		return models.CollectionsBonusRecord{}, ErrInvalidBonusTier
	}
	w.collections = &models.CollectionsBonusRecord{Value: &value, Locked: false, SavedAt: m.now()}
	m.persistCollections(ctx, weekKey, w.collections)
	return *copyRecord(w.collections), nil
}

// LockCollectionsBonus freezes the selected value. Locking twice is a no-op.
func (m *AdjustmentManager) LockCollectionsBonus(ctx context.Context, weekKey string) (models.CollectionsBonusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if err := m.requireCollections(ctx, weekKey, w); err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	if w.collections == nil || w.collections.Value == nil {
		return models.CollectionsBonusRecord{}, ErrNoBonusSelected
	}
	if w.collections.Locked {
		return *copyRecord(w.collections), nil
	}
	w.collections.Locked = true
	w.collections.SavedAt = m.now()
	m.persistCollections(ctx, weekKey, w.collections)
	return *copyRecord(w.collections), nil
}

// UnlockCollectionsBonus makes the bonus editable again. The value is kept so
// it can be locked again without re-selecting.
func (m *AdjustmentManager) UnlockCollectionsBonus(ctx context.Context, weekKey string) (models.CollectionsBonusRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if err := m.requireCollections(ctx, weekKey, w); err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	if w.collections == nil {
		return models.CollectionsBonusRecord{}, nil
	}
	if !w.collections.Locked {
		return *copyRecord(w.collections), nil
	}
	w.collections.Locked = false
	w.collections.SavedAt = m.now()
	m.persistCollections(ctx, weekKey, w.collections)
	return *copyRecord(w.collections), nil
}

// ClearCollectionsBonus returns the week to unselected. It leaves a locked
// bonus untouched and reports ErrCollectionsLocked. The cleared state is
// stored as a record without a value so older copies elsewhere, such as a
// published log, are not picked up again.
func (m *AdjustmentManager) ClearCollectionsBonus(ctx context.Context, weekKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if err := m.requireCollections(ctx, weekKey, w); err != nil {
		return err
	}
	if w.collections != nil && w.collections.Locked {
		return ErrCollectionsLocked
	}
	w.collections = nil
	m.persistCollections(ctx, weekKey, &models.CollectionsBonusRecord{SavedAt: m.now()})
	return nil
}

// SetManualAmount stores the hand-entered commission of a row. The input is
// reduced to digits and decimal points; nothing left removes the entry. The
// stored value is returned.
func (m *AdjustmentManager) SetManualAmount(ctx context.Context, weekKey, rowKey, raw string) (string, error) {
	if strings.TrimSpace(rowKey) == "" {
		return "", ErrInvalidRowKey
	}
	value := utils.SanitizeAmount(raw)

	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if value == "" {
		delete(w.manual, rowKey)
	} else {
		w.manual[rowKey] = value
	}
	m.persistMap(ctx, manualKey(weekKey), w.manual)
	return value, nil
}

// SetNote stores the note of a row. Blank notes remove the entry.
func (m *AdjustmentManager) SetNote(ctx context.Context, weekKey, rowKey, note string) (string, error) {
	if strings.TrimSpace(rowKey) == "" {
		return "", ErrInvalidRowKey
	}
	note = strings.TrimSpace(note)

	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.week(ctx, weekKey)
	if note == "" {
		delete(w.notes, rowKey)
	} else {
		w.notes[rowKey] = note
	}
	m.persistMap(ctx, notesKey(weekKey), w.notes)
	return note, nil
}

// Forget drops the in-memory state of a week so the next read goes back to
// the store.
func (m *AdjustmentManager) Forget(weekKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.weeks, weekKey)
}
