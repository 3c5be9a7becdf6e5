package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/HSouheill/dealership_backend/commission"
	"github.com/HSouheill/dealership_backend/models"
	"github.com/HSouheill/dealership_backend/repositories"
)

// Report event names sent to connected clients
const (
	EventReportUpdated = "commission_report_updated"
	EventReportLogged  = "commission_report_logged"
)

// SalesSource supplies the full sales history.
type SalesSource interface {
	FindAll(ctx context.Context) ([]models.Sale, error)
}

// ReportLogStore persists published snapshots.
type ReportLogStore interface {
	Insert(ctx context.Context, log models.CommissionReportLog) error
	FindByID(ctx context.Context, id string) (*models.CommissionReportLog, error)
	LatestForWeek(ctx context.Context, weekKey string) (*models.CommissionReportLog, error)
	List(ctx context.Context, limit int64) ([]models.CommissionReportLogSummary, error)
}

// Notifier pushes report events to listeners.
type Notifier interface {
	BroadcastReportEvent(event, weekKey string, data interface{})
}

// ReportService ties sales, adjustments and the engine together for the
// HTTP layer.
type ReportService struct {
	engine      *commission.Engine
	sales       SalesSource
	logs        ReportLogStore
	adjustments *AdjustmentManager
	selections  *WeekSelections
	notifier    Notifier
	now         func() time.Time
}

// NewReportService wires a report service. sales, logs and adjustments are
// required; notifier may be nil.
func NewReportService(engine *commission.Engine, sales SalesSource, logs ReportLogStore, adjustments *AdjustmentManager, notifier Notifier) *ReportService {
	return &ReportService{
		engine:      engine,
		sales:       sales,
		logs:        logs,
		adjustments: adjustments,
		selections:  NewWeekSelections(),
		notifier:    notifier,
		now:         time.Now,
	}
}

// Adjustments exposes the adjustment manager.
func (s *ReportService) Adjustments() *AdjustmentManager {
	return s.adjustments
}

func (s *ReportService) notify(event, weekKey string, data interface{}) {
	if s.notifier != nil {
		s.notifier.BroadcastReportEvent(event, weekKey, data)
	}
}

// Weeks lists the selectable reporting weeks, newest first, and reconciles
// the user's selection against them.
func (s *ReportService) Weeks(ctx context.Context, userID string) ([]models.ReportingWeekSummary, string, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load sales: %w", err)
	}
	now := s.now()
	current := s.engine.CurrentWeek(now)
	buckets := s.engine.Weeks(sales, now)

	weeks := make([]models.ReportingWeekSummary, 0, len(buckets))
	keys := make([]string, 0, len(buckets))
	for _, b := range buckets {
		weeks = append(weeks, models.ReportingWeekSummary{
			Key:       b.Week.Key,
			Start:     b.Week.Start,
			End:       b.Week.End,
			SaleCount: b.SaleCount,
			IsCurrent: b.Week.Key == current.Key,
		})
		keys = append(keys, b.Week.Key)
	}
	selected := s.selections.For(userID).Reconcile(keys)
	return weeks, selected, nil
}

// SelectWeek changes the user's selected week.
func (s *ReportService) SelectWeek(ctx context.Context, userID, weekKey string) (string, error) {
	if _, _, err := s.Weeks(ctx, userID); err != nil {
		return "", err
	}
	selector := s.selections.For(userID)
	if err := selector.Select(weekKey); err != nil {
		return "", err
	}
	return selector.Selected(), nil
}

// persistedCollections is the fallback used when the live state has no
// value: the store first, then the latest published log of the week. The log
// is only consulted when the store has never held a record for the week.
func (s *ReportService) persistedCollections(ctx context.Context, weekKey string) *models.CollectionsBonusRecord {
	rec, err := s.adjustments.PersistedCollections(ctx, weekKey)
	if err != nil {
		log.Printf("Warning: failed to read persisted collections bonus for week %s: %v", weekKey, err)
		return nil
	}
	if rec != nil {
		return rec
	}
	logged, err := s.logs.LatestForWeek(ctx, weekKey)
	if err != nil {
		if !errors.Is(err, repositories.ErrReportLogNotFound) {
			log.Printf("Warning: failed to read report log for week %s: %v", weekKey, err)
		}
		return nil
	}
	totals := logged.Snapshot.Totals
	if totals.CollectionsBonus == nil {
		return nil
	}
	value := *totals.CollectionsBonus
	return &models.CollectionsBonusRecord{Value: &value, Locked: totals.CollectionsBonusLocked, SavedAt: logged.LoggedAt}
}

// BuildSnapshot computes the live snapshot of weekKey.
func (s *ReportService) BuildSnapshot(ctx context.Context, weekKey string) (models.CommissionReportSnapshot, error) {
	week, err := commission.ParseWeekKey(weekKey, s.engine.Location())
	if err != nil {
		return models.CommissionReportSnapshot{}, err
	}
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return models.CommissionReportSnapshot{}, fmt.Errorf("load sales: %w", err)
	}

	state := s.adjustments.State(ctx, week.Key)
	sel := commission.CollectionsSelection{}
	if rec := state.CollectionsBonus; rec != nil {
		sel.Value = rec.Value
		sel.Locked = rec.Locked
	}
	if sel.Value == nil {
		sel.Persisted = s.persistedCollections(ctx, week.Key)
	}

	return s.engine.BuildSnapshot(commission.SnapshotInput{
		Week:          week,
		SalesInWeek:   s.engine.SalesInWeek(sales, week),
		AllSales:      sales,
		Notes:         state.Notes,
		ManualAmounts: state.ManualAmounts,
		Collections:   sel,
		GeneratedAt:   s.now().UTC(),
	}), nil
}

// LiveReport returns the editable view of weekKey.
func (s *ReportService) LiveReport(ctx context.Context, weekKey string) (models.CommissionReportView, error) {
	snap, err := s.BuildSnapshot(ctx, weekKey)
	if err != nil {
		return models.CommissionReportView{}, err
	}
	return models.CommissionReportView{Snapshot: snap, Editable: true, Source: models.ReportSourceLive}, nil
}

// ArchivedReport replays a published snapshot exactly as it was logged.
func (s *ReportService) ArchivedReport(ctx context.Context, id string) (models.CommissionReportView, error) {
	logged, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return models.CommissionReportView{}, err
	}
	loggedAt := logged.LoggedAt
	return models.CommissionReportView{
		Snapshot: logged.Snapshot,
		Editable: false,
		Source:   models.ReportSourceArchived,
		LogID:    logged.ID,
		LoggedAt: &loggedAt,
		LoggedBy: logged.LoggedBy,
	}, nil
}

// ListLogs returns published report summaries, newest first.
func (s *ReportService) ListLogs(ctx context.Context, limit int64) ([]models.CommissionReportLogSummary, error) {
	return s.logs.List(ctx, limit)
}

// Publish freezes the current snapshot of weekKey into the report log. It
// refuses reports without salespeople or without a locked collections bonus.
func (s *ReportService) Publish(ctx context.Context, weekKey, loggedBy string) (*models.CommissionReportLog, error) {
	snap, err := s.BuildSnapshot(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	if err := commission.ValidatePublishable(snap); err != nil {
		return nil, err
	}

	entry := models.CommissionReportLog{
		ID:        uuid.NewString(),
		WeekKey:   snap.WeekKey,
		PeriodEnd: snap.PeriodEnd,
		LoggedAt:  s.now().UTC(),
		LoggedBy:  loggedBy,
		Snapshot:  snap,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		return nil, err
	}
	s.notify(EventReportLogged, snap.WeekKey, map[string]interface{}{"logId": entry.ID})
	return &entry, nil
}

func (s *ReportService) checkWeek(weekKey string) (string, error) {
	week, err := commission.ParseWeekKey(weekKey, s.engine.Location())
	if err != nil {
		return "", err
	}
	return week.Key, nil
}

// SelectCollectionsBonus sets the bonus tier of a week.
func (s *ReportService) SelectCollectionsBonus(ctx context.Context, weekKey string, value float64) (models.CollectionsBonusRecord, error) {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	rec, err := s.adjustments.SelectCollectionsBonus(ctx, key, value)
	if err == nil {
		s.notify(EventReportUpdated, key, rec)
	}
	return rec, err
}

// LockCollectionsBonus locks the bonus of a week.
func (s *ReportService) LockCollectionsBonus(ctx context.Context, weekKey string) (models.CollectionsBonusRecord, error) {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	rec, err := s.adjustments.LockCollectionsBonus(ctx, key)
	if err == nil {
		s.notify(EventReportUpdated, key, rec)
	}
	return rec, err
}

// UnlockCollectionsBonus unlocks the bonus of a week.
func (s *ReportService) UnlockCollectionsBonus(ctx context.Context, weekKey string) (models.CollectionsBonusRecord, error) {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return models.CollectionsBonusRecord{}, err
	}
	rec, err := s.adjustments.UnlockCollectionsBonus(ctx, key)
	if err == nil {
		s.notify(EventReportUpdated, key, rec)
	}
	return rec, err
}

// ClearCollectionsBonus clears an unlocked bonus.
func (s *ReportService) ClearCollectionsBonus(ctx context.Context, weekKey string) error {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return err
	}
	if err := s.adjustments.ClearCollectionsBonus(ctx, key); err != nil {
		return err
	}
	s.notify(EventReportUpdated, key, nil)
	return nil
}

// SetManualAmount stores a manual row amount.
func (s *ReportService) SetManualAmount(ctx context.Context, weekKey, rowKey, raw string) (string, error) {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return "", err
	}
	value, err := s.adjustments.SetManualAmount(ctx, key, rowKey, raw)
	if err == nil {
		s.notify(EventReportUpdated, key, map[string]string{"rowKey": rowKey, "manualAmount": value})
	}
	return value, err
}

// SetNote stores a row note.
func (s *ReportService) SetNote(ctx context.Context, weekKey, rowKey, note string) (string, error) {
	key, err := s.checkWeek(weekKey)
	if err != nil {
		return "", err
	}
	value, err := s.adjustments.SetNote(ctx, key, rowKey, note)
	if err == nil {
		s.notify(EventReportUpdated, key, map[string]string{"rowKey": rowKey, "notes": value})
	}
	return value, err
}
