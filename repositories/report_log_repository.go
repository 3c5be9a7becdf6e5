package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/dealership_backend/models"
)

// ErrReportLogNotFound is returned when no log matches.
var ErrReportLogNotFound = errors.New("report log not found")

// ReportLogRepository stores published commission snapshots. Documents are
// only ever inserted.
type ReportLogRepository struct {
	collection *mongo.Collection
}

func NewReportLogRepository(db *mongo.Database) *ReportLogRepository {
	return &ReportLogRepository{
		collection: db.Collection("commission_report_logs"),
	}
}

// EnsureIndexes creates the week and period lookups.
func (r *ReportLogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "weekKey", Value: 1}, {Key: "loggedAt", Value: -1}}},
		{Keys: bson.D{{Key: "periodEnd", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create report log indexes: %w", err)
	}
	return nil
}

// Insert appends one log.
func (r *ReportLogRepository) Insert(ctx context.Context, log models.CommissionReportLog) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert report log: %w", err)
	}
	return nil
}

// FindByID returns the log with id.
func (r *ReportLogRepository) FindByID(ctx context.Context, id string) (*models.CommissionReportLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var log models.CommissionReportLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReportLogNotFound
		}
		return nil, fmt.Errorf("find report log: %w", err)
	}
	return &log, nil
}

// LatestForWeek returns the most recent log of a reporting week.
func (r *ReportLogRepository) LatestForWeek(ctx context.Context, weekKey string) (*models.CommissionReportLog, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var log models.CommissionReportLog
	opts := options.FindOne().SetSort(bson.D{{Key: "loggedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"weekKey": weekKey}, opts).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrReportLogNotFound
		}
		return nil, fmt.Errorf("find latest report log: %w", err)
	}
	return &log, nil
}

// List returns summaries, newest period first.
func (r *ReportLogRepository) List(ctx context.Context, limit int64) ([]models.CommissionReportLogSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "periodEnd", Value: -1}, {Key: "loggedAt", Value: -1}}).
		SetProjection(bson.M{
			"weekKey":                 1,
			"periodEnd":               1,
			"loggedAt":                1,
			"loggedBy":                1,
			"totalPayout":             "$snapshot.totals.totalPayout",
			"totalAdjustedCommission": "$snapshot.totals.totalAdjustedCommission",
		})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list report logs: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := []models.CommissionReportLogSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("decode report logs: %w", err)
	}
	return summaries, nil
}
