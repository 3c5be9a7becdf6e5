package models

import (
	"time"
)

// CollectionsBonusRecord is the persisted collections-bonus state of one
// reporting week.
type CollectionsBonusRecord struct {
	Value   *float64  `json:"value" bson:"value"`
	Locked  bool      `json:"locked" bson:"locked"`
	SavedAt time.Time `json:"savedAt" bson:"savedAt"`
}

// AdjustmentState is everything a user has entered by hand for one
// reporting week.
type AdjustmentState struct {
	WeekKey          string                  `json:"weekKey"`
	CollectionsBonus *CollectionsBonusRecord `json:"collectionsBonus,omitempty"`
	ManualAmounts    map[string]string       `json:"manualAmounts"`
	Notes            map[string]string       `json:"notes"`
}

// CommissionReportLog is a published snapshot. It is never recomputed.
type CommissionReportLog struct {
	ID        string                   `json:"id" bson:"_id"`
	WeekKey   string                   `json:"weekKey" bson:"weekKey"`
	PeriodEnd time.Time                `json:"periodEnd" bson:"periodEnd"`
	LoggedAt  time.Time                `json:"loggedAt" bson:"loggedAt"`
	LoggedBy  string                   `json:"loggedBy,omitempty" bson:"loggedBy,omitempty"`
	Snapshot  CommissionReportSnapshot `json:"snapshot" bson:"snapshot"`
}

// CommissionReportLogSummary is a list entry without the snapshot payload.
type CommissionReportLogSummary struct {
	ID                      string    `json:"id" bson:"_id"`
	WeekKey                 string    `json:"weekKey" bson:"weekKey"`
	PeriodEnd               time.Time `json:"periodEnd" bson:"periodEnd"`
	LoggedAt                time.Time `json:"loggedAt" bson:"loggedAt"`
	LoggedBy                string    `json:"loggedBy,omitempty" bson:"loggedBy,omitempty"`
	TotalPayout             float64   `json:"totalPayout" bson:"totalPayout"`
	TotalAdjustedCommission float64   `json:"totalAdjustedCommission" bson:"totalAdjustedCommission"`
}

// ReportingWeekSummary is one entry of the week picker.
type ReportingWeekSummary struct {
	Key       string    `json:"key"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	SaleCount int       `json:"saleCount"`
	IsCurrent bool      `json:"isCurrent"`
}
