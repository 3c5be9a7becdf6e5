package models

import (
	"time"
)

// CommissionReportRowSnapshot is one (sale, participant) line of a report.
type CommissionReportRowSnapshot struct {
	Key                      string  `bson:"key" json:"key"`
	Sequence                 int     `bson:"sequence" json:"sequence"`
	SaleID                   string  `bson:"saleId" json:"saleId"`
	SaleDate                 string  `bson:"saleDate" json:"saleDate"`
	AccountNumber            string  `bson:"accountNumber" json:"accountNumber"`
	StockNumber              string  `bson:"stockNumber,omitempty" json:"stockNumber,omitempty"`
	VINLast4                 string  `bson:"vinLast4,omitempty" json:"vinLast4,omitempty"`
	Vehicle                  string  `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	SaleType                 string  `bson:"saleType" json:"saleType"`
	SaleKind                 string  `bson:"saleKind" json:"saleKind"`
	Salesperson              string  `bson:"salesperson" json:"salesperson"`
	SharePercent             float64 `bson:"sharePercent" json:"sharePercent"`
	ParticipantCount         int     `bson:"participantCount" json:"participantCount"`
	CommissionableAmount     float64 `bson:"commissionableAmount" json:"commissionableAmount"`
	BaseCommission           float64 `bson:"baseCommission" json:"baseCommission"`
	CommissionBeforeOverride float64 `bson:"commissionBeforeOverride" json:"commissionBeforeOverride"`
	AdjustedCommission       float64 `bson:"adjustedCommission" json:"adjustedCommission"`
	OverrideApplied          bool    `bson:"overrideApplied" json:"overrideApplied"`
	OverrideDetails          string  `bson:"overrideDetails,omitempty" json:"overrideDetails,omitempty"`
	ManualAmountRequired     bool    `bson:"manualAmountRequired" json:"manualAmountRequired"`
	ManualAmount             string  `bson:"manualAmount,omitempty" json:"manualAmount,omitempty"`
	Notes                    string  `bson:"notes" json:"notes"`
}

// CommissionSalespersonSnapshot groups the rows of one participant. The bonus
// fields are only set for the Key role.
type CommissionSalespersonSnapshot struct {
	Name                          string                        `bson:"name" json:"name"`
	IsKeyRole                     bool                          `bson:"isKeyRole" json:"isKeyRole"`
	Rows                          []CommissionReportRowSnapshot `bson:"rows" json:"rows"`
	TotalAdjustedCommission       float64                       `bson:"totalAdjustedCommission" json:"totalAdjustedCommission"`
	CollectionsBonus              *float64                      `bson:"collectionsBonus,omitempty" json:"collectionsBonus,omitempty"`
	CollectionsBonusLocked        bool                          `bson:"collectionsBonusLocked,omitempty" json:"collectionsBonusLocked,omitempty"`
	WeeklySalesCount              *int                          `bson:"weeklySalesCount,omitempty" json:"weeklySalesCount,omitempty"`
	WeeklySalesCountOverThreshold *int                          `bson:"weeklySalesCountOverThreshold,omitempty" json:"weeklySalesCountOverThreshold,omitempty"`
	WeeklySalesBonus              *float64                      `bson:"weeklySalesBonus,omitempty" json:"weeklySalesBonus,omitempty"`
}

// CommissionReportTotals mirrors the Key role's figures.
type CommissionReportTotals struct {
	TotalAdjustedCommission       float64  `bson:"totalAdjustedCommission" json:"totalAdjustedCommission"`
	CollectionsBonus              *float64 `bson:"collectionsBonus,omitempty" json:"collectionsBonus,omitempty"`
	CollectionsBonusLocked        bool     `bson:"collectionsBonusLocked" json:"collectionsBonusLocked"`
	WeeklySalesCount              int      `bson:"weeklySalesCount" json:"weeklySalesCount"`
	WeeklySalesCountOverThreshold int      `bson:"weeklySalesCountOverThreshold" json:"weeklySalesCountOverThreshold"`
	WeeklySalesBonus              float64  `bson:"weeklySalesBonus" json:"weeklySalesBonus"`
	TotalPayout                   float64  `bson:"totalPayout" json:"totalPayout"`
	CollectionsComplete           bool     `bson:"collectionsComplete" json:"collectionsComplete"`
}

// WeeklyVolume is one participant's deal count inside the bonus window.
type WeeklyVolume struct {
	Name                    string  `bson:"name" json:"name"`
	SalesCount              int     `bson:"salesCount" json:"salesCount"`
	SalesCountOverThreshold int     `bson:"salesCountOverThreshold" json:"salesCountOverThreshold"`
	Bonus                   float64 `bson:"bonus" json:"bonus"`
}

// CommissionReportSnapshot is the full statement for one reporting week.
type CommissionReportSnapshot struct {
	WeekKey          string                          `bson:"weekKey" json:"weekKey"`
	PeriodStart      time.Time                       `bson:"periodStart" json:"periodStart"`
	PeriodEnd        time.Time                       `bson:"periodEnd" json:"periodEnd"`
	BonusWindowStart time.Time                       `bson:"bonusWindowStart" json:"bonusWindowStart"`
	BonusWindowEnd   time.Time                       `bson:"bonusWindowEnd" json:"bonusWindowEnd"`
	GeneratedAt      time.Time                       `bson:"generatedAt" json:"generatedAt"`
	Salespeople      []CommissionSalespersonSnapshot `bson:"salespeople" json:"salespeople"`
	WeeklyVolume     []WeeklyVolume                  `bson:"weeklyVolume" json:"weeklyVolume"`
	Totals           CommissionReportTotals          `bson:"totals" json:"totals"`
}

// Report view sources
const (
	ReportSourceLive     = "live"
	ReportSourceArchived = "archived"
)

// CommissionReportView is what both the live and the archived screens render.
type CommissionReportView struct {
	Snapshot CommissionReportSnapshot `json:"snapshot"`
	Editable bool                     `json:"editable"`
	Source   string                   `json:"source"`
	LogID    string                   `json:"logId,omitempty"`
	LoggedAt *time.Time               `json:"loggedAt,omitempty"`
	LoggedBy string                   `json:"loggedBy,omitempty"`
}
