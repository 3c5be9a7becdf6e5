package commission

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/HSouheill/dealership_backend/models"
)

var generatedAt = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

func reportWeek(t *testing.T) ReportingWeek {
	t.Helper()
	week, err := ParseWeekKey("2024-03-01", time.UTC)
	if err != nil {
		t.Fatalf("parse week: %v", err)
	}
	return week
}

func weekSales() []models.Sale {
	return []models.Sale{
		{SaleID: "A10", SaleDate: "2024-03-02", AccountNumber: "10", SaleType: "Sale", Salesperson: "Alex", DownPayment: amount(1000)},
		{SaleID: "A9", SaleDate: "2024-03-03", AccountNumber: "9", SaleType: "Sale", Salesperson: "Alex", DownPayment: amount(500)},
		{SaleID: "AX", SaleDate: "2024-03-01", AccountNumber: "X-1", SaleType: "Sale", Salesperson: "alex", DownPayment: amount(100)},
		{SaleID: "A9b", SaleDate: "2024-03-01", AccountNumber: "9", SaleType: "Sale", Salesperson: "Alex", DownPayment: amount(100)},
		{SaleID: "K1", SaleDate: "2024-03-04", AccountNumber: "300", SaleType: "Cash Sale", Salesperson: "key", SalePrice: amount(9000)},
		{SaleID: "B1", SaleDate: "2024-03-05", AccountNumber: "200", SaleType: "Sale", Salesperson: "Bea", DownPayment: amount(2000)},
	}
}

func findPerson(t *testing.T, snap models.CommissionReportSnapshot, name string) models.CommissionSalespersonSnapshot {
	t.Helper()
	for _, p := range snap.Salespeople {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("salesperson %q not in snapshot", name)
	return models.CommissionSalespersonSnapshot{}
}

func TestBuildSnapshotOrdering(t *testing.T) {
	engine := NewEngine(fixedPolicy(), DefaultSettings())
	sales := weekSales()
	snap := engine.BuildSnapshot(SnapshotInput{
		Week:        reportWeek(t),
		SalesInWeek: sales,
		AllSales:    sales,
		GeneratedAt: generatedAt,
	})

	var names []string
	for _, p := range snap.Salespeople {
		names = append(names, p.Name)
	}
	if fmt.Sprint(names) != "[Key Alex Bea]" {
		t.Fatalf("salespeople order = %v", names)
	}

	alex := findPerson(t, snap, "Alex")
	var accounts []string
	for i, row := range alex.Rows {
		if row.Sequence != i+1 {
			t.Fatalf("row %d has sequence %d", i, row.Sequence)
		}
		accounts = append(accounts, row.AccountNumber+"@"+row.SaleDate)
	}
	want := "[9@2024-03-01 9@2024-03-03 10@2024-03-02 X-1@2024-03-01]"
	if fmt.Sprint(accounts) != want {
		t.Fatalf("row order = %v, want %s", accounts, want)
	}
	if alex.TotalAdjustedCommission != 340 {
		t.Fatalf("alex total = %v, want 340", alex.TotalAdjustedCommission)
	}
}

func TestBuildSnapshotKeyRoleTotals(t *testing.T) {
	engine := NewEngine(fixedPolicy(), DefaultSettings())
	sales := weekSales()
	// The bonus window runs Monday 02-26 to Sunday 03-03, so K1 and B1 fall
	// outside it and two earlier deals fall inside.
	all := append(append([]models.Sale{}, sales...),
		models.Sale{SaleID: "C1", SaleDate: "2024-02-27", SaleType: "Sale", Salesperson: "Cy"},
		models.Sale{SaleID: "C2", SaleDate: "2024-02-28", SaleType: "Trade-in", Salesperson: "Cy"},
	)
	in := SnapshotInput{
		Week:          reportWeek(t),
		SalesInWeek:   sales,
		AllSales:      all,
		ManualAmounts: map[string]string{RowKey(sales[4], "Key"): "150"},
		Collections:   CollectionsSelection{Value: amount(100), Locked: true},
		GeneratedAt:   generatedAt,
	}
	snap := engine.BuildSnapshot(in)

	key := findPerson(t, snap, "Key")
	if !key.IsKeyRole || key.TotalAdjustedCommission != 150 {
		t.Fatalf("unexpected key role %+v", key)
	}
	if key.WeeklySalesCount == nil || *key.WeeklySalesCount != 6 {
		t.Fatalf("weekly count = %v", key.WeeklySalesCount)
	}
	if *key.WeeklySalesCountOverThreshold != 1 || *key.WeeklySalesBonus != 50 {
		t.Fatalf("weekly bonus = %d / %v", *key.WeeklySalesCountOverThreshold, *key.WeeklySalesBonus)
	}
	if alex := findPerson(t, snap, "Alex"); alex.WeeklySalesCount != nil || alex.CollectionsBonus != nil {
		t.Fatal("bonus fields must only be set on the key role")
	}

	totals := snap.Totals
	if totals.TotalAdjustedCommission != 150 || *totals.CollectionsBonus != 100 || totals.WeeklySalesBonus != 50 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if totals.TotalPayout != 300 {
		t.Fatalf("payout = %v, want 300", totals.TotalPayout)
	}
	if !totals.CollectionsComplete {
		t.Fatal("expected collections complete")
	}
	if len(snap.WeeklyVolume) != 2 || snap.WeeklyVolume[0].Name != "Alex" || snap.WeeklyVolume[0].SalesCount != 4 {
		t.Fatalf("weekly volume = %+v", snap.WeeklyVolume)
	}
}

func TestBuildSnapshotAddsKeyRoleWhenMissing(t *testing.T) {
	engine := NewEngine(fixedPolicy(), DefaultSettings())
	sales := []models.Sale{{SaleID: "1", SaleDate: "2024-03-02", AccountNumber: "1", Salesperson: "Bea", DownPayment: amount(100)}}
	snap := engine.BuildSnapshot(SnapshotInput{Week: reportWeek(t), SalesInWeek: sales, AllSales: sales})
	if len(snap.Salespeople) != 2 || !snap.Salespeople[0].IsKeyRole || len(snap.Salespeople[0].Rows) != 0 {
		t.Fatalf("unexpected salespeople %+v", snap.Salespeople)
	}

	empty := engine.BuildSnapshot(SnapshotInput{Week: reportWeek(t)})
	if len(empty.Salespeople) != 0 {
		t.Fatalf("empty week should have no salespeople, got %+v", empty.Salespeople)
	}
}

func TestBuildSnapshotIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultPolicy(), DefaultSettings())
	sales := append(weekSales(), models.Sale{
		SaleID:           "S2",
		SaleDate:         "2024-03-06",
		AccountNumber:    "44",
		SaleType:         "Sale",
		SalespersonSplit: []models.SplitEntry{{Name: "Bea", Share: 1}, {Name: "Cy", Share: 2}},
		SalePrice:        amount(3333),
	})
	in := SnapshotInput{
		Week:        reportWeek(t),
		SalesInWeek: sales,
		AllSales:    sales,
		Notes:       map[string]string{RowKey(sales[0], "Alex"): "flat 99"},
		Collections: CollectionsSelection{Value: amount(50)},
		GeneratedAt: generatedAt,
	}
	first, err := json.Marshal(engine.BuildSnapshot(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(engine.BuildSnapshot(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("snapshots differ:\n%s\n%s", first, second)
	}
}

func TestResolveCollections(t *testing.T) {
	locked50 := &models.CollectionsBonusRecord{Value: amount(50), Locked: true}
	unlocked50 := &models.CollectionsBonusRecord{Value: amount(50), Locked: false}

	tests := []struct {
		name         string
		sel          CollectionsSelection
		wantValue    *float64
		wantComplete bool
	}{
		{name: "unselected", sel: CollectionsSelection{}, wantValue: nil, wantComplete: false},
		{name: "selected unlocked", sel: CollectionsSelection{Value: amount(100)}, wantValue: amount(100), wantComplete: false},
		{name: "selected locked", sel: CollectionsSelection{Value: amount(0), Locked: true}, wantValue: amount(0), wantComplete: true},
		{name: "locked without value", sel: CollectionsSelection{Locked: true}, wantValue: nil, wantComplete: false},
		{name: "reload after lock", sel: CollectionsSelection{Persisted: locked50}, wantValue: amount(50), wantComplete: true},
		{name: "persisted but unlocked", sel: CollectionsSelection{Persisted: unlocked50}, wantValue: nil, wantComplete: false},
		{name: "live lock with persisted value", sel: CollectionsSelection{Locked: true, Persisted: unlocked50}, wantValue: amount(50), wantComplete: true},
		{name: "live value wins", sel: CollectionsSelection{Value: amount(100), Locked: true, Persisted: locked50}, wantValue: amount(100), wantComplete: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, _, complete := ResolveCollections(tt.sel)
			if (value == nil) != (tt.wantValue == nil) || (value != nil && *value != *tt.wantValue) {
				t.Fatalf("value = %v, want %v", value, tt.wantValue)
			}
			if complete != tt.wantComplete {
				t.Fatalf("complete = %v, want %v", complete, tt.wantComplete)
			}
		})
	}
}

func TestValidatePublishable(t *testing.T) {
	engine := NewEngine(fixedPolicy(), DefaultSettings())
	sales := weekSales()
	base := SnapshotInput{Week: reportWeek(t), SalesInWeek: sales, AllSales: sales}

	if err := ValidatePublishable(engine.BuildSnapshot(SnapshotInput{Week: reportWeek(t)})); !errors.Is(err, ErrEmptyReport) {
		t.Fatalf("expected ErrEmptyReport, got %v", err)
	}

	unlocked := base
	unlocked.Collections = CollectionsSelection{Value: amount(50)}
	err := ValidatePublishable(engine.BuildSnapshot(unlocked))
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, ErrCollectionsIncomplete) {
		t.Fatalf("expected collections validation error, got %v", err)
	}

	locked := base
	locked.Collections = CollectionsSelection{Value: amount(50), Locked: true}
	if err := ValidatePublishable(engine.BuildSnapshot(locked)); err != nil {
		t.Fatalf("expected publishable, got %v", err)
	}
}

func TestCompareAccountNumbers(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"9", "10", -1},
		{"10", "9", 1},
		{"10", "10", 0},
		{"10", "A", -1},
		{"A", "10", 1},
		{"A-2", "A-10", 1},
	}
	for _, tt := range tests {
		if got := compareAccountNumbers(tt.a, tt.b); got != tt.want {
			t.Fatalf("compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
