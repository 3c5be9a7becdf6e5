package commission

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/shopspring/decimal"
)

// CollectionsSelection is the collections-bonus state handed to the builder.
// Value and Locked come from the live selection; Persisted is whatever the
// durable store or the report log still holds for the week.
type CollectionsSelection struct {
	Value     *float64
	Locked    bool
	Persisted *models.CollectionsBonusRecord
}

// SnapshotInput is everything one snapshot is built from.
type SnapshotInput struct {
	Week          ReportingWeek
	SalesInWeek   []models.Sale
	AllSales      []models.Sale
	Notes         map[string]string
	ManualAmounts map[string]string
	Collections   CollectionsSelection
	GeneratedAt   time.Time
}

// ResolveCollections applies the lookup order: a live value wins, then a
// persisted value when the bonus is marked locked, else nothing is selected.
// It returns the value, whether it is locked, and whether the report is
// complete.
func ResolveCollections(sel CollectionsSelection) (*float64, bool, bool) {
	value := sel.Value
	locked := sel.Locked
	if p := sel.Persisted; value == nil && p != nil && p.Value != nil && (locked || p.Locked) {
		v := *p.Value
		value = &v
		locked = true
	}
	if value != nil {
		v := *value
		value = &v
	}
	return value, locked, value != nil && locked
}

type salespersonGroup struct {
	name  string
	rows  []builtRow
	isKey bool
}

// BuildSnapshot renders the statement for one reporting week. Identical
// input always yields identical output.
func (e *Engine) BuildSnapshot(in SnapshotInput) models.CommissionReportSnapshot {
	adj := RowAdjustments{ManualAmounts: in.ManualAmounts, Notes: in.Notes}
	groups := make(map[string]*salespersonGroup)

	for _, sale := range in.SalesInWeek {
		day, ok := ParseSaleDate(sale.SaleDate, e.settings.Location)
		if !ok || !in.Week.Contains(day) {
			continue
		}
		for _, b := range e.buildRows(sale, adj) {
			g, exists := groups[b.identity]
			if !exists {
				g = &salespersonGroup{name: b.row.Salesperson, isKey: e.IsKeyRole(b.row.Salesperson)}
				groups[b.identity] = g
			}
			g.rows = append(g.rows, b)
		}
	}

	keyID := NameIdentity(e.settings.KeyRoleName)
	if _, ok := groups[keyID]; !ok && len(groups) > 0 {
		groups[keyID] = &salespersonGroup{name: NormalizeName(e.settings.KeyRoleName), isKey: true}
	}

	ordered := make([]*salespersonGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].isKey != ordered[j].isKey {
			return ordered[i].isKey
		}
		a, b := NameIdentity(ordered[i].name), NameIdentity(ordered[j].name)
		if a != b {
			return a < b
		}
		return ordered[i].name < ordered[j].name
	})

	window := BonusWindowOf(in.Week.Start)
	weekly := e.AggregateWeeklyBonus(in.AllSales, window)
	collections, locked, complete := ResolveCollections(in.Collections)

	snap := models.CommissionReportSnapshot{
		WeekKey:          in.Week.Key,
		PeriodStart:      in.Week.Start,
		PeriodEnd:        in.Week.End,
		BonusWindowStart: window.Start,
		BonusWindowEnd:   window.End,
		GeneratedAt:      in.GeneratedAt,
		Salespeople:      make([]models.CommissionSalespersonSnapshot, 0, len(ordered)),
		WeeklyVolume:     make([]models.WeeklyVolume, 0, len(weekly.Participants)),
	}

	for _, g := range ordered {
		sortRows(g.rows, e.settings.Location)
		person := models.CommissionSalespersonSnapshot{
			Name:      g.name,
			IsKeyRole: g.isKey,
			Rows:      make([]models.CommissionReportRowSnapshot, len(g.rows)),
		}
		total := decimal.Zero
		for i, b := range g.rows {
			b.row.Sequence = i + 1
			person.Rows[i] = b.row
			total = total.Add(b.amount)
		}
		person.TotalAdjustedCommission = toMoney(total)

		if g.isKey {
			count := weekly.Organization.Count
			over := weekly.Organization.OverThreshold
			bonus := toMoney(weekly.Organization.Bonus)
			person.CollectionsBonus = collections
			person.CollectionsBonusLocked = locked
			person.WeeklySalesCount = &count
			person.WeeklySalesCountOverThreshold = &over
			person.WeeklySalesBonus = &bonus

			payout := total.Add(weekly.Organization.Bonus)
			if collections != nil {
				payout = payout.Add(decimal.NewFromFloat(*collections))
			}
			snap.Totals = models.CommissionReportTotals{
				TotalAdjustedCommission:       person.TotalAdjustedCommission,
				CollectionsBonus:              collections,
				CollectionsBonusLocked:        locked,
				WeeklySalesCount:              count,
				WeeklySalesCountOverThreshold: over,
				WeeklySalesBonus:              bonus,
				TotalPayout:                   toMoney(payout),
			}
		}
		snap.Salespeople = append(snap.Salespeople, person)
	}

	if len(snap.Salespeople) == 0 {
		snap.Totals = models.CommissionReportTotals{
			CollectionsBonus:              collections,
			CollectionsBonusLocked:        locked,
			WeeklySalesCount:              weekly.Organization.Count,
			WeeklySalesCountOverThreshold: weekly.Organization.OverThreshold,
			WeeklySalesBonus:              toMoney(weekly.Organization.Bonus),
		}
	}
	snap.Totals.CollectionsComplete = complete

	for _, p := range weekly.Participants {
		snap.WeeklyVolume = append(snap.WeeklyVolume, models.WeeklyVolume{
			Name:                    p.Name,
			SalesCount:              p.Count,
			SalesCountOverThreshold: p.OverThreshold,
			Bonus:                   toMoney(p.Bonus),
		})
	}
	return snap
}

// sortRows orders rows by account number, numerically when both sides are
// integers and with numeric accounts ahead of the rest, then by sale date.
func sortRows(rows []builtRow, loc *time.Location) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].row, rows[j].row
		if c := compareAccountNumbers(a.AccountNumber, b.AccountNumber); c != 0 {
			return c < 0
		}
		if c := compareSaleDates(a.SaleDate, b.SaleDate, loc); c != 0 {
			return c < 0
		}
		return a.Key < b.Key
	})
}

func compareAccountNumbers(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return strings.Compare(a, b)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

func compareSaleDates(a, b string, loc *time.Location) int {
	da, aOK := ParseSaleDate(a, loc)
	db, bOK := ParseSaleDate(b, loc)
	if aOK && bOK {
		return da.Compare(db)
	}
	return strings.Compare(a, b)
}
