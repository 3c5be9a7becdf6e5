package commission

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/HSouheill/dealership_backend/models"
)

// WeekKeyLayout formats the start day of a reporting week into its key.
const WeekKeyLayout = "2006-01-02"

// ErrInvalidWeekKey is returned for keys that are not a Friday date.
var ErrInvalidWeekKey = errors.New("invalid reporting week key")

var saleDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ReportingWeek is a Friday 00:00 through Thursday 23:59:59.999 window.
type ReportingWeek struct {
	Key   string
	Start time.Time
	End   time.Time
}

// BonusWindow is the Monday through Sunday window used for volume bonuses.
type BonusWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the week, bounds included.
func (w ReportingWeek) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Contains reports whether t falls inside the window, bounds included.
func (b BonusWindow) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// ParseSaleDate returns the calendar day of a raw sale date at midnight in
// loc. Time of day and offset only matter for picking the day. Unparsable
// input returns false.
func ParseSaleDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range saleDateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDayAfter(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days+1).Add(-time.Millisecond)
}

// WeekOf returns the reporting week enclosing day.
func WeekOf(day time.Time) ReportingWeek {
	day = startOfDay(day)
	offset := (int(day.Weekday()) - int(time.Friday) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return ReportingWeek{
		Key:   start.Format(WeekKeyLayout),
		Start: start,
		End:   endOfDayAfter(start, 6),
	}
}

// WeekKeyOf maps a raw sale date to its reporting week key.
func WeekKeyOf(raw string, loc *time.Location) (string, bool) {
	day, ok := ParseSaleDate(raw, loc)
	if !ok {
		return "", false
	}
	return WeekOf(day).Key, true
}

// ParseWeekKey rebuilds a reporting week from its key.
func ParseWeekKey(key string, loc *time.Location) (ReportingWeek, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(WeekKeyLayout, strings.TrimSpace(key), loc)
	if err != nil || start.Weekday() != time.Friday {
		return ReportingWeek{}, ErrInvalidWeekKey
	}
	return WeekOf(start), nil
}

// BonusWindowOf shifts a reporting week start back four days, which lands
// on the Monday of the bonus week.
func BonusWindowOf(reportingWeekStart time.Time) BonusWindow {
	start := startOfDay(reportingWeekStart.AddDate(0, 0, -4))
	return BonusWindow{
		Start: start,
		End:   endOfDayAfter(start, 6),
	}
}

// CurrentWeek returns the reporting week containing now.
func (e *Engine) CurrentWeek(now time.Time) ReportingWeek {
	return WeekOf(now.In(e.settings.Location))
}

// SalesInWeek keeps the sales whose date falls in week. Undated sales are
// dropped.
func (e *Engine) SalesInWeek(sales []models.Sale, week ReportingWeek) []models.Sale {
	var out []models.Sale
	for _, sale := range sales {
		day, ok := ParseSaleDate(sale.SaleDate, e.settings.Location)
		if ok && week.Contains(day) {
			out = append(out, sale)
		}
	}
	return out
}

// WeekBucket is one reporting week and how many sales it holds.
type WeekBucket struct {
	Week      ReportingWeek
	SaleCount int
}

// Weeks buckets sales into reporting weeks, newest first. The week holding
// now is always present, even without sales.
func (e *Engine) Weeks(sales []models.Sale, now time.Time) []WeekBucket {
	counts := make(map[string]*WeekBucket)
	current := e.CurrentWeek(now)
	counts[current.Key] = &WeekBucket{Week: current}
	for _, sale := range sales {
		day, ok := ParseSaleDate(sale.SaleDate, e.settings.Location)
		if !ok {
			continue
		}
		week := WeekOf(day)
		bucket, exists := counts[week.Key]
		if !exists {
			bucket = &WeekBucket{Week: week}
			counts[week.Key] = bucket
		}
		bucket.SaleCount++
	}
	out := make([]WeekBucket, 0, len(counts))
	for _, bucket := range counts {
		out = append(out, *bucket)
	}
	sortWeeksDesc(out)
	return out
}

func sortWeeksDesc(weeks []WeekBucket) {
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].Week.Start.After(weeks[j].Week.Start)
	})
}
