package commission

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Policy is the commission math the engine delegates to. Both methods must be
// pure and total over valid amounts.
type Policy interface {
	Base(amount decimal.Decimal) decimal.Decimal
	ApplyOverride(amount decimal.Decimal, note string) OverrideResult
}

// OverrideResult is what ApplyOverride decided for one row.
type OverrideResult struct {
	Amount  decimal.Decimal
	Applied bool
	Details string
}

// PolicyFuncs adapts two plain functions to Policy. A nil OverrideFunc keeps
// the amount unchanged.
type PolicyFuncs struct {
	BaseFunc     func(amount decimal.Decimal) decimal.Decimal
	OverrideFunc func(amount decimal.Decimal, note string) OverrideResult
}

func (p PolicyFuncs) Base(amount decimal.Decimal) decimal.Decimal {
	if p.BaseFunc == nil {
		return decimal.Zero
	}
	return p.BaseFunc(amount)
}

func (p PolicyFuncs) ApplyOverride(amount decimal.Decimal, note string) OverrideResult {
	if p.OverrideFunc == nil {
		return OverrideResult{Amount: amount}
	}
	return p.OverrideFunc(amount, note)
}

// RatePolicy pays a flat rate of the commissionable amount with an optional
// floor, and honors "override 250" / "flat $250" notes.
type RatePolicy struct {
	Rate    decimal.Decimal
	Minimum decimal.Decimal
}

// DefaultPolicy pays 20% with no floor.
func DefaultPolicy() RatePolicy {
	return RatePolicy{Rate: decimal.RequireFromString("0.2"), Minimum: decimal.Zero}
}

var overrideNotePattern = regexp.MustCompile(`(?i)\b(?:override|flat)\s*[:=]?\s*\$?\s*(\d+(?:\.\d+)?)`)

func (p RatePolicy) Base(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	base := amount.Mul(p.Rate)
	if base.LessThan(p.Minimum) {
		base = p.Minimum
	}
	return base.Round(2)
}

func (p RatePolicy) ApplyOverride(amount decimal.Decimal, note string) OverrideResult {
	match := overrideNotePattern.FindStringSubmatch(note)
	if match == nil {
		return OverrideResult{Amount: amount}
	}
	value, err := decimal.NewFromString(match[1])
	if err != nil {
		return OverrideResult{Amount: amount}
	}
	return OverrideResult{
		Amount:  value,
		Applied: true,
		Details: fmt.Sprintf("Override from note: $%s (was $%s)", value.StringFixed(2), amount.StringFixed(2)),
	}
}
