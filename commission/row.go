package commission

import (
	"fmt"
	"strings"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/shopspring/decimal"
)

// RowAdjustments are the hand-entered values rows are joined against by key.
type RowAdjustments struct {
	ManualAmounts map[string]string
	Notes         map[string]string
}

// builtRow keeps the exact amount next to the rendered row so totals are
// summed before rounding to float.
type builtRow struct {
	row      models.CommissionReportRowSnapshot
	identity string
	amount   decimal.Decimal
}

// BuildRows produces one row per participant of sale, without sequence
// numbers.
func (e *Engine) BuildRows(sale models.Sale, adj RowAdjustments) []models.CommissionReportRowSnapshot {
	built := e.buildRows(sale, adj)
	rows := make([]models.CommissionReportRowSnapshot, len(built))
	for i, b := range built {
		rows[i] = b.row
	}
	return rows
}

func (e *Engine) buildRows(sale models.Sale, adj RowAdjustments) []builtRow {
	participants := e.ResolveParticipants(sale)
	kind := ClassifySaleType(sale.SaleType)
	amount := CommissionableAmount(sale)
	split := len(participants) > 1

	out := make([]builtRow, 0, len(participants))
	for _, p := range participants {
		key := RowKey(sale, p.Name)
		note := strings.TrimSpace(adj.Notes[key])

		row := models.CommissionReportRowSnapshot{
			Key:                  key,
			SaleID:               strings.TrimSpace(sale.SaleID),
			SaleDate:             strings.TrimSpace(sale.SaleDate),
			AccountNumber:        strings.TrimSpace(sale.AccountNumber),
			StockNumber:          strings.TrimSpace(sale.StockNumber),
			VINLast4:             vinLast4(sale),
			Vehicle:              sale.Vehicle(),
			SaleType:             strings.TrimSpace(sale.SaleType),
			SaleKind:             string(kind),
			Salesperson:          p.Name,
			SharePercent:         p.Share.Round(4).InexactFloat64(),
			ParticipantCount:     len(participants),
			CommissionableAmount: toMoney(amount),
		}

		var adjusted decimal.Decimal
		if kind.IsManual() {
			raw := strings.TrimSpace(adj.ManualAmounts[key])
			row.ManualAmountRequired = true
			row.ManualAmount = raw
			adjusted = parseManualAmount(raw)
			if raw != "" {
				row.OverrideDetails = "Manual commission entered"
			} else {
				row.OverrideDetails = "Manual commission required"
			}
		} else {
			base := e.policy.Base(amount)
			before := base.Mul(p.Share).Div(hundred)
			result := e.policy.ApplyOverride(before, note)
			adjusted = result.Amount
			row.BaseCommission = toMoney(base)
			row.CommissionBeforeOverride = toMoney(before)
			row.OverrideApplied = result.Applied || split
			row.OverrideDetails = result.Details
			if row.OverrideDetails == "" && split {
				row.OverrideDetails = fmt.Sprintf("Split commission: %s%% of $%s", p.Share.String(), base.StringFixed(2))
			}
		}
		adjusted = adjusted.Round(2)
		row.AdjustedCommission = toMoney(adjusted)

		switch {
		case note != "":
			row.Notes = note
		case split:
			row.Notes = splitSummary(participants)
		}

		out = append(out, builtRow{row: row, identity: NameIdentity(p.Name), amount: adjusted})
	}
	return out
}

// parseManualAmount reads a sanitized manual entry. Anything that still does
// not parse counts as zero.
func parseManualAmount(raw string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func toMoney(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
