package commission

import (
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/shopspring/decimal"
)

// FirstPresentAmount returns the first non-nil value in priority order.
func FirstPresentAmount(values ...*float64) (decimal.Decimal, bool) {
	for _, v := range values {
		if v != nil {
			return decimal.NewFromFloat(*v), true
		}
	}
	return decimal.Zero, false
}

// FirstPresentString returns the first value that is not blank, trimmed.
func FirstPresentString(values ...string) (string, bool) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// CommissionableAmount is the amount commission is computed on. Priority:
// saleDownPayment, downPayment, salePrice. Missing everywhere means zero.
func CommissionableAmount(sale models.Sale) decimal.Decimal {
	amount, _ := FirstPresentAmount(sale.SaleDownPayment, sale.DownPayment, sale.SalePrice)
	return amount
}

// DealIdentity is the key used to count one physical deal once, however many
// participants share it. Priority: saleId, accountNumber, stockNumber, vin.
// Records with none of those get a fallback built from the sale day, the
// sale id and the record position.
func DealIdentity(sale models.Sale, day time.Time, index int) string {
	switch {
	case strings.TrimSpace(sale.SaleID) != "":
		return "sale:" + strings.TrimSpace(sale.SaleID)
	case strings.TrimSpace(sale.AccountNumber) != "":
		return "account:" + strings.TrimSpace(sale.AccountNumber)
	case strings.TrimSpace(sale.StockNumber) != "":
		return "stock:" + strings.TrimSpace(sale.StockNumber)
	case strings.TrimSpace(sale.VIN) != "":
		return "vin:" + strings.ToUpper(strings.TrimSpace(sale.VIN))
	}
	return fmt.Sprintf("fallback:%d|%s|%d", day.Unix(), strings.TrimSpace(sale.SaleID), index)
}

// RowKey identifies one (sale, participant) pair across rebuilds. Manual
// amounts and notes are stored under it.
func RowKey(sale models.Sale, participant string) string {
	var parts []string
	for _, part := range []string{sale.SaleDate, sale.AccountNumber, sale.SaleID, sale.VIN, sale.VINLast4} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "|") + "|" + participant
}

// vinLast4 prefers the stored last four, else derives it from the VIN.
func vinLast4(sale models.Sale) string {
	if v := strings.TrimSpace(sale.VINLast4); v != "" {
		return v
	}
	vin := strings.TrimSpace(sale.VIN)
	if len(vin) > 4 {
		return vin[len(vin)-4:]
	}
	return vin
}
