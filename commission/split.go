package commission

import (
	"fmt"
	"strings"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Participant is one person on a sale with a normalized share in percent.
type Participant struct {
	Name  string
	Share decimal.Decimal
}

// ResolveParticipants normalizes the split of a sale. Shares are scaled to sum
// to 100 and rounded to four decimals, the last participant absorbing the
// rounding remainder. Duplicate names are merged and negative weights count
// as zero. When every weight is zero all shares stay zero. A sale without a
// usable split gets one participant at 100%.
func (e *Engine) ResolveParticipants(sale models.Sale) []Participant {
	var (
		participants []Participant
		index        = make(map[string]int)
	)
	for _, entry := range sale.SalespersonSplit {
		name := e.displayName(entry.Name)
		if name == "" {
			continue
		}
		share := decimal.NewFromFloat(entry.Share)
		if share.IsNegative() {
			share = decimal.Zero
		}
		id := NameIdentity(name)
		if i, ok := index[id]; ok {
			participants[i].Share = participants[i].Share.Add(share)
			continue
		}
		index[id] = len(participants)
		participants = append(participants, Participant{Name: name, Share: share})
	}

	if len(participants) == 0 {
		name := e.displayName(sale.Salesperson)
		if name == "" {
			name = UnassignedName
		}
		return []Participant{{Name: name, Share: hundred}}
	}

	total := decimal.Zero
	for _, p := range participants {
		total = total.Add(p.Share)
	}
	if total.IsZero() {
		for i := range participants {
			participants[i].Share = decimal.Zero
		}
		return participants
	}

	assigned := decimal.Zero
	for i := range participants {
		if i == len(participants)-1 {
			participants[i].Share = hundred.Sub(assigned)
			break
		}
		participants[i].Share = participants[i].Share.Div(total).Mul(hundred).Round(4)
		assigned = assigned.Add(participants[i].Share)
	}
	return participants
}

// splitSummary renders "Commission split: Alex 60% | Sam 40%".
func splitSummary(participants []Participant) string {
	parts := make([]string, 0, len(participants))
	for _, p := range participants {
		parts = append(parts, fmt.Sprintf("%s %s%%", p.Name, p.Share.String()))
	}
	return "Commission split: " + strings.Join(parts, " | ")
}
