package commission

import (
	"sort"

	"github.com/HSouheill/dealership_backend/models"
	"github.com/shopspring/decimal"
)

// BonusTally is a deal count and the bonus it earns.
type BonusTally struct {
	Count         int
	OverThreshold int
	Bonus         decimal.Decimal
}

// ParticipantTally is the tally of one participant.
type ParticipantTally struct {
	Name string
	BonusTally
}

// WeeklyBonus is the weekly-volume result for one bonus window.
type WeeklyBonus struct {
	Window       BonusWindow
	Organization BonusTally
	Participants []ParticipantTally
}

// Participant returns the tally for name, matched by identity.
func (w WeeklyBonus) Participant(name string) (ParticipantTally, bool) {
	id := NameIdentity(name)
	for _, p := range w.Participants {
		if NameIdentity(p.Name) == id {
			return p, true
		}
	}
	return ParticipantTally{}, false
}

func (e *Engine) tally(count int) BonusTally {
	over := count - e.settings.WeeklyBonusThreshold
	if over < 0 {
		over = 0
	}
	return BonusTally{
		Count:         count,
		OverThreshold: over,
		Bonus:         e.settings.WeeklyBonusPerUnit.Mul(decimal.NewFromInt(int64(over))),
	}
}

// AggregateWeeklyBonus counts distinct deals inside window across every sale
// ever recorded. It is rebuilt from scratch on each call and is the one step
// whose cost grows with the full sales history.
func (e *Engine) AggregateWeeklyBonus(allSales []models.Sale, window BonusWindow) WeeklyBonus {
	deals := make(map[string]struct{})
	perParticipant := make(map[string]map[string]struct{})
	names := make(map[string]string)

	for i, sale := range allSales {
		day, ok := ParseSaleDate(sale.SaleDate, e.settings.Location)
		if !ok || !window.Contains(day) {
			continue
		}
		if !countsTowardVolume(sale.SaleType) {
			continue
		}
		deal := DealIdentity(sale, day, i)
		deals[deal] = struct{}{}
		for _, p := range e.ResolveParticipants(sale) {
			id := NameIdentity(p.Name)
			if _, seen := names[id]; !seen {
				names[id] = p.Name
				perParticipant[id] = make(map[string]struct{})
			}
			perParticipant[id][deal] = struct{}{}
		}
	}

	out := WeeklyBonus{
		Window:       window,
		Organization: e.tally(len(deals)),
		Participants: make([]ParticipantTally, 0, len(perParticipant)),
	}
	for id, set := range perParticipant {
		out.Participants = append(out.Participants, ParticipantTally{Name: names[id], BonusTally: e.tally(len(set))})
	}
	sort.Slice(out.Participants, func(i, j int) bool {
		return NameIdentity(out.Participants[i].Name) < NameIdentity(out.Participants[j].Name)
	})
	return out
}
