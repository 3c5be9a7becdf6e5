package commission

import (
	"errors"
	"fmt"

	"github.com/HSouheill/dealership_backend/models"
)

var (
	// ErrCollectionsIncomplete blocks publishing until the collections bonus
	// has a value and is locked.
	ErrCollectionsIncomplete = errors.New("collections bonus must be selected and locked before logging")

	// ErrEmptyReport blocks publishing a report with no salespeople.
	ErrEmptyReport = errors.New("report has no salespeople")
)

// ValidationError wraps a sentinel error with details for the caller.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidatePublishable checks the gate every log or export goes through.
func ValidatePublishable(snap models.CommissionReportSnapshot) error {
	if len(snap.Salespeople) == 0 {
		return &ValidationError{Err: ErrEmptyReport, Details: "week " + snap.WeekKey}
	}
	if !snap.Totals.CollectionsComplete {
		state := "not selected"
		if snap.Totals.CollectionsBonus != nil {
			state = "selected but not locked"
		}
		return &ValidationError{Err: ErrCollectionsIncomplete, Details: state}
	}
	return nil
}
