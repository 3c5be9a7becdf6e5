package services

import "errors"

var (
	// ErrNoBonusSelected is returned when locking without a selected value.
	ErrNoBonusSelected = errors.New("no collections bonus selected")

	// ErrCollectionsLocked is returned when editing or clearing a locked bonus.
	ErrCollectionsLocked = errors.New("collections bonus is locked")

	// ErrInvalidBonusTier is returned for values outside the configured tiers.
	ErrInvalidBonusTier = errors.New("collections bonus is not one of the allowed tiers")

	// ErrUnknownWeek is returned when selecting a week that is not available.
	ErrUnknownWeek = errors.New("reporting week not available")

	// ErrInvalidRowKey is returned for blank row keys.
	ErrInvalidRowKey = errors.New("row key is required")
)
