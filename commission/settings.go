// Package commission turns sale records into weekly commission statements.
// Everything in this package is pure: callers hand in sales, adjustments and
// a clock value, and get back an immutable snapshot.
package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultKeyRoleName is the aggregate identity that receives the
	// collections bonus and the organization-wide weekly bonus.
	DefaultKeyRoleName = "Key"

	// UnassignedName is used when a sale has no salesperson at all.
	UnassignedName = "Unassigned"
)

// Settings holds the tunable constants of the engine.
type Settings struct {
	KeyRoleName          string
	WeeklyBonusThreshold int
	WeeklyBonusPerUnit   decimal.Decimal
	Location             *time.Location
}

// DefaultSettings returns the dealership defaults: more than five deals in a
// bonus week pays 50 per extra deal.
func DefaultSettings() Settings {
	return Settings{
		KeyRoleName:          DefaultKeyRoleName,
		WeeklyBonusThreshold: 5,
		WeeklyBonusPerUnit:   decimal.NewFromInt(50),
		Location:             time.UTC,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if NormalizeName(s.KeyRoleName) == "" {
		s.KeyRoleName = def.KeyRoleName
	}
	if s.WeeklyBonusThreshold < 0 {
		s.WeeklyBonusThreshold = 0
	}
	if s.Location == nil {
		s.Location = def.Location
	}
	return s
}

// Engine builds commission report snapshots with an injected policy.
type Engine struct {
	policy   Policy
	settings Settings
}

// NewEngine creates an engine. A nil policy falls back to DefaultPolicy.
func NewEngine(policy Policy, settings Settings) *Engine {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Engine{policy: policy, settings: settings.withDefaults()}
}

// Settings returns the effective settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Location is the time zone sale dates are bucketed in.
func (e *Engine) Location() *time.Location {
	return e.settings.Location
}
