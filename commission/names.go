package commission

import (
	"strings"
)

// NormalizeName trims a person name and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NameIdentity is the comparison key of a name: normalized and lower-cased.
// "Key", " key " and "KEY" share one identity.
func NameIdentity(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// IsKeyRole reports whether name refers to the aggregate Key role.
func (e *Engine) IsKeyRole(name string) bool {
	return NameIdentity(name) == NameIdentity(e.settings.KeyRoleName)
}

// displayName normalizes a participant name for output. The Key role is
// always spelled the configured way, whatever casing the record used.
func (e *Engine) displayName(name string) string {
	if e.IsKeyRole(name) {
		return NormalizeName(e.settings.KeyRoleName)
	}
	return NormalizeName(name)
}
