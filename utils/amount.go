package utils

import (
	"strings"
)

// SanitizeAmount keeps only the digits and the first decimal point of a typed
// amount. "$1,250.00 " becomes "1250.00"; "1.2.3" becomes "1.23"; "abc"
// becomes "".
func SanitizeAmount(input string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range input {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
