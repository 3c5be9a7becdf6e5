package commission

import (
	"strings"
	"unicode"
)

// SaleKind is the normalized classification of a free-text sale type.
type SaleKind string

const (
	KindSale       SaleKind = "sale"
	KindCash       SaleKind = "cash"
	KindTrade      SaleKind = "trade"
	KindNameChange SaleKind = "name_change"
	KindOther      SaleKind = "other"
)

// saleTypeToken lower-cases a sale type and drops whitespace, hyphens and
// underscores, so "Trade-In", "trade_in" and "TRADE IN" read the same.
func saleTypeToken(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}

// ClassifySaleType maps a free-text sale type to a SaleKind. A blank type is
// a regular sale.
func ClassifySaleType(raw string) SaleKind {
	switch saleTypeToken(raw) {
	case "", "sale":
		return KindSale
	case "cash", "cashsale":
		return KindCash
	case "trade", "tradein":
		return KindTrade
	case "namechange":
		return KindNameChange
	}
	return KindOther
}

// IsManual reports whether rows of this kind are priced by hand.
func (k SaleKind) IsManual() bool {
	return k == KindCash || k == KindTrade || k == KindNameChange
}

// countsTowardVolume reports whether a sale type may enter the weekly bonus
// count. Name changes never do. A type that is present but not recognized is
// left out as well.
func countsTowardVolume(raw string) bool {
	if ClassifySaleType(raw) == KindNameChange {
		return false
	}
	switch saleTypeToken(raw) {
	case "", "sale", "trade", "tradein", "cashsale", "cash":
		return true
	}
	return false
}
