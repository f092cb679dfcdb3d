package domain

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// minorUnitExponent is the subunit scale the gateway uses for every supported currency.
const minorUnitExponent = -2

// MajorUnits converts a minor-unit amount (kobo, cents) to major units without floats.
func MajorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, minorUnitExponent)
}

// FormatAmount renders a minor-unit amount as a fixed two-decimal string, e.g. 5000 -> "50.00".
func FormatAmount(amount int64) string {
	return MajorUnits(amount).StringFixed(2)
}

// ParseCurrency validates an ISO 4217 code.
func ParseCurrency(code string) (currency.Unit, error) {
	return currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
}
