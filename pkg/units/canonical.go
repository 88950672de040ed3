// Package units provides canonical units and presentation helpers for money and energy.
package units

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Unit represents a measurable quantity.
type Unit string

const (
	UnitKWh        Unit = "kWh"
	UnitKW         Unit = "kW"
	UnitWatt       Unit = "W"
	UnitSquareM    Unit = "m²"
	UnitToman      Unit = "toman"
	UnitTomanPerKW Unit = "toman/kWh"
)

const (
	MonthsPerYear = 12
	WattsPerKW    = 1000.0
)

var (
	million = decimal.NewFromInt(1_000_000)
	billion = decimal.NewFromInt(1_000_000_000)
)

// FormatToman renders an amount the way the tariff authority's calculators do:
// whole millions below one billion, two-decimal billions above.
func FormatToman(amount decimal.Decimal) string {
	if amount.Abs().GreaterThanOrEqual(billion) {
		return amount.Div(billion).Round(2).String() + " billion"
	}
	return amount.Div(million).Truncate(0).String() + " million"
}

// FormatTomanFloat is FormatToman for float64 projection values.
func FormatTomanFloat(amount float64) string {
	return FormatToman(decimal.NewFromFloat(amount))
}

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// PersianDigits replaces ASCII digits with Extended Arabic-Indic digits.
func PersianDigits(s string) string {
	return persianDigits.Replace(s)
}

// GroupThousands inserts comma separators into the integer part of a decimal string.
func GroupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
