package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMinor renders an amount held in minor currency units, e.g.
// FormatMinor(150050, "inr") == "1500.50 INR".
func FormatMinor(amount int64, currency string) string {
	s := decimal.New(amount, -2).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + strings.ToUpper(currency)
}
