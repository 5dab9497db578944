package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMinor(t *testing.T) {
	tests := []struct {
		amount   int64
		currency string
		want     string
	}{
		{150000, "inr", "1500.00 INR"},
		{150050, "INR", "1500.50 INR"},
		{5, "eur", "0.05 EUR"},
		{0, "usd", "0.00 USD"},
		{-1250, "inr", "-12.50 INR"},
		{999, "", "9.99"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMinor(tt.amount, tt.currency))
	}
}
