package core

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Currency amounts are fixed-point decimals with two fractional digits.
// All arithmetic goes through shopspring/decimal; binary floats never touch money.

var ErrMalformedAmount = errors.New("malformed amount")

// ParseAmount parses a decimal money string ("123.45"). More than two
// fractional digits is an error, not a rounding opportunity.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(CleanString(s))
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if d.Exponent() < -2 {
		return decimal.Zero, ErrMalformedAmount
	}
	return d, nil
}

// MustAmount is ParseAmount for trusted inputs (config defaults, tests).
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// AmountFromMinorUnits converts integer minor units (pesewas) to an amount.
func AmountFromMinorUnits(n int64) decimal.Decimal {
	return decimal.New(n, -2)
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// MoneyRound rounds half-up to two fractional digits; applied after any
// multiplication or percentage so derived amounts stay representable.
func MoneyRound(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
