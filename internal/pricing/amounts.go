// Package pricing is the pure computation core: readable/raw conversions,
// mid and execution prices, price impact and slippage-bounded minimum output.
// Raw amounts are big integers in the token's smallest unit; decimal strings
// exist only at the I/O boundary.
package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// DefaultSignificantDigits applies to formatted prices.
	DefaultSignificantDigits = 6
	// DefaultImpactDecimalPlaces applies to formatted percentages.
	DefaultImpactDecimalPlaces = 2
)

// FromReadable converts a human-readable amount to raw integer units by
// scaling with 10^decimals and flooring. This is the single conversion point
// for amounts crossing into the integer domain.
func FromReadable(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Floor().BigInt()
}

// ToReadable converts raw integer units back to a decimal amount.
func ToReadable(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ToSignificant formats d with the given number of significant digits,
// trailing zeros trimmed.
func ToSignificant(d decimal.Decimal, digits int32) string {
	if digits <= 0 || d.IsZero() {
		return "0"
	}
	abs := d.Abs()
	one := decimal.New(1, 0)
	ten := decimal.New(1, 1)

	// exp = floor(log10(abs))
	exp := int32(0)
	for abs.GreaterThanOrEqual(ten) {
		abs = abs.Div(ten)
		exp++
	}
	for abs.LessThan(one) {
		abs = abs.Mul(ten)
		exp--
	}
	return d.Round(digits - 1 - exp).String()
}

// ToFixed formats d with a fixed number of decimal places.
func ToFixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
