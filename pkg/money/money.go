package money

import "github.com/shopspring/decimal"

// Epsilon is the rounding tolerance for monetary comparisons. Two amounts
// closer than half a cent are treated as equal.
var Epsilon = decimal.New(5, -3) // 0.005

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsZero reports whether d is zero within Epsilon.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}

// IsPositive reports whether d is greater than zero beyond Epsilon.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Epsilon)
}

// GTE reports whether a >= b within Epsilon.
func GTE(a, b decimal.Decimal) bool {
	return a.Sub(b).GreaterThan(Epsilon.Neg())
}

// Clamp floors negative amounts to zero.
func Clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
