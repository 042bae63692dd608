// Package core holds the wallet domain model: accounts, categories,
// transactions, recurring templates, and the money/date primitives they
// share.
package core

import "math"

// MoneyFromFloat converts a decimal amount (as received in JSON) to cents,
// rounding half away from zero on the third decimal.
func MoneyFromFloat(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Float64 returns the decimal value for JSON encoding and display.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100
}
