package core

import (
	"fmt"
	"math"
)

// TransferQuote is the outcome of the conversion arithmetic for a transfer:
// what lands on the destination account and the rate reported to the caller.
type TransferQuote struct {
	Converted Money
	// Rate is converted/amount rounded to 4 decimals; display only, stored
	// amounts keep full cent precision.
	Rate float64
}

// QuoteTransfer computes the destination amount for a transfer of amount from
// one currency to another. rates maps each currency to its rate-to-USD.
//
// Precedence: same currency short-circuits to rate 1; a caller-supplied
// converted amount overrides the table; otherwise the amount is converted
// through USD and rounded to cents.
func QuoteTransfer(amount Money, from, to Currency, supplied *Money, rates map[Currency]float64) (TransferQuote, error) {
	if err := amount.Validate(); err != nil {
		return TransferQuote{}, err
	}
	if from == to {
		return TransferQuote{Converted: amount, Rate: 1}, nil
	}
	if supplied != nil {
		if err := supplied.Validate(); err != nil {
			return TransferQuote{}, fmt.Errorf("%w: converted_amount must be positive", ErrValidation)
		}
		return TransferQuote{
			Converted: *supplied,
			Rate:      roundRate(float64(supplied.Cents) / float64(amount.Cents)),
		}, nil
	}
	fromRate, ok := rates[from]
	if !ok || fromRate <= 0 {
		return TransferQuote{}, fmt.Errorf("%w: no exchange rate for %s", ErrValidation, from)
	}
	toRate, ok := rates[to]
	if !ok || toRate <= 0 {
		return TransferQuote{}, fmt.Errorf("%w: no exchange rate for %s", ErrValidation, to)
	}
	// Convert through USD, then round to cents.
	usd := float64(amount.Cents) / fromRate
	converted := Money{Cents: int64(math.Round(usd * toRate))}
	if converted.Cents <= 0 {
		converted.Cents = 1 // a positive source amount never converts to nothing
	}
	return TransferQuote{
		Converted: converted,
		Rate:      roundRate(float64(converted.Cents) / float64(amount.Cents)),
	}, nil
}

func roundRate(r float64) float64 {
	return math.Round(r*10000) / 10000
}
