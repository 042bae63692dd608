// Package rates provides the currency exchange-rate table used to quote
// transfers between accounts of different currencies. All rates are expressed
// against USD.
package rates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

// Provider hands out the rate-to-USD table for transfer quoting.
type Provider interface {
	Rates() map[core.Currency]float64
}

// Static is a fixed in-memory table.
type Static struct {
	table map[core.Currency]float64
}

// Default is the built-in table used when no override is configured.
func Default() *Static {
	return &Static{table: map[core.Currency]float64{
		core.CurrencyUSD: 1.0,
		core.CurrencyEUR: 0.85,
		core.CurrencyGBP: 0.73,
		core.CurrencyEGP: 30.9,
	}}
}

// Rates returns a copy so callers cannot mutate the table.
func (s *Static) Rates() map[core.Currency]float64 {
	out := make(map[core.Currency]float64, len(s.table))
	for c, r := range s.table {
		out[c] = r
	}
	return out
}

// Parse builds a table from an override string of the form
// "USD=1.0,EUR=0.85,GBP=0.73,EGP=30.9". Currencies absent from the override
// keep their default rate; USD is always pinned to 1.
func Parse(override string) (*Static, error) {
	s := Default()
	if strings.TrimSpace(override) == "" {
		return s, nil
	}
	for _, pair := range strings.Split(override, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("exchange rate override %q: want CUR=rate", pair)
		}
		cur := core.Currency(strings.ToUpper(strings.TrimSpace(key)))
		if !cur.Valid() {
			return nil, fmt.Errorf("exchange rate override: unknown currency %q", key)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("exchange rate override %q: rate must be a positive number", pair)
		}
		s.table[cur] = rate
	}
	s.table[core.CurrencyUSD] = 1.0
	return s, nil
}
