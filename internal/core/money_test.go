package core

import "testing"

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{1, 100},
		{12.34, 1234},
		{12.345, 1235}, // rounds half away from zero
		{0.005, 1},
		{-3.5, -350},
	}
	for _, tc := range cases {
		if got := MoneyFromFloat(tc.in); got.Cents != tc.out {
			t.Errorf("MoneyFromFloat(%v) = %d, want %d", tc.in, got.Cents, tc.out)
		}
	}
}

func TestMoneyFloat64(t *testing.T) {
	if got := (Money{Cents: 1234}).Float64(); got != 12.34 {
		t.Errorf("Float64() = %v, want 12.34", got)
	}
	if got := (Money{Cents: -50}).Float64(); got != -0.5 {
		t.Errorf("Float64() = %v, want -0.5", got)
	}
}
