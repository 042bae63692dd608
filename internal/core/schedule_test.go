package core

import "testing"

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name string
		from Date
		freq Frequency
		want Date
	}{
		{name: "daily", from: NewDate(2024, 1, 15), freq: Daily, want: NewDate(2024, 1, 16)},
		{name: "daily across month end", from: NewDate(2024, 1, 31), freq: Daily, want: NewDate(2024, 2, 1)},
		{name: "weekly", from: NewDate(2024, 1, 15), freq: Weekly, want: NewDate(2024, 1, 22)},
		{name: "weekly across year end", from: NewDate(2023, 12, 28), freq: Weekly, want: NewDate(2024, 1, 4)},
		{name: "monthly plain", from: NewDate(2024, 3, 15), freq: Monthly, want: NewDate(2024, 4, 15)},
		{name: "monthly jan 31 clamps to leap feb 29", from: NewDate(2024, 1, 31), freq: Monthly, want: NewDate(2024, 2, 29)},
		{name: "monthly jan 31 clamps to feb 28 off leap years", from: NewDate(2023, 1, 31), freq: Monthly, want: NewDate(2023, 2, 28)},
		{name: "monthly aug 31 clamps to sep 30", from: NewDate(2024, 8, 31), freq: Monthly, want: NewDate(2024, 9, 30)},
		{name: "monthly december wraps year", from: NewDate(2024, 12, 31), freq: Monthly, want: NewDate(2025, 1, 31)},
		{name: "quarterly", from: NewDate(2024, 1, 15), freq: Quarterly, want: NewDate(2024, 4, 15)},
		{name: "quarterly nov 30 wraps year", from: NewDate(2024, 11, 30), freq: Quarterly, want: NewDate(2025, 2, 28)},
		{name: "yearly", from: NewDate(2024, 6, 1), freq: Yearly, want: NewDate(2025, 6, 1)},
		{name: "yearly feb 29 clamps to feb 28", from: NewDate(2024, 2, 29), freq: Yearly, want: NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.from, tt.freq)
			if !got.Equal(tt.want.Time) {
				t.Errorf("NextDueDate(%s, %s) = %s, want %s",
					tt.from.Format("2006-01-02"), tt.freq,
					got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestExpiresAfter(t *testing.T) {
	rt := RecurringTransaction{EndDate: NewDate(2024, 6, 30)}

	if rt.ExpiresAfter(NewDate(2024, 6, 30)) {
		t.Error("due date equal to end date should not expire the template")
	}
	if !rt.ExpiresAfter(NewDate(2024, 7, 1)) {
		t.Error("due date past end date should expire the template")
	}

	open := RecurringTransaction{}
	if open.ExpiresAfter(NewDate(2999, 1, 1)) {
		t.Error("open-ended template never expires")
	}
}
