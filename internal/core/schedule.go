package core

import "time"

// NextDueDate advances a due date by one period. Month-based frequencies keep
// the day of month where the target month allows it and clamp to the last
// valid day otherwise: Jan 31 + 1 month = Feb 29 in a leap year, Feb 28
// otherwise. Year advances clamp Feb 29 to Feb 28 off leap years.
func NextDueDate(from Date, freq Frequency) Date {
	switch freq {
	case Daily:
		return Date{Time: from.AddDate(0, 0, 1)}
	case Weekly:
		return Date{Time: from.AddDate(0, 0, 7)}
	case Monthly:
		return addMonthsClamped(from, 1)
	case Quarterly:
		return addMonthsClamped(from, 3)
	case Yearly:
		return addMonthsClamped(from, 12)
	default:
		// Unknown frequencies never fire again; Validate rejects them upstream.
		return from
	}
}

// addMonthsClamped adds calendar months without time.AddDate's overflow
// normalization (which would turn Jan 31 + 1 month into Mar 2/3).
func addMonthsClamped(from Date, months int) Date {
	y, m, d := from.Date()
	m += time.Month(months)
	for m > 12 {
		m -= 12
		y++
	}
	if last := daysIn(y, m); d > last {
		d = last
	}
	return NewDate(y, int(m), d)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpiresAfter reports whether a template must deactivate once its due date
// has advanced to next: an end date is set and the new due date passed it.
func (rt RecurringTransaction) ExpiresAfter(next Date) bool {
	return !rt.EndDate.IsZero() && next.After(rt.EndDate.Time)
}
