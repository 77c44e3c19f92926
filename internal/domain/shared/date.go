package shared

import "time"

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar day in UTC
func Today() time.Time {
	return DateOnly(time.Now().UTC())
}

// DateRange is an inclusive range of calendar days. Zero bounds are open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DayRange returns a range covering only the given day
func DayRange(day time.Time) DateRange {
	d := DateOnly(day)
	return DateRange{From: d, To: d}
}

// MonthRange returns the range from the first to the last day of the month
func MonthRange(year int, month time.Month) DateRange {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return DateRange{From: first, To: first.AddDate(0, 1, -1)}
}

// Contains reports whether day falls in the range
func (r DateRange) Contains(day time.Time) bool {
	d := DateOnly(day)
	if !r.From.IsZero() && d.Before(DateOnly(r.From)) {
		return false
	}
	if !r.To.IsZero() && d.After(DateOnly(r.To)) {
		return false
	}
	return true
}

// ParseDate reads a YYYY-MM-DD calendar day. An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, Errorf(CodeValidation, "Invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
