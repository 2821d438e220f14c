package season

import (
	"fmt"
	"iter"
	"time"
)

// MonthKeyLayout is the textual form of a MonthKey ("2024-01").
const MonthKeyLayout = "2006-01"

// MonthKey identifies one calendar month, the unit of a single fetch
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a "YYYY-MM" string
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(MonthKeyLayout, s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the "YYYY-MM" form
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Label returns the human form used in the table dump, e.g. "January 2024"
func (k MonthKey) Label() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

// FirstDay returns midnight UTC on the first day of the month
func (k MonthKey) FirstDay() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month, rolling December into January
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Before reports whether k is strictly earlier than other
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// Contains reports whether t falls in this month
func (k MonthKey) Contains(t time.Time) bool {
	return t.Year() == k.Year && t.Month() == k.Month
}

// MonthRange yields every month from start to end inclusive.
// The sequence is lazy and can be ranged over any number of times.
func MonthRange(start, end MonthKey) iter.Seq[MonthKey] {
	return func(yield func(MonthKey) bool) {
		for k := start; !end.Before(k); k = k.Next() {
			if !yield(k) {
				return
			}
		}
	}
}

// MonthLabels collects the labels of MonthRange(start, end)
func MonthLabels(start, end MonthKey) []string {
	labels := make([]string, 0, 12)
	for k := range MonthRange(start, end) {
		labels = append(labels, k.Label())
	}
	return labels
}
