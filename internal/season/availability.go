package season

import (
	"fmt"
	"strings"
	"time"
)

// AvailabilityIntro prefixes every availability message
const AvailabilityIntro = "The following dates have become available: "

// DateRange is an inclusive window of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses two YYYY-MM-DD bounds
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing window start %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("parsing window end %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("window end %s is before start %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether the calendar day of t lies within the range
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(truncateDay(r.Start)) && !day.After(truncateDay(r.End))
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

// Availability lists the free Saturdays found inside a window
type Availability struct {
	Dates   []time.Time `json:"dates"`
	Message string      `json:"message"`
}

// DateTexts returns the free dates as YYYY-MM-DD strings
func (a *Availability) DateTexts() []string {
	texts := make([]string, 0, len(a.Dates))
	for _, d := range a.Dates {
		texts = append(texts, d.Format(DateLayout))
	}
	return texts
}

// CheckAvailability selects the rows inside window with no booked events.
// It returns nil when there is nothing to report.
func CheckAvailability(table *Table, window DateRange) *Availability {
	if table == nil {
		return nil
	}

	var dates []time.Time
	for _, row := range table.rows {
		if row.Free() && window.Contains(row.Date) {
			dates = append(dates, row.Date)
		}
	}
	if len(dates) == 0 {
		return nil
	}

	a := &Availability{Dates: dates}
	a.Message = AvailabilityIntro + strings.Join(a.DateTexts(), ", ")
	return a
}
