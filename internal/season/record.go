package season

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the plain calendar date format used in messages and config
const DateLayout = "2006-01-02"

var (
	// ErrNotSaturday is returned when a record date is not a Saturday
	ErrNotSaturday = errors.New("date is not a Saturday")

	// ErrNegativeCount is returned for an event count below zero
	ErrNegativeCount = errors.New("event count is negative")
)

// Record is one Saturday cell of the venue calendar
type Record struct {
	Date       time.Time `json:"date_saturday"`
	EventCount int       `json:"event_count"`
}

// NewRecord builds a Record, normalising date to midnight UTC.
// The date must be a Saturday and the count must not be negative.
func NewRecord(date time.Time, eventCount int) (Record, error) {
	day := truncateDay(date)
	if day.Weekday() != time.Saturday {
		return Record{}, fmt.Errorf("%s: %w", day.Format(DateLayout), ErrNotSaturday)
	}
	if eventCount < 0 {
		return Record{}, fmt.Errorf("%s: %w (%d)", day.Format(DateLayout), ErrNegativeCount, eventCount)
	}
	return Record{Date: day, EventCount: eventCount}, nil
}

// Free reports whether nothing is booked on this Saturday
func (r Record) Free() bool {
	return r.EventCount == 0
}

// DateText returns the date as YYYY-MM-DD
func (r Record) DateText() string {
	return r.Date.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
