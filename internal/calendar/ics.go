// Package calendar exports free Saturdays as an iCalendar (.ics) file.
package calendar

import (
	"fmt"
	"os"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

const productID = "-//saturday-alert//saturday-alert//EN"

// GenerateICS builds a calendar with one all-day event per free Saturday
func GenerateICS(venueLabel, venueURL string, availability *season.Availability, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	if availability == nil {
		return cal.Serialize()
	}

	for _, date := range availability.Dates {
		day := date.Format(season.DateLayout)

		evt := cal.AddEvent(fmt.Sprintf("%s@saturday-alert", date.Format("20060102")))
		evt.SetDtStampTime(now.UTC())
		evt.SetAllDayStartAt(date)
		evt.SetAllDayEndAt(date.AddDate(0, 0, 1))
		evt.SetSummary(fmt.Sprintf("%s - Saturday available", venueLabel))
		evt.SetDescription(fmt.Sprintf("No events were booked on %s when checked at %s.", day, now.UTC().Format(time.RFC3339)))
		if venueURL != "" {
			evt.SetURL(venueURL)
		}
	}

	return cal.Serialize()
}

// WriteICS writes the calendar for availability to path
func WriteICS(path, venueLabel, venueURL string, availability *season.Availability, now time.Time) error {
	data := GenerateICS(venueLabel, venueURL, availability, now)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil { //nolint:gosec // calendar files are meant to be shared
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
