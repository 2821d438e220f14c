package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

const eventsCountAttr = "data-events-count"

// dayClassPattern matches the class carrying the day of month, e.g. "simcal-day-14".
// Padding cells only carry "simcal-day" and "simcal-day-void".
var dayClassPattern = regexp.MustCompile(`^simcal-day-(\d{1,2})$`)

// MonthFragment pairs a month with the grid markup fetched for it
type MonthFragment struct {
	Month    season.MonthKey
	Fragment string
}

// ParseMonth extracts one record per Saturday from a month's calendar grid.
// A fragment with no in-month Saturday cells yields an empty slice.
func ParseMonth(fragment string, key season.MonthKey) ([]season.Record, error) {
	// The grid arrives as bare <tbody>/<tr> rows, which an HTML5 parser drops
	// unless they sit inside a table.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<table>" + fragment + "</table>"))
	if err != nil {
		return nil, &ParseError{Month: key, Reason: "invalid HTML", Err: err}
	}

	records := make([]season.Record, 0, 5)
	var parseErr error

	doc.Find("tr.simcal-week").EachWithBreak(func(_ int, week *goquery.Selection) bool {
		week.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			rec, ok, err := parseCell(cell, key)
			if err != nil {
				parseErr = err
				return false
			}
			if ok {
				records = append(records, rec)
			}
			return true
		})
		return parseErr == nil
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return records, nil
}

// ParseMonths parses several months in one pass, preserving their order
func ParseMonths(fragments []MonthFragment) ([]season.Record, error) {
	all := make([]season.Record, 0, len(fragments)*5)
	for _, f := range fragments {
		records, err := ParseMonth(f.Fragment, f.Month)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// parseCell returns the Saturday record for a grid cell.
// ok is false for padding cells and for days that are not Saturdays.
func parseCell(cell *goquery.Selection, key season.MonthKey) (season.Record, bool, error) {
	day, found := dayOfMonth(cell)
	if !found {
		return season.Record{}, false, nil
	}

	date := time.Date(key.Year, key.Month, day, 0, 0, 0, 0, time.UTC)
	if day < 1 || !key.Contains(date) {
		return season.Record{}, false, &ParseError{
			Month:  key,
			Day:    day,
			Reason: fmt.Sprintf("day %d does not exist in %s", day, key.Label()),
		}
	}

	if date.Weekday() != time.Saturday {
		return season.Record{}, false, nil
	}

	raw, exists := cell.Attr(eventsCountAttr)
	if !exists {
		return season.Record{}, false, &ParseError{Month: key, Day: day, Reason: "missing " + eventsCountAttr}
	}

	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return season.Record{}, false, &ParseError{
			Month:  key,
			Day:    day,
			Reason: fmt.Sprintf("%s %q is not an integer", eventsCountAttr, raw),
			Err:    err,
		}
	}

	rec, err := season.NewRecord(date, count)
	if err != nil {
		return season.Record{}, false, &ParseError{Month: key, Day: day, Reason: err.Error(), Err: err}
	}

	return rec, true, nil
}

// dayOfMonth reads the day number from the cell's simcal-day-N class
func dayOfMonth(cell *goquery.Selection) (int, bool) {
	class, _ := cell.Attr("class")
	for _, name := range strings.Fields(class) {
		if m := dayClassPattern.FindStringSubmatch(name); m != nil {
			day, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return day, true
		}
	}
	return 0, false
}
