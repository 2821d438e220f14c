package scraper

import (
	"fmt"

	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// maxErrorBody caps how much of a failed response is kept for diagnosis
const maxErrorBody = 512

// FetchError reports a failed request for one calendar month
type FetchError struct {
	Month      season.MonthKey
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code %d: %s", e.Month, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetching %s: %v", e.Month, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports markup that is missing the expected structure
type ParseError struct {
	Month  season.MonthKey
	Day    int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Day > 0 {
		return fmt.Sprintf("parsing %s day %d: %s", e.Month, e.Day, e.Reason)
	}
	return fmt.Sprintf("parsing %s: %s", e.Month, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
