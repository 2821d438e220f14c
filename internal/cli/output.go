package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/runner"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// OutputRow is one Saturday of the fetched table
type OutputRow struct {
	Month      string `json:"month"`
	Date       string `json:"date_saturday"`
	EventCount int    `json:"event_count"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt      time.Time             `json:"checked_at"`
	WindowStart    string                `json:"window_start"`
	WindowEnd      string                `json:"window_end"`
	MonthsFetched  []string              `json:"months_fetched"`
	MonthsFailed   []runner.MonthFailure `json:"months_failed,omitempty"`
	FreeDates      []string              `json:"free_dates"`
	Message        string                `json:"message,omitempty"`
	Notified       bool                  `json:"notified"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Saturdays      []OutputRow           `json:"saturdays,omitempty"`
}

// NewOutputResult converts a run result for display
func NewOutputResult(r *runner.Result) *OutputResult {
	out := &OutputResult{
		CheckedAt:      r.CheckedAt,
		WindowStart:    r.Window.Start.Format(season.DateLayout),
		WindowEnd:      r.Window.End.Format(season.DateLayout),
		MonthsFetched:  r.Months,
		MonthsFailed:   r.Failed,
		FreeDates:      []string{},
		Notified:       r.Notified,
		ElapsedSeconds: r.Elapsed.Seconds(),
	}

	if r.Availability != nil {
		out.FreeDates = r.Availability.DateTexts()
		out.Message = r.Availability.Message
	}

	if r.Table != nil {
		for _, row := range r.Table.Rows() {
			out.Saturdays = append(out.Saturdays, OutputRow{
				Month:      row.Month,
				Date:       row.DateText(),
				EventCount: row.EventCount,
			})
		}
	}

	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if verbose {
		fmt.Fprintf(w, "Checked %d months, window %s to %s\n", len(result.MonthsFetched), result.WindowStart, result.WindowEnd)
		for _, row := range result.Saturdays {
			fmt.Fprintf(w, "  %-15s %s  %d\n", row.Month, row.Date, row.EventCount)
		}
		fmt.Fprintln(w)
	}

	for _, f := range result.MonthsFailed {
		fmt.Fprintf(w, "SKIPPED %s: %s\n", f.Month, f.Error)
	}

	if len(result.FreeDates) == 0 {
		fmt.Fprintf(w, "No free Saturdays between %s and %s.\n", result.WindowStart, result.WindowEnd)
		return nil
	}

	for _, date := range result.FreeDates {
		fmt.Fprintf(w, "FREE: %s\n", date)
	}
	fmt.Fprintf(w, "\nTotal: %d free Saturdays\n", len(result.FreeDates))
	if result.Notified {
		fmt.Fprintln(w, "Alert email sent.")
	}

	return nil
}
