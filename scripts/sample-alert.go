package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/calendar"
	"github.com/pfrederiksen/saturday-alert/internal/notifier"
	"github.com/pfrederiksen/saturday-alert/internal/scraper"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

func main() {
	// Parse the saved May 2024 grid instead of hitting the venue
	data, err := os.ReadFile("testdata/fixtures/may_2024_grid.html")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading fixture: %v\n", err)
		os.Exit(1)
	}

	key := season.MonthKey{Year: 2024, Month: time.May}
	records, err := scraper.ParseMonth(string(data), key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fixture: %v\n", err)
		os.Exit(1)
	}

	table := season.NewTable()
	if err := table.AppendMonth(key, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error building table: %v\n", err)
		os.Exit(1)
	}

	window, _ := season.ParseDateRange("2024-05-01", "2024-10-31")
	availability := season.CheckAvailability(table, window)
	if availability == nil {
		fmt.Println("No free Saturdays in the fixture")
		return
	}

	if err := notifier.NewDryRunNotifier(os.Stdout, "Wadsworth 2024", "alerts@example.com").
		Notify(context.Background(), table, availability); err != nil {
		fmt.Fprintf(os.Stderr, "Error composing email: %v\n", err)
		os.Exit(1)
	}

	filename := "sample-saturday-alert.ics"
	if err := calendar.WriteICS(filename, "Wadsworth 2024", scraper.CalendarURL, availability, time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nGenerated calendar file: %s\n", filename)
	fmt.Println("Open it with your calendar app to see the free Saturdays.")
}
