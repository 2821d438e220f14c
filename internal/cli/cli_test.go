package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/config"
	"github.com/pfrederiksen/saturday-alert/internal/runner"
	"github.com/pfrederiksen/saturday-alert/internal/scraper/scrapertest"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"found", ErrAvailabilityFound, ExitAvailable},
		{"wrapped found", fmt.Errorf("run: %w", ErrAvailabilityFound), ExitAvailable},
		{"other", errors.New("boom"), ExitError},
		{"no months", runner.ErrNoMonths, ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"yaml", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.NewConfig()
	applyFlags(cfg, &options{
		from:        "2025-01",
		to:          "2025-06",
		windowStart: "2025-03-01",
		windowEnd:   "2025-05-31",
		onError:     "ABORT",
		logFile:     "-",
		schedule:    "@daily",
	})

	if cfg.Fetch.Start != "2025-01" || cfg.Fetch.End != "2025-06" {
		t.Errorf("fetch span = %s..%s", cfg.Fetch.Start, cfg.Fetch.End)
	}
	if cfg.Window.Start != "2025-03-01" || cfg.Window.End != "2025-05-31" {
		t.Errorf("window = %s..%s", cfg.Window.Start, cfg.Window.End)
	}
	if cfg.Fetch.OnError != config.OnErrorAbort {
		t.Errorf("on_error = %q, want abort", cfg.Fetch.OnError)
	}
	if cfg.Log.File != "-" {
		t.Errorf("log.file = %q", cfg.Log.File)
	}
	if cfg.Schedule != "@daily" {
		t.Errorf("schedule = %q", cfg.Schedule)
	}

	untouched := config.NewConfig()
	applyFlags(untouched, &options{})
	if *untouched != *config.NewConfig() {
		t.Error("empty flags changed the config")
	}
}

func testResult(t *testing.T, free bool) *runner.Result {
	t.Helper()

	key := season.MonthKey{Year: 2024, Month: time.May}
	var records []season.Record
	for _, day := range []int{4, 11, 18, 25} {
		count := 1
		if free && day == 18 {
			count = 0
		}
		r, err := season.NewRecord(time.Date(2024, time.May, day, 0, 0, 0, 0, time.UTC), count)
		if err != nil {
			t.Fatal(err)
		}
		records = append(records, r)
	}
	table := season.NewTable()
	if err := table.AppendMonth(key, records); err != nil {
		t.Fatal(err)
	}

	window, err := season.ParseDateRange("2024-05-01", "2024-10-31")
	if err != nil {
		t.Fatal(err)
	}

	return &runner.Result{
		CheckedAt:    time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC),
		Window:       window,
		Months:       []string{key.String()},
		Failed:       []runner.MonthFailure{{Month: "2024-06", Error: "status 500"}},
		Table:        table,
		Availability: season.CheckAvailability(table, window),
		Notified:     free,
		Elapsed:      1500 * time.Millisecond,
	}
}

func TestWriteOutput_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, NewOutputResult(testResult(t, true)), FormatText, true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Checked 1 months, window 2024-05-01 to 2024-10-31",
		"May 2024",
		"SKIPPED 2024-06: status 500",
		"FREE: 2024-05-18",
		"Total: 1 free Saturdays",
		"Alert email sent.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteOutput_TextNoneFree(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, NewOutputResult(testResult(t, false)), FormatText, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "No free Saturdays between 2024-05-01 and 2024-10-31.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "May 2024") {
		t.Error("rows printed without verbose")
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, NewOutputResult(testResult(t, true)), FormatJSON, false); err != nil {
		t.Fatal(err)
	}

	var got OutputResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got.FreeDates) != 1 || got.FreeDates[0] != "2024-05-18" {
		t.Errorf("free_dates = %v", got.FreeDates)
	}
	if got.Message != "The following dates have become available: 2024-05-18" {
		t.Errorf("message = %q", got.Message)
	}
	if len(got.Saturdays) != 4 || got.Saturdays[2].Month != "May 2024" {
		t.Errorf("saturdays = %+v", got.Saturdays)
	}
	if got.ElapsedSeconds != 1.5 {
		t.Errorf("elapsed_seconds = %v", got.ElapsedSeconds)
	}
}

func TestWriteOutput_JSONNoneFree(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, NewOutputResult(testResult(t, false)), FormatJSON, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"free_dates": []`) {
		t.Errorf("free_dates should be an empty list:\n%s", buf.String())
	}
}

func writeConfig(t *testing.T, endpoint string) string {
	t.Helper()
	for _, key := range []string{
		config.EnvMailUsername, config.EnvMailPassword, config.EnvMailHost,
		config.EnvMailPort, config.EnvUserAgent,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	content := fmt.Sprintf(`
mail:
  username: alerts@example.com
browser:
  user_agent: Mozilla/5.0 (test)
venue:
  label: Test Venue
  endpoint: %s
fetch:
  start: "2024-04"
  end: "2024-06"
  timeout: 5s
window:
  start: "2024-05-01"
  end: "2024-05-31"
log:
  file: "-"
`, endpoint)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCmd_DryRunFindsSaturday(t *testing.T) {
	srv := scrapertest.NewServer(func(d time.Time) int {
		if d.Equal(time.Date(2024, time.May, 18, 0, 0, 0, 0, time.UTC)) {
			return 0
		}
		return 1
	})
	defer srv.Close()

	icsPath := filepath.Join(t.TempDir(), "free.ics")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", writeConfig(t, srv.URL), "--dry-run", "--format", "json", "--ics", icsPath})

	err := cmd.Execute()
	if !errors.Is(err, ErrAvailabilityFound) {
		t.Fatalf("Execute() error = %v, want ErrAvailabilityFound", err)
	}

	var got OutputResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if len(got.FreeDates) != 1 || got.FreeDates[0] != "2024-05-18" {
		t.Errorf("free_dates = %v", got.FreeDates)
	}
	if !got.Notified {
		t.Error("dry run notifier should count as notified")
	}
	if len(got.MonthsFetched) != 3 {
		t.Errorf("months_fetched = %v", got.MonthsFetched)
	}

	if !strings.Contains(stderr.String(), "--- Email (dry run) ---") {
		t.Errorf("dry run email not printed to stderr:\n%s", stderr.String())
	}
	if len(srv.Requests()) != 3 {
		t.Errorf("endpoint saw %d requests, want 3", len(srv.Requests()))
	}

	data, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("ics file not written: %v", err)
	}
	if !strings.Contains(string(data), "20240518") {
		t.Errorf("ics missing the free date:\n%s", data)
	}
}

func TestRootCmd_NothingFree(t *testing.T) {
	srv := scrapertest.NewServer(func(time.Time) int { return 2 })
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--config", writeConfig(t, srv.URL), "--dry-run"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "No free Saturdays between 2024-05-01 and 2024-05-31.") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
	if strings.Contains(stderr.String(), "--- Email (dry run) ---") {
		t.Error("no email expected when nothing is free")
	}
}

func TestRootCmd_MissingMailPassword(t *testing.T) {
	srv := scrapertest.NewServer(nil)
	defer srv.Close()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", writeConfig(t, srv.URL)})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrMissingKey) {
		t.Fatalf("Execute() error = %v, want ErrMissingKey", err)
	}
	if ExitCode(err) != ExitError {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitError)
	}
	if len(srv.Requests()) != 0 {
		t.Error("endpoint contacted before config was valid")
	}
}

func TestRootCmd_InvalidFormat(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml"})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Fatalf("Execute() error = %v, want invalid format", err)
	}
}

func TestWatchCmd_InvalidSchedule(t *testing.T) {
	srv := scrapertest.NewServer(nil)
	defer srv.Close()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "--config", writeConfig(t, srv.URL), "--dry-run", "--run-now=false", "--schedule", "not a schedule"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("Execute() error = %v, want ErrInvalidValue", err)
	}
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 3, "now", "x", "dangling"})
	if fields["entry"] != "3" || fields["now"] != "x" {
		t.Errorf("kvFields = %v", fields)
	}
	if _, ok := fields["dangling"]; ok {
		t.Error("unpaired key should be dropped")
	}
	if kvFields(nil) != nil {
		t.Error("kvFields(nil) should be nil")
	}
}
