package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pfrederiksen/saturday-alert/internal/scraper"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

const (
	// AppName is used for XDG directory paths
	AppName = "saturday-alert"

	DefaultMailHost    = "smtp.gmail.com"
	DefaultMailPort    = 587
	DefaultVenueLabel  = "Wadsworth 2024"
	DefaultFetchStart  = "2024-01"
	DefaultFetchEnd    = "2024-12"
	DefaultWindowStart = "2024-05-01"
	DefaultWindowEnd   = "2024-10-31"
	DefaultLogLevel    = "INFO"
	DefaultSchedule    = "@every 1h"
)

// OnError selects what happens when one month cannot be fetched or parsed
type OnError string

const (
	// OnErrorSkip logs the failed month and continues with the rest
	OnErrorSkip OnError = "skip"
	// OnErrorAbort stops the run at the first failed month
	OnErrorAbort OnError = "abort"
)

// MailConfig holds the mail relay credentials and address
type MailConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}

// BrowserConfig holds the identity presented to the calendar endpoint
type BrowserConfig struct {
	UserAgent string `yaml:"user_agent"`
}

// VenueConfig identifies the calendar being watched
type VenueConfig struct {
	Label      string `yaml:"label"`
	Endpoint   string `yaml:"endpoint"`
	CalendarID int    `yaml:"calendar_id"`
	Action     string `yaml:"action"`
}

// FetchConfig is the span of months requested each run
type FetchConfig struct {
	Start   string        `yaml:"start"`
	End     string        `yaml:"end"`
	Timeout time.Duration `yaml:"timeout"`
	OnError OnError       `yaml:"on_error"`
}

// WindowConfig is the inclusive availability window
type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LogConfig controls the run log. File "-" logs to stderr.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Config holds all saturday-alert settings
type Config struct {
	Mail     MailConfig    `yaml:"mail"`
	Browser  BrowserConfig `yaml:"browser"`
	Venue    VenueConfig   `yaml:"venue"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Window   WindowConfig  `yaml:"window"`
	Log      LogConfig     `yaml:"log"`
	Schedule string        `yaml:"schedule"`
}

// NewConfig returns a Config populated with defaults
func NewConfig() *Config {
	return &Config{
		Mail: MailConfig{
			Host: DefaultMailHost,
			Port: DefaultMailPort,
		},
		Venue: VenueConfig{
			Label:      DefaultVenueLabel,
			Endpoint:   scraper.CalendarURL,
			CalendarID: scraper.CalendarID,
			Action:     scraper.DrawGridAction,
		},
		Fetch: FetchConfig{
			Start:   DefaultFetchStart,
			End:     DefaultFetchEnd,
			Timeout: scraper.Timeout,
			OnError: OnErrorSkip,
		},
		Window: WindowConfig{
			Start: DefaultWindowStart,
			End:   DefaultWindowEnd,
		},
		Log: LogConfig{
			File:  DefaultLogFile(),
			Level: DefaultLogLevel,
		},
		Schedule: DefaultSchedule,
	}
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/saturday-alert/config.yaml
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultLogFile returns $XDG_STATE_HOME/saturday-alert/saturday-alert.log
func DefaultLogFile() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Validate checks the settings needed for a run.
// Mail credentials are only required when requireMail is set.
func (c *Config) Validate(requireMail bool) error {
	if c.Browser.UserAgent == "" {
		return missing("browser.user_agent")
	}

	if requireMail {
		if c.Mail.Username == "" {
			return missing("mail.username")
		}
		if c.Mail.Password == "" {
			return missing("mail.password")
		}
		if c.Mail.Host == "" {
			return missing("mail.host")
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return invalid("mail.port", "must be between 1 and 65535")
		}
	}

	start, end, err := c.FetchSpan()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return invalid("fetch.end", "is before fetch.start")
	}

	if _, err := c.WindowRange(); err != nil {
		return err
	}

	if c.Fetch.Timeout <= 0 {
		return invalid("fetch.timeout", "must be positive")
	}

	switch c.Fetch.OnError {
	case OnErrorSkip, OnErrorAbort:
	default:
		return invalid("fetch.on_error", "must be skip or abort")
	}

	return nil
}

// FetchSpan parses the first and last month to fetch
func (c *Config) FetchSpan() (season.MonthKey, season.MonthKey, error) {
	start, err := season.ParseMonthKey(c.Fetch.Start)
	if err != nil {
		return season.MonthKey{}, season.MonthKey{}, invalid("fetch.start", err.Error())
	}
	end, err := season.ParseMonthKey(c.Fetch.End)
	if err != nil {
		return season.MonthKey{}, season.MonthKey{}, invalid("fetch.end", err.Error())
	}
	return start, end, nil
}

// WindowRange parses the availability window
func (c *Config) WindowRange() (season.DateRange, error) {
	r, err := season.ParseDateRange(c.Window.Start, c.Window.End)
	if err != nil {
		return season.DateRange{}, invalid("window", err.Error())
	}
	return r, nil
}

// ScraperOptions builds the scraper settings from this config
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		URL:        c.Venue.Endpoint,
		Action:     c.Venue.Action,
		CalendarID: c.Venue.CalendarID,
		UserAgent:  c.Browser.UserAgent,
		Timeout:    c.Fetch.Timeout,
	}
}
