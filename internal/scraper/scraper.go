package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/sling"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

const (
	CalendarURL    = "https://www.wadsworthmansion.com/wp-admin/admin-ajax.php"
	DrawGridAction = "simcal_default_calendar_draw_grid"
	CalendarID     = 28897
	Timeout        = 30 * time.Second
)

// Options configures a Scraper. Zero fields fall back to the package defaults,
// except UserAgent which has no default and must be supplied.
type Options struct {
	URL        string
	Action     string
	CalendarID int
	UserAgent  string
	Timeout    time.Duration
	Client     *http.Client
}

// Scraper handles fetching and parsing the venue calendar
type Scraper struct {
	client     *http.Client
	url        string
	action     string
	calendarID int
	userAgent  string
}

// drawGridForm is the form body of a calendar month request
type drawGridForm struct {
	Action string `url:"action"`
	Month  int    `url:"month"`
	Year   int    `url:"year"`
	ID     int    `url:"id"`
}

// drawGridResponse is the JSON envelope returned by admin-ajax
type drawGridResponse struct {
	Success bool             `json:"success"`
	Data    *json.RawMessage `json:"data"`
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	s := &Scraper{
		client:     opts.Client,
		url:        opts.URL,
		action:     opts.Action,
		calendarID: opts.CalendarID,
		userAgent:  opts.UserAgent,
	}

	if s.client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = Timeout
		}
		s.client = &http.Client{Timeout: timeout}
	}
	if s.url == "" {
		s.url = CalendarURL
	}
	if s.action == "" {
		s.action = DrawGridAction
	}
	if s.calendarID == 0 {
		s.calendarID = CalendarID
	}

	return s
}

// FetchMonth requests one month of the calendar grid and returns its HTML fragment
func (s *Scraper) FetchMonth(ctx context.Context, key season.MonthKey) (string, error) {
	req, err := sling.New().
		Post(s.url).
		Set("User-Agent", s.userAgent).
		Set("X-Requested-With", "XMLHttpRequest").
		BodyForm(&drawGridForm{
			Action: s.action,
			Month:  int(key.Month),
			Year:   key.Year,
			ID:     s.calendarID,
		}).
		Request()
	if err != nil {
		return "", &FetchError{Month: key, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := s.client.Do(req.WithContext(ctx))
	if err != nil {
		return "", &FetchError{Month: key, Err: fmt.Errorf("fetching calendar: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Month: key, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{
			Month:      key,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	return decodeFragment(key, body)
}

// decodeFragment extracts the HTML string from the admin-ajax envelope
func decodeFragment(key season.MonthKey, body []byte) (string, error) {
	var envelope drawGridResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &FetchError{Month: key, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if envelope.Data == nil {
		return "", &FetchError{Month: key, Err: errors.New("response has no data field")}
	}

	var fragment string
	if err := json.Unmarshal(*envelope.Data, &fragment); err != nil {
		return "", &FetchError{Month: key, Err: fmt.Errorf("data field is not a string: %w", err)}
	}

	return fragment, nil
}

// ScrapeMonth fetches and parses one month of Saturdays
func (s *Scraper) ScrapeMonth(ctx context.Context, key season.MonthKey) ([]season.Record, error) {
	fragment, err := s.FetchMonth(ctx, key)
	if err != nil {
		return nil, err
	}
	return ParseMonth(fragment, key)
}
