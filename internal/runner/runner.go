// Package runner performs one availability check: it fetches every month of the
// fetch span in order, builds the Saturday table, checks the availability window
// and sends an alert when free Saturdays are found.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/config"
	"github.com/pfrederiksen/saturday-alert/internal/logger"
	"github.com/pfrederiksen/saturday-alert/internal/notifier"
	"github.com/pfrederiksen/saturday-alert/internal/scraper"
	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// ErrNoMonths is returned when every month of the fetch span failed
var ErrNoMonths = errors.New("no calendar months could be fetched")

// MonthScraper fetches and parses one calendar month
type MonthScraper interface {
	ScrapeMonth(ctx context.Context, key season.MonthKey) ([]season.Record, error)
}

// Options controls a run
type Options struct {
	Start   season.MonthKey
	End     season.MonthKey
	Window  season.DateRange
	OnError config.OnError
}

// MonthFailure records a month left out of the table
type MonthFailure struct {
	Month string `json:"month"`
	Error string `json:"error"`
}

// Result is the outcome of one run
type Result struct {
	CheckedAt    time.Time
	Window       season.DateRange
	Months       []string
	Failed       []MonthFailure
	Table        *season.Table
	Availability *season.Availability
	Notified     bool
	Elapsed      time.Duration
}

// Found reports whether any free Saturday was found
func (r *Result) Found() bool {
	return r.Availability != nil
}

// Runner ties the scraper, availability check and notifier together
type Runner struct {
	scraper  MonthScraper
	notifier notifier.Notifier
	log      *logger.Logger
	opts     Options
	now      func() time.Time
}

// New creates a Runner. A nil notifier only reports availability.
func New(s MonthScraper, n notifier.Notifier, log *logger.Logger, opts Options) *Runner {
	if log == nil {
		log = logger.Default()
	}
	if opts.OnError == "" {
		opts.OnError = config.OnErrorSkip
	}
	return &Runner{
		scraper:  s,
		notifier: n,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
}

// Run performs one sequential check
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	begin := r.now()
	metrics := logger.NewMetrics()

	result := &Result{
		CheckedAt: begin.UTC(),
		Window:    r.opts.Window,
		Months:    make([]string, 0, 12),
		Table:     season.NewTable(),
	}

	r.log.Info("session started", logger.Fields{
		"fetch_start": r.opts.Start.String(),
		"fetch_end":   r.opts.End.String(),
		"on_error":    string(r.opts.OnError),
	})

	if err := r.fetchSpan(ctx, result, metrics); err != nil {
		r.finish(result, metrics, begin)
		return result, err
	}

	r.log.Info("checking for availability", logger.Fields{
		"window_start": r.opts.Window.Start.Format(season.DateLayout),
		"window_end":   r.opts.Window.End.Format(season.DateLayout),
		"saturdays":    result.Table.Len(),
	})

	result.Availability = season.CheckAvailability(result.Table, r.opts.Window)
	if !result.Found() {
		r.log.Info("no availabilities found between specified dates", nil)
		r.finish(result, metrics, begin)
		return result, nil
	}

	metrics.SetGauge("saturdays.free", float64(len(result.Availability.Dates)))
	r.log.Info("new availabilities found", logger.Fields{
		"dates": result.Availability.DateTexts(),
	})

	if r.notifier != nil {
		if err := r.notifier.Notify(ctx, result.Table, result.Availability); err != nil {
			r.log.Error("sending alert failed", nil, err)
			r.finish(result, metrics, begin)
			return result, fmt.Errorf("sending alert: %w", err)
		}
		result.Notified = true
		r.log.Info("alert sent", nil)
	}

	r.finish(result, metrics, begin)
	return result, nil
}

// fetchSpan fills the table month by month, applying the failure policy
func (r *Runner) fetchSpan(ctx context.Context, result *Result, metrics *logger.Metrics) error {
	r.log.Info("getting calendar information", nil)

	for key := range season.MonthRange(r.opts.Start, r.opts.End) {
		if err := ctx.Err(); err != nil {
			return err
		}

		started := r.now()
		records, err := r.scraper.ScrapeMonth(ctx, key)
		if err == nil {
			err = result.Table.AppendMonth(key, records)
		}
		metrics.RecordTiming("fetch.month", r.now().Sub(started))

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			metrics.IncrCounter("months.failed")
			if r.opts.OnError == config.OnErrorAbort {
				r.log.Error("month failed, aborting", failureFields(key, err), err)
				return fmt.Errorf("month %s: %w", key, err)
			}
			r.log.Warn("month failed, skipping", failureFields(key, err))
			result.Failed = append(result.Failed, MonthFailure{Month: key.String(), Error: err.Error()})
			continue
		}

		metrics.IncrCounter("months.fetched")
		metrics.AddCounter("saturdays.parsed", int64(len(records)))
		result.Months = append(result.Months, key.String())
		r.log.Debug("month fetched", logger.Fields{"month": key.String(), "saturdays": len(records)})
	}

	if len(result.Months) == 0 && len(result.Failed) > 0 {
		return ErrNoMonths
	}
	return nil
}

func (r *Runner) finish(result *Result, metrics *logger.Metrics, begin time.Time) {
	result.Elapsed = r.now().Sub(begin)
	metrics.RecordTiming("run.total", result.Elapsed)

	r.log.Info("script completed", logger.Fields{
		"elapsed_seconds": fmt.Sprintf("%0.6f", result.Elapsed.Seconds()),
		"metrics":         metrics.GetSnapshot(),
	})
}

// failureFields describes a failed month for the log
func failureFields(key season.MonthKey, err error) logger.Fields {
	fields := logger.Fields{"month": key.String()}

	var fetchErr *scraper.FetchError
	var parseErr *scraper.ParseError
	switch {
	case errors.As(err, &fetchErr):
		fields["kind"] = "fetch"
		if fetchErr.StatusCode != 0 {
			fields["status"] = fetchErr.StatusCode
			fields["body"] = fetchErr.Body
		}
	case errors.As(err, &parseErr):
		fields["kind"] = "parse"
		if parseErr.Day > 0 {
			fields["day"] = parseErr.Day
		}
	case errors.Is(err, season.ErrDuplicateDate), errors.Is(err, season.ErrOutsideMonth):
		fields["kind"] = "table"
	default:
		fields["kind"] = "unknown"
	}
	fields["reason"] = err.Error()
	return fields
}
