package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pfrederiksen/saturday-alert/internal/calendar"
	"github.com/pfrederiksen/saturday-alert/internal/config"
	"github.com/pfrederiksen/saturday-alert/internal/logger"
	"github.com/pfrederiksen/saturday-alert/internal/notifier"
	"github.com/pfrederiksen/saturday-alert/internal/runner"
	"github.com/pfrederiksen/saturday-alert/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitAvailable = 2
)

// ErrAvailabilityFound signals a successful check that found free Saturdays
var ErrAvailabilityFound = errors.New("availability found")

// options holds flag values shared by all commands
type options struct {
	configPath     string
	envFile        string
	format         string
	icsPath        string
	from           string
	to             string
	windowStart    string
	windowEnd      string
	onError        string
	logFile        string
	schedule       string
	dryRun         bool
	verbose        bool
	promptPassword bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "saturday-alert",
		Short: "Check a venue calendar for newly free Saturdays",
		Long: `A CLI tool that checks a venue's public event calendar for Saturdays with no
booked events inside an availability window, and emails an alert when one opens up.

Exit status is 0 when nothing is free, 2 when free Saturdays were found, 1 on error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default "+config.DefaultConfigFile()+")")
	flags.StringVar(&opts.envFile, "env-file", "", "Optional .env file with credentials")
	flags.StringVar(&opts.format, "format", "text", "Output format: text or json")
	flags.StringVar(&opts.icsPath, "ics", "", "Write free Saturdays to this .ics file")
	flags.StringVar(&opts.from, "from", "", "First month to fetch (YYYY-MM)")
	flags.StringVar(&opts.to, "to", "", "Last month to fetch (YYYY-MM)")
	flags.StringVar(&opts.windowStart, "window-start", "", "First day of the availability window (YYYY-MM-DD)")
	flags.StringVar(&opts.windowEnd, "window-end", "", "Last day of the availability window (YYYY-MM-DD)")
	flags.StringVar(&opts.onError, "on-error", "", "Failed month policy: skip or abort")
	flags.StringVar(&opts.logFile, "log-file", "", "Run log file, '-' for stderr")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the alert email instead of sending it")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output and debug logging")
	flags.BoolVar(&opts.promptPassword, "prompt-password", false, "Ask for the mail password on the terminal")

	cmd.AddCommand(newWatchCmd(opts))

	return cmd
}

// app is everything a check needs, built once per process
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	runner *runner.Runner
	close  func()
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, opts *options) error {
	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	a, err := setup(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.runner.Run(ctx)
	if result != nil {
		if werr := a.report(cmd.OutOrStdout(), result, format, opts); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	if result.Found() {
		return ErrAvailabilityFound
	}
	return nil
}

// report writes the run output and the optional calendar file
func (a *app) report(w io.Writer, result *runner.Result, format OutputFormat, opts *options) error {
	if opts.icsPath != "" && result.Found() {
		if err := calendar.WriteICS(opts.icsPath, a.cfg.Venue.Label, a.cfg.Venue.Endpoint, result.Availability, result.CheckedAt); err != nil {
			a.log.Error("writing calendar file failed", logger.Fields{"path": opts.icsPath}, err)
			return err
		}
		a.log.Info("calendar file written", logger.Fields{"path": opts.icsPath})
	}

	if err := WriteOutput(w, NewOutputResult(result), format, opts.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// setup loads configuration, opens the log and builds the runner
func setup(opts *options, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cfg, opts)

	if opts.promptPassword && cfg.Mail.Password == "" {
		password, err := config.PromptPassword(os.Stdin, stderr, "Mail password: ")
		if err != nil {
			return nil, fmt.Errorf("prompting for mail password: %w", err)
		}
		cfg.Mail.Password = password
	}

	if err := cfg.Validate(!opts.dryRun); err != nil {
		return nil, err
	}

	log, closeLog, err := openLogger(cfg.Log, opts.verbose, stderr)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)

	start, end, _ := cfg.FetchSpan()
	window, _ := cfg.WindowRange()

	var n notifier.Notifier
	if opts.dryRun {
		n = notifier.NewDryRunNotifier(stderr, cfg.Venue.Label, cfg.Mail.Username)
	} else {
		n = notifier.NewEmailNotifier(cfg.Mail, cfg.Venue.Label)
	}

	r := runner.New(scraper.New(cfg.ScraperOptions()), n, log, runner.Options{
		Start:   start,
		End:     end,
		Window:  window,
		OnError: cfg.Fetch.OnError,
	})

	return &app{cfg: cfg, log: log, runner: r, close: closeLog}, nil
}

// applyFlags overrides config values with any flags that were set
func applyFlags(cfg *config.Config, opts *options) {
	if opts.from != "" {
		cfg.Fetch.Start = opts.from
	}
	if opts.to != "" {
		cfg.Fetch.End = opts.to
	}
	if opts.windowStart != "" {
		cfg.Window.Start = opts.windowStart
	}
	if opts.windowEnd != "" {
		cfg.Window.End = opts.windowEnd
	}
	if opts.onError != "" {
		cfg.Fetch.OnError = config.OnError(strings.ToLower(opts.onError))
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.schedule != "" {
		cfg.Schedule = opts.schedule
	}
}

// openLogger opens the run log in append mode
func openLogger(lc config.LogConfig, verbose bool, stderr io.Writer) (*logger.Logger, func(), error) {
	level, err := logger.ParseLevel(lc.Level)
	if err != nil {
		return nil, nil, &config.Error{Key: "log.level", Reason: err.Error(), Err: config.ErrInvalidValue}
	}
	if verbose {
		level = logger.LevelDebug
	}

	if lc.File == "" || lc.File == "-" {
		return logger.New(level, stderr), func() {}, nil
	}

	f, err := logger.OpenFile(lc.File)
	if err != nil {
		return nil, nil, err
	}
	return logger.New(level, f), func() { f.Close() }, nil
}

// ExitCode maps a command error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrAvailabilityFound):
		return ExitAvailable
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	code := ExitCode(err)
	if code == ExitError {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
