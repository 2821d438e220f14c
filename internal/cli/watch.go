package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/saturday-alert/internal/config"
	"github.com/pfrederiksen/saturday-alert/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Repeat the check on a cron schedule",
		Long: `Runs the availability check on a schedule until interrupted. Each run is
independent: nothing is remembered between runs, so an alert is sent every time
free Saturdays are found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, runNow)
		},
	}

	cmd.Flags().StringVar(&opts.schedule, "schedule", "", `Cron spec, e.g. "0 8 * * *" or "@every 6h" (default from config)`)
	cmd.Flags().BoolVar(&runNow, "run-now", true, "Run once immediately before waiting for the schedule")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *options, runNow bool) error {
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

	job := func() {
		result, err := a.runner.Run(ctx)
		if err != nil {
			a.log.Error("scheduled check failed", nil, err)
		}
		if result != nil {
			if werr := a.report(cmd.OutOrStdout(), result, format, opts); werr != nil {
				a.log.Error("reporting scheduled check failed", nil, werr)
			}
		}
	}

	c := cron.New(
		cron.WithLogger(cronLogger{log: a.log}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: a.log})),
	)
	if _, err := c.AddFunc(a.cfg.Schedule, job); err != nil {
		return &config.Error{Key: "schedule", Reason: fmt.Sprintf("%q: %v", a.cfg.Schedule, err), Err: config.ErrInvalidValue}
	}

	a.log.Info("watching calendar", logger.Fields{"schedule": a.cfg.Schedule})

	if runNow {
		job()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	a.log.Info("watch stopped", nil)
	return nil
}

// cronLogger adapts the run log to cron's logger interface
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = fmt.Sprint(keysAndValues[i+1])
	}
	return fields
}
