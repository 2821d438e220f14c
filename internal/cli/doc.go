// Package cli implements the command-line interface for saturday-alert.
//
// The cli package provides the Cobra-based CLI: the root command runs one availability
// check and exits with a status that scripts can test, and the watch subcommand repeats
// the check on a cron schedule. It loads configuration, opens the run log and wires the
// scraper, runner and notifier together.
package cli
