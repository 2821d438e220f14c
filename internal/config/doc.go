// Package config loads and validates saturday-alert settings.
//
// Settings come from a YAML file, an optional .env file and the process
// environment, in increasing order of precedence. Credentials are grouped in
// two sections, one for the mail relay and one for the browser identity
// presented to the venue calendar. The loaded Config is passed explicitly to
// the scraper and notifier; nothing reads configuration implicitly.
package config
