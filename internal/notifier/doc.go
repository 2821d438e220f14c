// Package notifier delivers free-Saturday alerts.
//
// An alert is a single email to the configured mailbox: the availability message
// followed by a table of every Saturday fetched in the run. The email is sent once
// through an authenticated SMTP relay over STARTTLS; a failed send is reported and
// not retried. A dry-run notifier prints the same message instead of sending it.
package notifier
