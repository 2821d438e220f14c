package notifier

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/config"
	"github.com/pfrederiksen/saturday-alert/internal/season"
	"github.com/wneessen/go-mail"
)

// MailError reports a failure composing or sending the alert.
// Stage is one of compose, client, connect, send or close.
type MailError struct {
	Stage string
	Err   error
}

func (e *MailError) Error() string {
	return fmt.Sprintf("sending mail (%s): %v", e.Stage, e.Err)
}

func (e *MailError) Unwrap() error {
	return e.Err
}

// sendFunc delivers one composed message
type sendFunc func(ctx context.Context, msg *mail.Msg) error

// EmailNotifier mails alerts to the configured account through its relay
type EmailNotifier struct {
	mail    config.MailConfig
	label   string
	now     func() time.Time
	send    sendFunc
	tlsConf *tls.Config
}

// NewEmailNotifier creates a notifier sending as, and to, mc.Username
func NewEmailNotifier(mc config.MailConfig, venueLabel string) *EmailNotifier {
	n := &EmailNotifier{
		mail:  mc,
		label: venueLabel,
		now:   time.Now,
		tlsConf: &tls.Config{
			ServerName: mc.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
	n.send = n.deliver
	return n
}

// Notify composes and sends one alert email
func (n *EmailNotifier) Notify(ctx context.Context, table *season.Table, availability *season.Availability) error {
	composed, err := Compose(n.label, n.mail.Username, table, availability, n.now())
	if err != nil {
		return &MailError{Stage: "compose", Err: err}
	}

	msg, err := composed.Msg()
	if err != nil {
		return &MailError{Stage: "compose", Err: err}
	}

	return n.send(ctx, msg)
}

// deliver runs one SMTP session. The relay must offer STARTTLS before
// credentials are sent.
func (n *EmailNotifier) deliver(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(n.mail.Host,
		mail.WithPort(n.mail.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTLSConfig(n.tlsConf),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.mail.Username),
		mail.WithPassword(n.mail.Password),
	)
	if err != nil {
		return &MailError{Stage: "client", Err: err}
	}

	if err := client.DialWithContext(ctx); err != nil {
		return &MailError{Stage: "connect", Err: err}
	}

	if err := client.Send(msg); err != nil {
		client.Close() //nolint:errcheck
		return &MailError{Stage: "send", Err: err}
	}

	if err := client.Close(); err != nil {
		return &MailError{Stage: "close", Err: err}
	}
	return nil
}
