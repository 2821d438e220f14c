package notifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// DryRunNotifier prints what would be emailed without sending anything
type DryRunNotifier struct {
	out   io.Writer
	label string
	from  string
	now   func() time.Time
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer, venueLabel, address string) *DryRunNotifier {
	return &DryRunNotifier{
		out:   out,
		label: venueLabel,
		from:  address,
		now:   time.Now,
	}
}

// Notify prints the email that would be sent
func (n *DryRunNotifier) Notify(_ context.Context, table *season.Table, availability *season.Availability) error {
	msg, err := Compose(n.label, n.from, table, availability, n.now())
	if err != nil {
		return err
	}

	fmt.Fprintln(n.out, "--- Email (dry run) ---")
	fmt.Fprintln(n.out, msg.Text())
	return nil
}
