package notifier

import (
	"context"

	"github.com/pfrederiksen/saturday-alert/internal/season"
)

// Notifier defines the interface for delivering availability alerts
type Notifier interface {
	// Notify sends one alert for the availability found in table
	Notify(ctx context.Context, table *season.Table, availability *season.Availability) error
}
