package notify

import (
	"context"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/logging"
	"github.com/donnex/sendnotification/internal/metrics"
)

// Dispatcher tries adapters one at a time in configured order and stops at
// the first one that handles the notification. This is sequential fallback,
// not fan-out: exactly one service is expected to deliver per send.
type Dispatcher struct {
	adapters []Adapter
}

// NewDispatcher returns a Dispatcher over the given adapters in order.
func NewDispatcher(adapters ...Adapter) *Dispatcher {
	return &Dispatcher{adapters: adapters}
}

// Send delivers message through the first adapter that accepts it. Adapter
// failures are logged and skipped; only exhaustion of every adapter returns
// a SendError. A suppressed notification ends the loop without error.
func (d *Dispatcher) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		logging.Get().Error().Msg("message can not be empty")
		return 0, ErrEmptyMessage
	}

	var attempts []Attempt
	for _, a := range d.adapters {
		logging.Get().Debug().Str("service", a.Name()).Msg("sending notification")

		status, err := a.Send(ctx, message, window)
		if err != nil {
			metrics.IncFailedAttempt(a.Name())
			logging.Get().Error().Err(err).Str("service", a.Name()).Msg("service failed")
			attempts = append(attempts, Attempt{Service: a.Name(), Err: err})
			continue
		}
		if status == StatusSuppressed {
			metrics.IncSuppressed(a.Name())
		} else {
			metrics.IncSent(a.Name())
		}
		return status, nil
	}

	metrics.IncExhausted()
	logging.Get().Error().Msg("no notification could be sent")
	return 0, &SendError{Attempts: attempts}
}
