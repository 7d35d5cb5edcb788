// Package interval suppresses duplicate notifications inside a time window
// using an expiring key in a shared key-value store.
package interval

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/donnex/sendnotification/internal/logging"
)

// Store is the expiring key-value store consulted by the guard. SetIfAbsent
// stores value under key with the given TTL when the key is not already
// present and reports whether it was stored. An existing key keeps its
// original expiry.
type Store interface {
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

// keyPrefix namespaces guard keys so they cannot collide with unrelated
// keys in a shared store.
const keyPrefix = "sendnotification"

const sentinel = "1"

// Guard decides whether a notification may be sent. A nil Guard, a Guard
// without a store, or a non-positive window always allows the send.
type Guard struct {
	store Store
}

// NewGuard returns a Guard backed by the given store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// Key derives the deduplication key for a notification: the namespace
// prefix plus a SHA-1 digest over the service name, the window in seconds
// and the notification field values in their fixed order.
func Key(service string, window time.Duration, fields []string) string {
	h := sha1.New()
	io.WriteString(h, service)
	io.WriteString(h, strconv.FormatInt(int64(window.Seconds()), 10))
	for _, f := range fields {
		io.WriteString(h, f)
	}
	return keyPrefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Allow reports whether a notification with the given fields may be sent by
// service within the window. The first call inside a window claims the key
// with TTL = window; later calls are suppressed until it expires.
func (g *Guard) Allow(ctx context.Context, service string, window time.Duration, fields []string) (bool, error) {
	if g == nil || g.store == nil || window <= 0 {
		return true, nil
	}

	key := Key(service, window, fields)
	stored, err := g.store.SetIfAbsent(ctx, key, sentinel, window)
	if err != nil {
		return false, fmt.Errorf("interval store: %w", err)
	}
	if !stored {
		logging.Get().Debug().
			Str("service", service).
			Msg("notification not sent, interval has not passed since last notification")
		return false, nil
	}
	logging.Get().Debug().
		Str("service", service).
		Dur("interval", window).
		Msg("notification interval set")
	return true, nil
}
