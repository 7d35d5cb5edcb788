// Package notify delivers a notification through one of the configured
// services, falling back to the next service in order on failure.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/donnex/sendnotification/internal/interval"
)

// Status is the outcome of a successful adapter call.
type Status int

const (
	// StatusSent means the service delivered the notification.
	StatusSent Status = iota
	// StatusSuppressed means the interval guard blocked a duplicate; the
	// notification counts as handled and no outbound call was made.
	StatusSuppressed
)

// Adapter is one delivery channel. Send returns StatusSuppressed without
// error when the interval guard blocks the notification; any error means
// the dispatcher should fall back to the next service.
type Adapter interface {
	Name() string
	Send(ctx context.Context, message string, window time.Duration) (Status, error)
}

// ErrEmptyMessage is returned when the message is empty after trimming.
var ErrEmptyMessage = errors.New("message can not be empty")

// Attempt records one failed delivery attempt during fallback.
type Attempt struct {
	Service string
	Err     error
}

// SendError is returned when every configured service failed.
type SendError struct {
	Attempts []Attempt
}

func (e *SendError) Error() string { return "no notification could be sent" }

// Options carries the collaborators shared by all adapters.
type Options struct {
	// Guard suppresses duplicate notifications; nil disables suppression.
	Guard *interval.Guard
	// HTTPClient is used for HTTP-based services; nil gets a client with
	// DefaultHTTPTimeout.
	HTTPClient *http.Client
	// SMTPAddr is the relay for the email service; empty means localhost:25.
	SMTPAddr string
	// PushoverRetries caps pushover attempts; zero means 3.
	PushoverRetries int
}

// DefaultHTTPTimeout bounds outbound HTTP delivery calls.
const DefaultHTTPTimeout = 5 * time.Second

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

func (o Options) smtpAddr() string {
	if o.SMTPAddr != "" {
		return o.SMTPAddr
	}
	return "localhost:25"
}

func (o Options) pushoverRetries() int {
	if o.PushoverRetries > 0 {
		return o.PushoverRetries
	}
	return 3
}

// builders maps service names to adapter constructors. The set of names
// must stay in sync with config.Rules.
var builders = map[string]func(settings map[string]string, opts Options) Adapter{
	"pushover":  newPushover,
	"email":     newEmail,
	"instapush": newInstapush,
}

// New returns the adapter for a validated service configuration.
func New(service string, settings map[string]string, opts Options) (Adapter, error) {
	build, ok := builders[service]
	if !ok {
		return nil, fmt.Errorf("invalid service %s", service)
	}
	return build(settings, opts), nil
}
