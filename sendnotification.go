// Package sendnotification sends a single notification message through the
// first configured delivery channel that accepts it (pushover, email via a
// local SMTP relay, legacy instapush), falling back to the next channel in
// configured order on failure. Identical notifications can optionally be
// suppressed inside a time window using an expiring key in a shared
// key-value store.
package sendnotification

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/config"
	"github.com/donnex/sendnotification/internal/interval"
	"github.com/donnex/sendnotification/internal/logging"
	"github.com/donnex/sendnotification/internal/notify"
)

// Status is the outcome of a Send call that did not fail.
type Status int

const (
	// StatusSent means one service delivered the notification.
	StatusSent Status = iota
	// StatusSuppressed means the interval guard blocked a duplicate
	// within its window; nothing was delivered and nothing failed.
	StatusSuppressed
)

// ErrEmptyMessage is returned when the message is blank after trimming.
var ErrEmptyMessage = notify.ErrEmptyMessage

// Store is the expiring key-value store consulted before interval-guarded
// sends. SetIfAbsent must atomically claim key with the given TTL when it
// is not already present and report whether it did; an existing key keeps
// its original expiry. Implementations are provided for Redis and SQLite;
// tests inject fakes.
type Store interface {
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type settings struct {
	configPath string
	noConfig   bool
	services   []serviceSetting

	store           Store
	smtpAddr        string
	httpTimeout     time.Duration
	pushoverRetries int
}

type serviceSetting struct {
	name     string
	settings map[string]string
}

// Option configures a Sender.
type Option func(*settings)

// WithConfigFile reads the services document from path instead of the
// default ~/.sendnotification.
func WithConfigFile(path string) Option {
	return func(s *settings) { s.configPath = path }
}

// WithoutConfigFile disables reading an external services document;
// services must be supplied with WithService.
func WithoutConfigFile() Option {
	return func(s *settings) { s.noConfig = true }
}

// WithService enables a service programmatically. Services are tried in
// the order given, after any loaded from a config file.
func WithService(name string, serviceSettings map[string]string) Option {
	return func(s *settings) {
		s.services = append(s.services, serviceSetting{name: name, settings: serviceSettings})
	}
}

// WithStore enables the interval guard backed by the given store. Without
// a store, interval arguments to Send are ignored and every send goes out.
func WithStore(store Store) Option {
	return func(s *settings) { s.store = store }
}

// WithSMTPAddr overrides the SMTP relay used by the email service
// (default localhost:25).
func WithSMTPAddr(addr string) Option {
	return func(s *settings) { s.smtpAddr = addr }
}

// WithHTTPTimeout overrides the timeout for outbound HTTP delivery calls.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *settings) { s.httpTimeout = d }
}

// WithPushoverRetries overrides the total number of pushover attempts.
func WithPushoverRetries(n int) Option {
	return func(s *settings) { s.pushoverRetries = n }
}

// Sender sends notifications according to a validated services
// configuration. A Sender is safe for reuse across sends.
type Sender struct {
	cfg  *config.Config
	opts notify.Options
}

// New builds a Sender. The services document is read from the explicit
// path, or from ~/.sendnotification, unless WithoutConfigFile is given.
// Configuration is validated on each Send, not here, so programmatic
// services can still be combined with a loaded document.
func New(opts ...Option) (*Sender, error) {
	var st settings
	for _, o := range opts {
		o(&st)
	}

	var cfg *config.Config
	if st.noConfig {
		cfg = config.New()
	} else {
		path := st.configPath
		if path == "" {
			var err error
			path, err = config.DefaultPath()
			if err != nil {
				return nil, err
			}
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			logging.Get().Error().Msg(err.Error())
			return nil, err
		}
	}
	for _, svc := range st.services {
		cfg.Add(svc.name, svc.settings)
	}

	nopts := notify.Options{
		SMTPAddr:        st.smtpAddr,
		PushoverRetries: st.pushoverRetries,
	}
	if st.store != nil {
		nopts.Guard = interval.NewGuard(st.store)
	}
	if st.httpTimeout > 0 {
		nopts.HTTPClient = &http.Client{Timeout: st.httpTimeout}
	}
	return &Sender{cfg: cfg, opts: nopts}, nil
}

// Send delivers message through the first configured service that accepts
// it. A positive window suppresses identical notifications sent again
// within that window (requires WithStore). Send fails only when the
// message is blank, the configuration is invalid, or every service failed.
func (s *Sender) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		logging.Get().Error().Msg("message can not be empty")
		return 0, ErrEmptyMessage
	}
	if err := s.cfg.Validate(); err != nil {
		logging.Get().Error().Msg(err.Error())
		return 0, err
	}

	adapters := make([]notify.Adapter, 0, len(s.cfg.Services))
	for _, name := range s.cfg.Services {
		a, err := notify.New(name, s.cfg.Settings[name], s.opts)
		if err != nil {
			return 0, err
		}
		adapters = append(adapters, a)
	}

	status, err := notify.NewDispatcher(adapters...).Send(ctx, message, window)
	if err != nil {
		return 0, err
	}
	if status == notify.StatusSuppressed {
		return StatusSuppressed, nil
	}
	return StatusSent, nil
}
