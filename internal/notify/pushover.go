package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/interval"
	"github.com/donnex/sendnotification/internal/logging"
)

// pushoverAPIURL is a var so tests can point it at a local server.
var pushoverAPIURL = "https://api.pushover.net/1/messages.json"

// retriableStatus lists response codes worth another attempt.
var retriableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Retry settings (tunable in tests).
var pushoverBaseBackoff = 1 * time.Second

// sleepHook is used in tests to avoid sleeping for real.
var sleepHook = time.Sleep

// Pushover delivers via the Pushover messages API.
type Pushover struct {
	token   string
	userKey string
	title   string

	guard       *interval.Guard
	client      *http.Client
	maxAttempts int
}

func newPushover(settings map[string]string, opts Options) Adapter {
	return &Pushover{
		token:       settings["app_token"],
		userKey:     settings["api_key"],
		title:       settings["title"],
		guard:       opts.Guard,
		client:      opts.httpClient(),
		maxAttempts: opts.pushoverRetries(),
	}
}

func (p *Pushover) Name() string { return "pushover" }

// Send posts the message as a form to the Pushover API. Retriable statuses
// and network errors get up to maxAttempts tries with doubling backoff; a
// non-200 final response fails with the response body as the message.
func (p *Pushover) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	fields := []string{p.token, p.userKey, message}
	if p.title != "" {
		fields = append(fields, p.title)
	}
	ok, err := p.guard.Allow(ctx, p.Name(), window, fields)
	if err != nil {
		return 0, err
	}
	if !ok {
		return StatusSuppressed, nil
	}

	form := url.Values{
		"token":   {p.token},
		"user":    {p.userKey},
		"message": {message},
	}
	if p.title != "" {
		form.Set("title", p.title)
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		retriable, err := p.post(ctx, form)
		if err == nil {
			logging.Get().Debug().Msg("pushover notification sent")
			return StatusSent, nil
		}
		lastErr = err
		if !retriable || attempt == p.maxAttempts {
			break
		}
		logging.Get().Warn().Err(err).Int("attempt", attempt).Msg("pushover attempt failed")

		// context-aware backoff: sleepHook keeps tests fast.
		d := pushoverBaseBackoff * time.Duration(1<<uint(attempt-1))
		slept := make(chan struct{})
		go func() {
			sleepHook(d)
			close(slept)
		}()
		select {
		case <-slept:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return 0, fmt.Errorf("pushover: %w", lastErr)
}

func (p *Pushover) post(ctx context.Context, form url.Values) (retriable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverAPIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		// network and timeout errors are worth another attempt
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return false, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fmt.Sprintf("status %d", resp.StatusCode)
	}
	return retriableStatus[resp.StatusCode], errors.New(msg)
}
