package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/interval"
	"github.com/donnex/sendnotification/internal/logging"
)

// instapushAPIURL is a var so tests can point it at a local server.
var instapushAPIURL = "https://api.instapush.im/v1/post"

// Instapush delivers through the legacy Instapush event API. Kept so
// configs written against the legacy variant still work.
type Instapush struct {
	apiKey         string
	notificationID string
	category       string
	event          string

	guard  *interval.Guard
	client *http.Client
}

func newInstapush(settings map[string]string, opts Options) Adapter {
	return &Instapush{
		apiKey:         settings["api_key"],
		notificationID: settings["notification_id"],
		category:       settings["category"],
		event:          settings["event"],
		guard:          opts.Guard,
		client:         opts.httpClient(),
	}
}

func (i *Instapush) Name() string { return "instapush" }

func (i *Instapush) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	fields := []string{i.apiKey, i.notificationID, message}
	if i.category != "" {
		fields = append(fields, i.category)
	}
	if i.event != "" {
		fields = append(fields, i.event)
	}
	ok, err := i.guard.Allow(ctx, i.Name(), window, fields)
	if err != nil {
		return 0, err
	}
	if !ok {
		return StatusSuppressed, nil
	}

	event := i.event
	if event == "" {
		event = "notification"
	}
	tracker := i.category
	if tracker == "" {
		tracker = "message"
	}
	payload, err := json.Marshal(map[string]interface{}{
		"event":    event,
		"trackers": map[string]string{tracker: message},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, instapushAPIURL, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-instapush-appid", i.notificationID)
	req.Header.Set("x-instapush-appsecret", i.apiKey)

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("instapush: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("instapush: %s", msg)
	}
	logging.Get().Debug().Msg("instapush notification sent")
	return StatusSent, nil
}
