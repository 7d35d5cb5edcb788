package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/donnex/sendnotification/internal/logging"
)

// PushOnce writes the current counters to InfluxDB using the v2 write API.
// Used after one-shot CLI sends so short-lived processes still report.
func PushOnce(ctx context.Context, url, token, org, bucket string) error {
	if url == "" || bucket == "" {
		return nil
	}
	client := &http.Client{Timeout: 5 * time.Second}
	return push(ctx, client, writeURL(url, org, bucket), token)
}

// StartPusher pushes counters on a fixed interval until ctx is cancelled.
// Used by serve mode.
func StartPusher(ctx context.Context, url, token, org, bucket string, interval time.Duration) {
	if url == "" || bucket == "" {
		return
	}
	logging.Get().Info().Str("url", url).Dur("interval", interval).Msg("starting influxdb pusher")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 5 * time.Second}
	target := writeURL(url, org, bucket)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := push(ctx, client, target, token); err != nil {
				logging.Get().Error().Err(err).Msg("influxdb push failed")
			}
		}
	}
}

func writeURL(url, org, bucket string) string {
	return fmt.Sprintf("%s/api/v2/write?org=%s&bucket=%s&precision=s",
		strings.TrimRight(url, "/"), org, bucket)
}

func push(ctx context.Context, client *http.Client, url, token string) error {
	s := GetSnapshot()

	// Influx line protocol: measurement field=value ... timestamp
	line := fmt.Sprintf(
		"sendnotification sent=%di,failed_attempts=%di,suppressed=%di,exhausted=%di,last_sent=%di %d",
		s.Sent, s.FailedAttempts, s.Suppressed, s.Exhausted, s.LastSent, time.Now().Unix(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(line))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("influxdb rejected metrics: status %d", resp.StatusCode)
	}
	return nil
}
