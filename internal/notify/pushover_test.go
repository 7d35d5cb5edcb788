package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/donnex/sendnotification/internal/interval"
)

func pushoverForTest(t *testing.T, serverURL string, opts Options) *Pushover {
	t.Helper()
	old := pushoverAPIURL
	pushoverAPIURL = serverURL
	t.Cleanup(func() { pushoverAPIURL = old })

	a, err := New("pushover", map[string]string{
		"app_token": "tok", "api_key": "user", "title": "alarm",
	}, opts)
	if err != nil {
		t.Fatalf("build adapter: %v", err)
	}
	return a.(*Pushover)
}

func TestPushoverSendForm(t *testing.T) {
	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := pushoverForTest(t, server.URL, Options{})
	status, err := p.Send(context.Background(), "disk almost full", 0)
	if err != nil || status != StatusSent {
		t.Fatalf("send failed: %v %v", status, err)
	}
	if form["token"][0] != "tok" || form["user"][0] != "user" ||
		form["message"][0] != "disk almost full" || form["title"][0] != "alarm" {
		t.Fatalf("unexpected form: %v", form)
	}
}

func TestPushoverNon200CarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["application token is invalid"]}`))
	}))
	defer server.Close()

	p := pushoverForTest(t, server.URL, Options{})
	_, err := p.Send(context.Background(), "msg", 0)
	if err == nil || !strings.Contains(err.Error(), "application token is invalid") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestPushoverRetriesOnServerError(t *testing.T) {
	oldSleep := sleepHook
	var slept []time.Duration
	sleepHook = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleepHook = oldSleep })

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := pushoverForTest(t, server.URL, Options{})
	status, err := p.Send(context.Background(), "msg", 0)
	if err != nil || status != StatusSent {
		t.Fatalf("expected success after retries: %v %v", status, err)
	}
	if hits != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}
	if len(slept) != 2 || slept[1] != 2*slept[0] {
		t.Fatalf("expected doubling backoff, got %v", slept)
	}
}

func TestPushoverNoRetryOnClientError(t *testing.T) {
	oldSleep := sleepHook
	sleepHook = func(time.Duration) {}
	t.Cleanup(func() { sleepHook = oldSleep })

	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	p := pushoverForTest(t, server.URL, Options{})
	if _, err := p.Send(context.Background(), "msg", 0); err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Fatalf("client errors must not be retried, got %d attempts", hits)
	}
}

func TestPushoverSuppressedSkipsAPICall(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := newBlockedStore()
	p := pushoverForTest(t, server.URL, Options{Guard: interval.NewGuard(store)})

	status, err := p.Send(context.Background(), "msg", time.Minute)
	if err != nil || status != StatusSent {
		t.Fatalf("first send failed: %v %v", status, err)
	}
	status, err = p.Send(context.Background(), "msg", time.Minute)
	if err != nil || status != StatusSuppressed {
		t.Fatalf("expected suppression: %v %v", status, err)
	}
	if hits != 1 {
		t.Fatalf("suppressed send must not hit the API, got %d hits", hits)
	}
}

// blockedStore allows the first claim per key and blocks repeats.
type blockedStore struct {
	seen map[string]bool
}

func newBlockedStore() *blockedStore { return &blockedStore{seen: make(map[string]bool)} }

func (b *blockedStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if b.seen[key] {
		return false, nil
	}
	b.seen[key] = true
	return true, nil
}
