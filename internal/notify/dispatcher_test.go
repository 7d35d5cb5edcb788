package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/donnex/sendnotification/internal/config"
)

type fakeAdapter struct {
	name     string
	fail     bool
	suppress bool
	calls    []string
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Send(ctx context.Context, message string, window time.Duration) (Status, error) {
	f.calls = append(f.calls, message)
	if f.fail {
		return 0, errors.New("boom")
	}
	if f.suppress {
		return StatusSuppressed, nil
	}
	return StatusSent, nil
}

func TestDispatcherEmptyMessage(t *testing.T) {
	spy := &fakeAdapter{name: "email"}
	d := NewDispatcher(spy)

	for _, msg := range []string{"", "   ", "\t\n"} {
		_, err := d.Send(context.Background(), msg, 0)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", msg, err)
		}
	}
	if len(spy.calls) != 0 {
		t.Fatalf("adapter invoked for empty message: %v", spy.calls)
	}
}

func TestDispatcherTrimsMessage(t *testing.T) {
	spy := &fakeAdapter{name: "email"}
	d := NewDispatcher(spy)

	status, err := d.Send(context.Background(), "  hello  ", 0)
	if err != nil || status != StatusSent {
		t.Fatalf("send failed: %v %v", status, err)
	}
	if len(spy.calls) != 1 || spy.calls[0] != "hello" {
		t.Fatalf("expected trimmed message, got %v", spy.calls)
	}
}

func TestDispatcherFallbackOrder(t *testing.T) {
	first := &fakeAdapter{name: "pushover", fail: true}
	second := &fakeAdapter{name: "email"}
	d := NewDispatcher(first, second)

	status, err := d.Send(context.Background(), "msg", 0)
	if err != nil || status != StatusSent {
		t.Fatalf("expected success via fallback: %v %v", status, err)
	}
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Fatalf("expected first then second, got %d/%d calls", len(first.calls), len(second.calls))
	}
}

func TestDispatcherStopsAtFirstSuccess(t *testing.T) {
	first := &fakeAdapter{name: "pushover"}
	second := &fakeAdapter{name: "email"}
	d := NewDispatcher(first, second)

	if _, err := d.Send(context.Background(), "msg", 0); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(second.calls) != 0 {
		t.Fatalf("second adapter should not run after success: %v", second.calls)
	}
}

func TestDispatcherSuppressionEndsLoop(t *testing.T) {
	first := &fakeAdapter{name: "pushover", suppress: true}
	second := &fakeAdapter{name: "email"}
	d := NewDispatcher(first, second)

	status, err := d.Send(context.Background(), "msg", time.Minute)
	if err != nil {
		t.Fatalf("suppression must not be an error: %v", err)
	}
	if status != StatusSuppressed {
		t.Fatalf("expected StatusSuppressed, got %v", status)
	}
	if len(second.calls) != 0 {
		t.Fatalf("suppression should end the loop: %v", second.calls)
	}
}

func TestDispatcherAllFail(t *testing.T) {
	first := &fakeAdapter{name: "pushover", fail: true}
	second := &fakeAdapter{name: "email", fail: true}
	d := NewDispatcher(first, second)

	_, err := d.Send(context.Background(), "msg", 0)
	var serr *SendError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SendError, got %v", err)
	}
	if err.Error() != "no notification could be sent" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if len(serr.Attempts) != 2 {
		t.Fatalf("expected 2 recorded attempts, got %+v", serr.Attempts)
	}
	if len(first.calls) != 1 || len(second.calls) != 1 {
		t.Fatalf("each adapter should run exactly once: %d/%d", len(first.calls), len(second.calls))
	}
}

func TestBuildersMatchConfigRules(t *testing.T) {
	for service := range config.Rules {
		if _, ok := builders[service]; !ok {
			t.Errorf("service %s has validation rules but no adapter builder", service)
		}
	}
	for service := range builders {
		if _, ok := config.Rules[service]; !ok {
			t.Errorf("service %s has an adapter builder but no validation rules", service)
		}
	}
}

func TestNewUnknownService(t *testing.T) {
	if _, err := New("carrierpigeon", nil, Options{}); err == nil {
		t.Fatal("expected error for unknown service")
	}
}
