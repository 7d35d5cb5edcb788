package config

import (
	"errors"
	"strings"
	"testing"
)

func validPushover() map[string]string {
	return map[string]string{"app_token": "t", "api_key": "k"}
}

func TestValidateNoServices(t *testing.T) {
	err := New().Validate()
	if err == nil || !strings.Contains(err.Error(), "missing services") {
		t.Fatalf("expected missing services error, got %v", err)
	}
}

func TestValidateUnknownService(t *testing.T) {
	cfg := New()
	cfg.Add("carrierpigeon", map[string]string{"coop": "roof"})
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "invalid service carrierpigeon") {
		t.Fatalf("expected invalid service error, got %v", err)
	}
}

func TestValidateMissingRequiredSetting(t *testing.T) {
	cfg := New()
	cfg.Add("pushover", map[string]string{"app_token": "t"})
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "missing setting for pushover api_key") {
		t.Fatalf("expected missing api_key error, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Service != "pushover" || verr.Setting != "api_key" {
		t.Fatalf("unexpected fields: %+v", verr)
	}
}

func TestValidateBlankRequiredSetting(t *testing.T) {
	cfg := New()
	cfg.Add("email", map[string]string{"subject": "   ", "to": "a@b.com"})
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "missing setting for email subject") {
		t.Fatalf("expected blank subject error, got %v", err)
	}
}

func TestValidateUnknownSetting(t *testing.T) {
	cfg := New()
	s := validPushover()
	s["color"] = "red"
	cfg.Add("pushover", s)
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "unknown setting for pushover color") {
		t.Fatalf("expected unknown setting error, got %v", err)
	}
}

func TestValidateOptionalSettingsAllowed(t *testing.T) {
	cfg := New()
	s := validPushover()
	s["title"] = "alarm"
	cfg.Add("pushover", s)
	cfg.Add("email", map[string]string{"subject": "Hi", "to": "a@b.com", "sender": "me@host"})
	cfg.Add("instapush", map[string]string{"api_key": "k", "notification_id": "n", "event": "notice"})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
