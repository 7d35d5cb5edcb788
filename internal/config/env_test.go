package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultApp(t *testing.T) {
	app := DefaultApp()
	if app.SMTPAddr != "localhost:25" {
		t.Fatalf("unexpected default SMTP addr: %q", app.SMTPAddr)
	}
	if app.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected default HTTP timeout: %v", app.HTTPTimeout)
	}
	if app.PushoverRetries != 3 {
		t.Fatalf("unexpected default retries: %d", app.PushoverRetries)
	}
}

func TestLoadAppOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	body := "smtp_addr: mail.internal:587\nstore:\n  backend: sqlite\n  sqlite_path: /tmp/sn.db\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write app config: %v", err)
	}

	app, err := LoadApp(path)
	if err != nil {
		t.Fatalf("load app config: %v", err)
	}
	if app.SMTPAddr != "mail.internal:587" {
		t.Fatalf("smtp addr not overridden: %q", app.SMTPAddr)
	}
	if app.Store.Backend != "sqlite" || app.Store.SQLitePath != "/tmp/sn.db" {
		t.Fatalf("store not overridden: %+v", app.Store)
	}
	// untouched fields keep defaults
	if app.PushoverRetries != 3 {
		t.Fatalf("defaults lost on load: %+v", app)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SENDNOTIFICATION_SMTP_ADDR", "relay:25")
	t.Setenv("SENDNOTIFICATION_HTTP_TIMEOUT", "2s")
	t.Setenv("SENDNOTIFICATION_PUSHOVER_RETRIES", "5")
	t.Setenv("SENDNOTIFICATION_METRICS_ENABLED", "true")
	t.Setenv("SENDNOTIFICATION_REDIS_DB", "3")

	app := DefaultApp()
	if err := ApplyEnvOverrides(app); err != nil {
		t.Fatalf("env overrides failed: %v", err)
	}
	if app.SMTPAddr != "relay:25" || app.HTTPTimeout != 2*time.Second ||
		app.PushoverRetries != 5 || !app.MetricsEnabled || app.Store.RedisDB != 3 {
		t.Fatalf("overrides not applied: %+v", app)
	}
}

func TestApplyEnvOverridesRejectsBadValues(t *testing.T) {
	t.Setenv("SENDNOTIFICATION_HTTP_TIMEOUT", "soon")
	if err := ApplyEnvOverrides(DefaultApp()); err == nil {
		t.Fatal("expected error for bad duration")
	}
}
