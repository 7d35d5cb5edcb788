package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvOverrides reads SENDNOTIFICATION_* environment variables and
// overrides fields in the provided App. Returns an error when a value does
// not parse.
//
// Supported variables:
//   - SENDNOTIFICATION_LOG_LEVEL, SENDNOTIFICATION_LOG_FILE
//   - SENDNOTIFICATION_SMTP_ADDR
//   - SENDNOTIFICATION_HTTP_TIMEOUT (duration, e.g. "5s")
//   - SENDNOTIFICATION_PUSHOVER_RETRIES (int)
//   - SENDNOTIFICATION_STORE_BACKEND ("redis", "sqlite" or "")
//   - SENDNOTIFICATION_REDIS_ADDR, SENDNOTIFICATION_REDIS_DB
//   - SENDNOTIFICATION_SQLITE_PATH
//   - SENDNOTIFICATION_LISTEN
//   - SENDNOTIFICATION_METRICS_ENABLED (bool)
//   - SENDNOTIFICATION_INFLUX_URL, _TOKEN, _ORG, _BUCKET, _INTERVAL
func ApplyEnvOverrides(app *App) error {
	setStrEnv("SENDNOTIFICATION_LOG_LEVEL", &app.LogLevel)
	setStrEnv("SENDNOTIFICATION_LOG_FILE", &app.LogFile)
	setStrEnv("SENDNOTIFICATION_SMTP_ADDR", &app.SMTPAddr)
	setStrEnv("SENDNOTIFICATION_STORE_BACKEND", &app.Store.Backend)
	setStrEnv("SENDNOTIFICATION_REDIS_ADDR", &app.Store.RedisAddr)
	setStrEnv("SENDNOTIFICATION_SQLITE_PATH", &app.Store.SQLitePath)
	setStrEnv("SENDNOTIFICATION_LISTEN", &app.Listen)
	setStrEnv("SENDNOTIFICATION_INFLUX_URL", &app.InfluxURL)
	setStrEnv("SENDNOTIFICATION_INFLUX_TOKEN", &app.InfluxToken)
	setStrEnv("SENDNOTIFICATION_INFLUX_ORG", &app.InfluxOrg)
	setStrEnv("SENDNOTIFICATION_INFLUX_BUCKET", &app.InfluxBucket)

	if err := setDurationEnv("SENDNOTIFICATION_HTTP_TIMEOUT", &app.HTTPTimeout); err != nil {
		return err
	}
	if err := setDurationEnv("SENDNOTIFICATION_INFLUX_INTERVAL", &app.InfluxInterval); err != nil {
		return err
	}
	if err := setIntEnv("SENDNOTIFICATION_PUSHOVER_RETRIES", &app.PushoverRetries); err != nil {
		return err
	}
	if err := setIntEnv("SENDNOTIFICATION_REDIS_DB", &app.Store.RedisDB); err != nil {
		return err
	}
	if err := setBoolEnv("SENDNOTIFICATION_METRICS_ENABLED", &app.MetricsEnabled); err != nil {
		return err
	}
	return nil
}

func setStrEnv(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setBoolEnv(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = b
	return nil
}

func setIntEnv(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

func setDurationEnv(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}
