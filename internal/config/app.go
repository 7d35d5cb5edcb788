package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App holds runtime configuration for the relay itself, as opposed to the
// JSON services document describing delivery channels. Loaded from YAML
// with SENDNOTIFICATION_* environment overrides on top.
type App struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`

	// SMTPAddr is the relay used by the email service.
	SMTPAddr string `yaml:"smtp_addr"`

	// HTTPTimeout bounds every outbound HTTP delivery call.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// PushoverRetries is the total number of pushover attempts on
	// retriable status codes.
	PushoverRetries int `yaml:"pushover_retries"`

	Store StoreConfig `yaml:"store"`

	// Listen is the address for serve mode.
	Listen string `yaml:"listen"`

	MetricsEnabled bool `yaml:"metrics_enabled"`

	// InfluxDB push (optional)
	InfluxURL      string        `yaml:"influx_url"`
	InfluxToken    string        `yaml:"influx_token"`
	InfluxOrg      string        `yaml:"influx_org"`
	InfluxBucket   string        `yaml:"influx_bucket"`
	InfluxInterval time.Duration `yaml:"influx_interval"`
}

// StoreConfig selects the expiring key-value store backing the interval
// guard. Backend is "redis" or "sqlite"; an empty backend disables the
// guard so interval sends always go out.
type StoreConfig struct {
	Backend    string `yaml:"backend"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisDB    int    `yaml:"redis_db"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DefaultApp returns default runtime settings: local SMTP relay, local
// Redis, dispatch behavior matching the pushover API guidance.
func DefaultApp() *App {
	return &App{
		LogLevel:        "info",
		SMTPAddr:        "localhost:25",
		HTTPTimeout:     5 * time.Second,
		PushoverRetries: 3,
		Store: StoreConfig{
			Backend:   "redis",
			RedisAddr: "localhost:6379",
		},
		Listen:         ":8099",
		InfluxInterval: 1 * time.Minute,
	}
}

// LoadApp loads runtime settings from a YAML file over the defaults.
func LoadApp(path string) (*App, error) {
	app := DefaultApp()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, app); err != nil {
		return nil, err
	}
	return app, nil
}
