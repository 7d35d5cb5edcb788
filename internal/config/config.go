// Package config loads and validates the sendnotification services
// document and the relay's own runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the services document in the user's home directory
// used when no explicit path is given.
const DefaultFileName = ".sendnotification"

// Config is the normalized services document: the enabled service titles in
// configured order plus each service's settings.
type Config struct {
	Services []string
	Settings map[string]map[string]string
}

// ConfigError reports a services document that could not be loaded. Op is
// "open" when the file was unreadable and "parse" when it was not valid
// JSON.
type ConfigError struct {
	Path string
	Op   string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Op == "open" {
		return fmt.Sprintf("unable to open JSON config file %s", e.Path)
	}
	return fmt.Sprintf("invalid JSON config file %s", e.Path)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// document mirrors the on-disk JSON shape:
// {"services": [{"title": ..., "settings": {...}}, ...]}
type document struct {
	Services []serviceEntry `json:"services"`
}

type serviceEntry struct {
	Title    string            `json:"title"`
	Settings map[string]string `json:"settings"`
}

// New returns an empty Config for programmatic setup.
func New() *Config {
	return &Config{Settings: make(map[string]map[string]string)}
}

// Add appends a service with its settings, preserving call order for
// dispatch. Adding a title twice replaces its settings but keeps its
// original position.
func (c *Config) Add(service string, settings map[string]string) {
	if c.Settings == nil {
		c.Settings = make(map[string]map[string]string)
	}
	if _, ok := c.Settings[service]; !ok {
		c.Services = append(c.Services, service)
	}
	c.Settings[service] = settings
}

// DefaultPath returns ~/.sendnotification.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Load reads and normalizes a services document. The JSON "services" array
// of {title, settings} objects is rewritten into settings keyed by title
// plus the ordered list of enabled titles.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Op: "open", Err: err}
	}

	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &ConfigError{Path: path, Op: "parse", Err: err}
	}

	cfg := New()
	for _, s := range doc.Services {
		cfg.Add(s.Title, s.Settings)
	}
	return cfg, nil
}
