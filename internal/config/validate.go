package config

import (
	"fmt"
	"strings"
)

// Rule lists the settings a service accepts. Required settings must be
// present and non-blank; any key outside required+optional is rejected.
type Rule struct {
	Required []string
	Optional []string
}

// Rules enumerates the supported services. Registering a service here,
// together with a builder in internal/notify, is all that is needed to
// extend the relay with another channel.
var Rules = map[string]Rule{
	"pushover": {
		Required: []string{"app_token", "api_key"},
		Optional: []string{"title"},
	},
	"email": {
		Required: []string{"subject", "to"},
		Optional: []string{"sender"},
	},
	// instapush is kept for configs written against the legacy variant.
	"instapush": {
		Required: []string{"api_key", "notification_id"},
		Optional: []string{"category", "event"},
	},
}

// ValidationError reports a services document that does not satisfy the
// rules table. Service and Setting are empty when they do not apply.
type ValidationError struct {
	Service string
	Setting string
	msg     string
}

func (e *ValidationError) Error() string { return e.msg }

// Validate checks that at least one service is enabled, every enabled
// service is known, all required settings are present and non-blank, and no
// unknown settings are supplied.
func (c *Config) Validate() error {
	if len(c.Services) == 0 {
		return &ValidationError{msg: "missing services, at least one is needed"}
	}

	for _, service := range c.Services {
		rule, ok := Rules[service]
		if !ok {
			return &ValidationError{
				Service: service,
				msg:     fmt.Sprintf("invalid service %s", service),
			}
		}
		if err := validateSettings(service, rule, c.Settings[service]); err != nil {
			return err
		}
	}
	return nil
}

func validateSettings(service string, rule Rule, settings map[string]string) error {
	for _, key := range rule.Required {
		if strings.TrimSpace(settings[key]) == "" {
			return &ValidationError{
				Service: service,
				Setting: key,
				msg:     fmt.Sprintf("missing setting for %s %s", service, key),
			}
		}
	}

	valid := make(map[string]bool, len(rule.Required)+len(rule.Optional))
	for _, key := range rule.Required {
		valid[key] = true
	}
	for _, key := range rule.Optional {
		valid[key] = true
	}
	for key := range settings {
		if !valid[key] {
			return &ValidationError{
				Service: service,
				Setting: key,
				msg:     fmt.Sprintf("unknown setting for %s %s", service, key),
			}
		}
	}
	return nil
}
