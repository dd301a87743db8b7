package config

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidValue describes one rejected configuration key
type InvalidValue struct {
	Key    string
	Value  string
	Reason string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Invalid []InvalidValue
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Invalid) > 0
}

func (e *ValidationErrors) add(key string, value any, reason string) {
	e.Invalid = append(e.Invalid, InvalidValue{
		Key:    key,
		Value:  fmt.Sprint(value),
		Reason: reason,
	})
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, iv := range e.Invalid {
		sb.WriteString(fmt.Sprintf("  - %s=%q: %s\n", iv.Key, iv.Value, iv.Reason))
	}
	return sb.String()
}

// Validate checks every section and reports all problems at once
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	validateServer(errs, c.Server)
	validateProvider(errs, c.Provider)

	if c.Series.HistoryDays < 1 || c.Series.HistoryDays > MaxHistoryDays {
		errs.add("series.history_days", c.Series.HistoryDays, fmt.Sprintf("must be between 1 and %d", MaxHistoryDays))
	}
	if c.Snapshot.Workers < 1 {
		errs.add("snapshot.workers", c.Snapshot.Workers, "must be >= 1")
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.add("logging.level", c.Logging.Level, "must be one of debug, info, warn, error, dpanic, panic, fatal")
	}
	if c.Logging.Enabled && c.Logging.Directory == "" {
		errs.add("logging.directory", c.Logging.Directory, "required when logging.enabled is true")
	}

	validateNotify(errs, c.Notify)

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateServer(errs *ValidationErrors, s ServerConfig) {
	port, err := strconv.Atoi(s.Port)
	if err != nil || port < 1 || port > 65535 {
		errs.add("server.port", s.Port, "must be a number between 1 and 65535")
	}
	if s.ReadTimeoutSec < 1 {
		errs.add("server.read_timeout_sec", s.ReadTimeoutSec, "must be >= 1")
	}
	if s.WriteTimeoutSec < 1 {
		errs.add("server.write_timeout_sec", s.WriteTimeoutSec, "must be >= 1")
	}
	if s.ShutdownTimeoutSec < 1 {
		errs.add("server.shutdown_timeout_sec", s.ShutdownTimeoutSec, "must be >= 1")
	}
}

func validateProvider(errs *ValidationErrors, p ProviderConfig) {
	switch p.Kind {
	case ProviderYahoo:
		if p.Yahoo.BaseURL == "" {
			errs.add("provider.yahoo.base_url", p.Yahoo.BaseURL, "required for the yahoo provider")
		}
		if p.Yahoo.TimeoutSec < 1 {
			errs.add("provider.yahoo.timeout_sec", p.Yahoo.TimeoutSec, "must be >= 1")
		}
		if p.Yahoo.RatePerSecond < 0 {
			errs.add("provider.yahoo.rate_per_second", p.Yahoo.RatePerSecond, "must be >= 0 (0 disables limiting)")
		}
	case ProviderFile:
		if p.File.Directory == "" {
			errs.add("provider.file.directory", p.File.Directory, "required for the file provider")
		}
	default:
		kinds := make([]string, 0, len(ValidProviderKinds))
		for _, k := range ValidProviderKinds {
			kinds = append(kinds, string(k))
		}
		errs.add("provider.kind", p.Kind, "must be one of "+strings.Join(kinds, ", "))
	}
}

func validateNotify(errs *ValidationErrors, n NotifyConfig) {
	if !n.Enabled {
		return
	}
	if n.Topic == "" {
		errs.add("notify.topic", n.Topic, "required when notify.enabled is true")
	}
	if !validPriorities[n.Priority] {
		errs.add("notify.priority", n.Priority, "must be one of min, low, default, high, urgent")
	}
}
