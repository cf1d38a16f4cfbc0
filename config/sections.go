package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServerConfig configures the form service.
type ServerConfig struct {
	// Address is the listen address of the form service.
	Address string `json:"address"`
	// CORSOrigins lists origins allowed to call the JSON API. "*" allows any.
	CORSOrigins []string `json:"cors_origins"`
	// SessionIdleMinutes evicts form sessions not seen for this long.
	SessionIdleMinutes int `json:"session_idle_minutes"`
	// SweepIntervalSeconds is how often idle sessions are looked for.
	SweepIntervalSeconds int `json:"sweep_interval_seconds"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":3000"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.SessionIdleMinutes == 0 {
		c.SessionIdleMinutes = 60
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
}

func (c ServerConfig) Validate() error {
	if c.SessionIdleMinutes < 0 {
		return errors.New("session_idle_minutes must not be negative")
	}
	if c.SweepIntervalSeconds < 0 {
		return errors.New("sweep_interval_seconds must not be negative")
	}
	for _, o := range c.CORSOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("cors origin %q must be \"*\" or start with http:// or https://", o)
		}
	}
	return nil
}

func (c ServerConfig) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c ServerConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// PredictorConfig points at the remote prediction endpoint.
type PredictorConfig struct {
	Endpoint string `json:"endpoint"`
	// TimeoutSeconds bounds one prediction call. Negative disables the timeout.
	TimeoutSeconds int `json:"timeout_seconds"`
}

func (c *PredictorConfig) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "http://127.0.0.1:8000/diabetes_prediction"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

func (c PredictorConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	return nil
}

// Timeout returns zero when the timeout is disabled.
func (c PredictorConfig) Timeout() time.Duration {
	if c.TimeoutSeconds < 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MockConfig configures the local stand-in for the prediction endpoint.
type MockConfig struct {
	Address    string `json:"address"`
	Result     string `json:"result"`
	StatusCode int    `json:"status_code"`
}

func (c *MockConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.Result == "" {
		c.Result = "The person is not Diabetic"
	}
	if c.StatusCode == 0 {
		c.StatusCode = 200
	}
}

func (c MockConfig) Validate() error {
	if c.StatusCode < 100 || c.StatusCode > 599 {
		return fmt.Errorf("invalid status_code %d", c.StatusCode)
	}
	return nil
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}

// MetricsConfig controls the Prometheus endpoint of the form service.
type MetricsConfig struct {
	Enabled *bool  `json:"enabled"`
	Path    string `json:"path"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.Enabled == nil {
		on := true
		c.Enabled = &on
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// IsEnabled reports whether metrics are exposed. Unset means enabled.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
