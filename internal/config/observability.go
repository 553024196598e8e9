package config

import (
	"fmt"
	"time"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
	// Format is "console" or "json"; empty picks console outside production.
	Format string `koanf:"format"`
}

type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
}

// Enabled reports whether a New Relic application should be started.
func (n NewRelicConfig) Enabled() bool {
	return n.LicenseKey != ""
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "alephweb",
		Environment: "development",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// TelemetryConfig controls request event reporting.
type TelemetryConfig struct {
	// Sinks names the sink types records are reported to (see sinks.GlobalRegistry).
	Sinks       []string      `koanf:"sinks"`
	QueueSize   int           `koanf:"queue_size" validate:"gte=0"`
	EmitTimeout time.Duration `koanf:"emit_timeout"`
}

func DefaultTelemetryConfig() *TelemetryConfig {
	return &TelemetryConfig{
		Sinks:       []string{"log"},
		QueueSize:   1024,
		EmitTimeout: 5 * time.Second,
	}
}

func (t *TelemetryConfig) fillDefaults() {
	def := DefaultTelemetryConfig()
	if len(t.Sinks) == 0 {
		t.Sinks = def.Sinks
	}
	if t.QueueSize == 0 {
		t.QueueSize = def.QueueSize
	}
	if t.EmitTimeout <= 0 {
		t.EmitTimeout = def.EmitTimeout
	}
}

// Validate checks that every sink's prerequisites are configured.
func (t *TelemetryConfig) Validate(c *Config) error {
	for _, name := range t.Sinks {
		switch name {
		case "postgres":
			if c.Database == nil {
				return fmt.Errorf("sink %q requires database config", name)
			}
		case "newrelic":
			if !c.Observability.NewRelic.Enabled() {
				return fmt.Errorf("sink %q requires observability.new_relic.license_key", name)
			}
		case "archive":
			if c.Archive == nil {
				return fmt.Errorf("sink %q requires archive config", name)
			}
		}
	}
	return nil
}

// ArchiveConfig points at an S3-compatible bucket receiving batched records.
type ArchiveConfig struct {
	Endpoint  string `koanf:"endpoint" validate:"required,url"`
	Bucket    string `koanf:"bucket" validate:"required"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Prefix    string `koanf:"prefix"`
	BatchSize int    `koanf:"batch_size" validate:"gte=0"`
}
