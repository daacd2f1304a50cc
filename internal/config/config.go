// Package config provides structures and utilities for loading and managing
// the application configuration from an embedded YAML file and environment
// variables.
package config

// EmbeddedConfig holds the content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone. The cleaning engine always
	// interprets timestamps in UTC; this only affects log presentation.
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// PipelineConfig holds the source and destination of one cleaning invocation.
type PipelineConfig struct {
	// SourceStorageRef is the name of the storage connection the raw CSV is
	// downloaded from.
	SourceStorageRef string `yaml:"source_storage_ref"`
	// SourceBucket is the bucket holding the raw CSV object.
	SourceBucket string `yaml:"source_bucket"`
	// SourceObject is the object key of the raw CSV. Usually supplied per
	// invocation through the environment by the event trigger glue.
	SourceObject string `yaml:"source_object"`
	// OutputStorageRef is the name of the storage connection partitions are
	// uploaded to.
	OutputStorageRef string `yaml:"output_storage_ref"`
	// OutputBucket is the destination bucket for partition files.
	OutputBucket string `yaml:"output_bucket"`
	// OutputBaseDir is the key prefix under which partition directories are
	// created (e.g. "telemetry").
	OutputBaseDir string `yaml:"output_base_dir"`
	// Compression is the Parquet compression codec ("SNAPPY", "GZIP", "NONE").
	Compression string `yaml:"compression"`
}

// LedgerConfig holds the run-ledger settings.
type LedgerConfig struct {
	// Enabled toggles persistence of per-invocation cleaning runs. A
	// pointer so an explicit "false" in the YAML is distinguishable from
	// the key being absent; nil falls back to the default.
	Enabled *bool `yaml:"enabled"`
	// DBRef is the name of the database connection used by the ledger.
	DBRef string `yaml:"db_ref"`
}

// IsEnabled reports whether the run ledger is enabled. The ledger is on
// unless switched off explicitly.
func (c LedgerConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig holds OTLP trace exporter settings.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Protocol selects the OTLP transport: "grpc" or "http".
	Protocol string `yaml:"protocol"`
	// Endpoint is the collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
}

// MetricsConfig holds metric recorder settings.
type MetricsConfig struct {
	// Exporter selects the recorder: "prometheus", "otlp" or "none".
	Exporter string `yaml:"exporter"`
	// Protocol selects the OTLP transport when Exporter is "otlp".
	Protocol string `yaml:"protocol"`
	// Endpoint is the OTLP collector endpoint when Exporter is "otlp".
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AiscleanConfig holds all configuration under the "aisclean" top-level key.
type AiscleanConfig struct {
	// System contains system-wide configurations.
	System SystemConfig `yaml:"system"`
	// Pipeline contains source/destination settings for one invocation.
	Pipeline PipelineConfig `yaml:"pipeline"`
	// Ledger contains run-ledger settings.
	Ledger LedgerConfig `yaml:"ledger"`
	// Telemetry contains tracing and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// AdapterConfigs holds named configurations for storage and database
	// adapters, decoded lazily by each provider.
	AdapterConfigs map[string]interface{} `yaml:"adapter"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Aisclean AiscleanConfig `yaml:"aisclean"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		Aisclean: AiscleanConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Pipeline: PipelineConfig{
				SourceStorageRef: "raw",
				OutputStorageRef: "curated",
				OutputBaseDir:    "telemetry",
				Compression:      "SNAPPY",
			},
			Ledger: LedgerConfig{
				DBRef: "ledger",
			},
			Telemetry: TelemetryConfig{
				Tracing: TracingConfig{Protocol: "grpc"},
				Metrics: MetricsConfig{Exporter: "prometheus", Protocol: "grpc"},
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}
