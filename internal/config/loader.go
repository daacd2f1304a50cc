package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tidewell/aisclean/internal/support/exception"
	"github.com/tidewell/aisclean/internal/support/logger"
)

const stageName = "config"

// envPrefix is the prefix of environment variables that override
// configuration values (e.g. AISCLEAN_SYSTEM_LOGGING_LEVEL).
const envPrefix = "AISCLEAN"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	// EmbeddedConfig contains the raw bytes of the configuration file.
	EmbeddedConfig EmbeddedConfig
	// EnvFilePath is the path to the .env file, if any.
	EnvFilePath string `name:"envFilePath" optional:"true"`
}

// LoadConfig loads configuration from the embedded YAML file and environment
// variables. This function is expected to be called once during startup.
//
// Precedence, lowest to highest: NewConfig defaults, embedded YAML,
// environment variables.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	// Expand ${VAR} placeholders so adapter sections can reference
	// credentials and endpoints from the environment.
	expanded := []byte(os.ExpandEnv(string(embeddedConfig)))

	var yamlConfig Config
	if err := yaml.Unmarshal(expanded, &yamlConfig); err != nil {
		return nil, exception.NewPipelineError(stageName, "failed to unmarshal embedded config", nil, err)
	}
	mergeConfig(cfg, &yamlConfig)

	if err := overrideFromEnv(reflect.ValueOf(&cfg.Aisclean).Elem(), envPrefix); err != nil {
		return nil, exception.NewPipelineError(stageName, "failed to load config from environment variables", nil, err)
	}
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It also sets the global logger level from the loaded configuration.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, err
	}

	logger.SetLogLevel(cfg.Aisclean.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Aisclean.System.Logging.Level)
	return cfg, nil
}

// mergeConfig performs a deep merge from sourceConfig into destConfig.
// Non-zero values in sourceConfig overwrite the corresponding defaults.
func mergeConfig(destConfig, sourceConfig *Config) {
	dest, source := &destConfig.Aisclean, &sourceConfig.Aisclean

	if source.System.Timezone != "" {
		dest.System.Timezone = source.System.Timezone
	}
	if source.System.Logging.Level != "" {
		dest.System.Logging.Level = source.System.Logging.Level
	}

	mergePipelineConfig(&dest.Pipeline, &source.Pipeline)

	if source.Ledger.DBRef != "" {
		dest.Ledger.DBRef = source.Ledger.DBRef
	}
	if source.Ledger.Enabled != nil {
		dest.Ledger.Enabled = source.Ledger.Enabled
	}

	mergeTelemetryConfig(&dest.Telemetry, &source.Telemetry)

	if source.AdapterConfigs != nil {
		if dest.AdapterConfigs == nil {
			dest.AdapterConfigs = make(map[string]interface{})
		}
		for key, value := range source.AdapterConfigs {
			dest.AdapterConfigs[key] = value
		}
	}
}

// mergePipelineConfig merges source into dest.
func mergePipelineConfig(dest, source *PipelineConfig) {
	if source.SourceStorageRef != "" {
		dest.SourceStorageRef = source.SourceStorageRef
	}
	if source.SourceBucket != "" {
		dest.SourceBucket = source.SourceBucket
	}
	if source.SourceObject != "" {
		dest.SourceObject = source.SourceObject
	}
	if source.OutputStorageRef != "" {
		dest.OutputStorageRef = source.OutputStorageRef
	}
	if source.OutputBucket != "" {
		dest.OutputBucket = source.OutputBucket
	}
	if source.OutputBaseDir != "" {
		dest.OutputBaseDir = source.OutputBaseDir
	}
	if source.Compression != "" {
		dest.Compression = source.Compression
	}
}

// mergeTelemetryConfig merges source into dest.
func mergeTelemetryConfig(dest, source *TelemetryConfig) {
	dest.Tracing.Enabled = dest.Tracing.Enabled || source.Tracing.Enabled
	if source.Tracing.Protocol != "" {
		dest.Tracing.Protocol = source.Tracing.Protocol
	}
	if source.Tracing.Endpoint != "" {
		dest.Tracing.Endpoint = source.Tracing.Endpoint
	}
	dest.Tracing.Insecure = dest.Tracing.Insecure || source.Tracing.Insecure
	if source.Metrics.Exporter != "" {
		dest.Metrics.Exporter = source.Metrics.Exporter
	}
	if source.Metrics.Protocol != "" {
		dest.Metrics.Protocol = source.Metrics.Protocol
	}
	if source.Metrics.Endpoint != "" {
		dest.Metrics.Endpoint = source.Metrics.Endpoint
	}
	dest.Metrics.Insecure = dest.Metrics.Insecure || source.Metrics.Insecure
}

// overrideFromEnv walks the struct fields and overrides values from
// environment variables named <prefix>_<YAML_TAG path, upper-cased>.
// AdapterConfigs (the untyped map) is intentionally not overridable.
func overrideFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + strings.ToUpper(tag)
		fv := v.Field(i)

		if fv.Kind() == reflect.Struct {
			if err := overrideFromEnv(fv, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Ptr:
			if fv.Type().Elem().Kind() != reflect.Bool {
				logger.Debugf("Environment override for %s skipped: unsupported kind %s", key, fv.Type())
				continue
			}
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return exception.NewPipelineError(stageName, "invalid boolean in "+key, nil, err)
			}
			fv.Set(reflect.ValueOf(&b))
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return exception.NewPipelineError(stageName, "invalid boolean in "+key, nil, err)
			}
			fv.SetBool(b)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return exception.NewPipelineError(stageName, "invalid integer in "+key, nil, err)
			}
			fv.SetInt(n)
		case reflect.Float64:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return exception.NewPipelineError(stageName, "invalid float in "+key, nil, err)
			}
			fv.SetFloat(f)
		default:
			logger.Debugf("Environment override for %s skipped: unsupported kind %s", key, fv.Kind())
		}
	}
	return nil
}
