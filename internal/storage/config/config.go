// Package config holds the per-connection storage configuration and its
// lookup from the application's adapter block.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	appconfig "github.com/tidewell/aisclean/internal/config"
)

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	// Type of storage (e.g. "gcs", "local").
	Type string `yaml:"type"`
	// BucketName is the default bucket for operations.
	BucketName string `yaml:"bucket_name"`
	// CredentialsFile is the path to a credentials file (service account
	// key for GCS).
	CredentialsFile string `yaml:"credentials_file"`
	// BaseDir is the base directory for local file system operations.
	BaseDir string `yaml:"base_dir"`
}

// Lookup decodes the named storage connection from the application's
// adapter configuration block.
func Lookup(cfg *appconfig.Config, name string) (StorageConfig, error) {
	var out StorageConfig

	storageBlock, ok := cfg.Aisclean.AdapterConfigs["storage"].(map[string]interface{})
	if !ok {
		return out, fmt.Errorf("invalid 'storage' configuration format: expected map[string]interface{}")
	}
	namedConfig, ok := storageBlock[name]
	if !ok {
		return out, fmt.Errorf("storage configuration for name '%s' not found", name)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &out,
		TagName: "yaml",
	})
	if err != nil {
		return out, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(namedConfig); err != nil {
		return out, fmt.Errorf("failed to decode storage config for '%s': %w", name, err)
	}
	return out, nil
}
