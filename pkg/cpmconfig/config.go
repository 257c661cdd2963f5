// Package cpmconfig is the viper-backed configuration layer: a
// `--config` file (yaml/json/toml) layered over defaults and under
// environment variables, grounded on the teacher's pkg/config.
package cpmconfig

import (
	"bytes"
	"os"

	"github.com/spf13/viper"

	"github.com/aaronmcdaid/cpm/internal/bloomtree"
	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// Config holds every setting the percolation binary can take from a
// config file, layered under CLI-flag and environment overrides.
type Config struct {
	Percolation PercolationConfig `mapstructure:"percolation"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Log         LogConfig         `mapstructure:"log"`
}

// PercolationConfig holds the algorithm-tuning knobs.
type PercolationConfig struct {
	RebuildBloom bool  `mapstructure:"rebuild_bloom"`
	BloomBits    int64 `mapstructure:"bloom_bits"`
}

// DatabaseConfig holds the run-ledger connection. An empty DSN disables
// the ledger entirely (it is always an optional, best-effort component).
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// StorageConfig mirrors internal/storage.Config, kept as its own type
// here so cpmconfig does not need to import internal/storage.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	SecretID  string `mapstructure:"secret_id"`
	SecretKey string `mapstructure:"secret_key"`
	Domain    string `mapstructure:"domain"`
	Scheme    string `mapstructure:"scheme"`
	LocalPath string `mapstructure:"local_path"`
}

// TelemetryConfig controls OpenTelemetry wiring; fields beyond Enabled
// are filled from OTEL_* environment variables by pkg/telemetry itself.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// LogConfig controls cpmlog.DefaultLogger construction.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configPath (if non-empty) or the standard search locations,
// applies defaults, then lets environment variables override both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("cpm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cpm")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file: defaults + env only
		} else if os.IsNotExist(err) {
			// explicit --config path doesn't exist: defaults + env only
		} else {
			return nil, cpmerrors.Wrap(cpmerrors.CodeConfigError, "reading config file", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeConfigError, "unmarshalling config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromReader loads configuration of the given type (yaml/json/toml)
// directly from content, bypassing the filesystem search — used by tests.
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeConfigError, "reading config", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeConfigError, "unmarshalling config", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("percolation.rebuild_bloom", false)
	v.SetDefault("percolation.bloom_bits", bloomtree.DefaultBits)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "./output")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "cpm")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}

// Validate rejects configuration combinations that would fail later in a
// more confusing way (e.g. deep inside the storage or GORM layer).
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local", "cos", "":
	default:
		return cpmerrors.New(cpmerrors.CodeConfigError, "unsupported storage type: "+c.Storage.Type)
	}
	if c.Storage.Type == "cos" {
		if c.Storage.Bucket == "" || c.Storage.Region == "" {
			return cpmerrors.New(cpmerrors.CodeConfigError, "cos storage requires bucket and region")
		}
	}
	if c.Percolation.BloomBits < 0 {
		return cpmerrors.New(cpmerrors.CodeConfigError, "bloom_bits must be >= 0")
	}
	return nil
}
