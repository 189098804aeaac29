// Package config loads and validates kernel-validator service configuration.
//
// Configuration is layered the way the teacher's own services expect to be
// operated: defaults, then an optional config file, then environment
// variables (CERTEN_KERNEL_* prefix), with environment variables always
// winning. Unlike the teacher's pkg/config, which reads os.Getenv directly
// field by field, this package delegates layering and binding to viper and
// structural validation to go-playground/validator so that required fields,
// ranges, and formats are declared once as struct tags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the kernel-validator service.
type Config struct {
	// Service identity.
	ValidatorID string `mapstructure:"validator_id" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat   string `mapstructure:"log_format" validate:"required,oneof=json console"`

	// HTTP surface for bundle submission, epoch queries, and health/metrics.
	ListenAddr  string `mapstructure:"listen_addr" validate:"required,hostname_port"`
	MetricsAddr string `mapstructure:"metrics_addr" validate:"required,hostname_port"`

	// Kernel execution parameters.
	KernelHashHex string `mapstructure:"kernel_hash_hex" validate:"required,len=64,hexadecimal"`

	// Validator Ed25519 identity used when this node co-signs epoch bundles.
	Ed25519KeyPath string `mapstructure:"ed25519_key_path" validate:"required"`

	// Primary epoch-history store (cometbft-db backed).
	DataDir   string `mapstructure:"data_dir" validate:"required"`
	DBBackend string `mapstructure:"db_backend" validate:"required,oneof=goleveldb badgerdb memdb"`

	// Secondary audit/query store.
	PostgresURL         string        `mapstructure:"postgres_url"`
	PostgresRequired    bool          `mapstructure:"postgres_required"`
	PostgresMaxOpenConn int           `mapstructure:"postgres_max_open_conns" validate:"min=1"`
	PostgresMaxIdleConn int           `mapstructure:"postgres_max_idle_conns" validate:"min=0"`
	PostgresMaxLifetime time.Duration `mapstructure:"postgres_max_lifetime"`

	// Rate limiting.
	RateLimitRequestsPerMinute int `mapstructure:"rate_limit_per_minute" validate:"min=1"`

	CORSOrigins []string `mapstructure:"cors_origins"`
}

const envPrefix = "CERTEN_KERNEL"

// Load layers defaults, an optional config file, and environment variables
// into a Config and validates the result. path is an optional config file
// path; an empty string skips file loading.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("listen_addr", "0.0.0.0:8080")
	v.SetDefault("metrics_addr", "0.0.0.0:9090")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("db_backend", "goleveldb")
	v.SetDefault("postgres_required", false)
	v.SetDefault("postgres_max_open_conns", 10)
	v.SetDefault("postgres_max_idle_conns", 5)
	v.SetDefault("postgres_max_lifetime", 30*time.Minute)
	v.SetDefault("rate_limit_per_minute", 600)
}

func validate(cfg *Config) error {
	validatorInstance := validator.New()
	if err := validatorInstance.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if cfg.PostgresRequired && cfg.PostgresURL == "" {
		return fmt.Errorf("config: postgres_url is required when postgres_required is true")
	}
	return nil
}
