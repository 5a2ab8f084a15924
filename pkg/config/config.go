// Package config loads and validates the xrealmd configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (XREALMD_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// The loaded Config is immutable for the process lifetime: it is built
// once at startup, shared read-only afterwards, and released only at
// shutdown.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the xrealmd process configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Authz holds the authorization policy settings consumed by the
	// decision engine.
	Authz AuthzConfig `mapstructure:"authz" yaml:"authz"`

	// Store configures the principal attribute store backend.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// API configures the admin/decision HTTP server.
	API APIConfig `mapstructure:"api" yaml:"api"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// AuthzConfig holds the cross-realm authorization policy.
type AuthzConfig struct {
	// Enforcing selects enforcing mode (true, the default) or
	// audit-only mode (false): failed checks are allowed but reported.
	Enforcing bool `mapstructure:"enforcing" yaml:"enforcing"`

	// AllowedRealms are pre-approved peer realms that never require an
	// attribute lookup. Absent means an empty list, which is valid; a
	// listed realm that is empty is a configuration error.
	AllowedRealms []string `mapstructure:"allowed_realms" validate:"dive,min=1" yaml:"allowed_realms,omitempty"`
}

// StoreConfig configures the attribute store backend.
type StoreConfig struct {
	// Backend selects the store implementation.
	Backend string `mapstructure:"backend" validate:"required,oneof=badger memory" yaml:"backend"`

	// Path is the on-disk directory for persistent backends.
	Path string `mapstructure:"path" yaml:"path"`
}

// APIConfig configures the HTTP server exposing health, metrics, the
// decision endpoint, and ACL attribute administration.
type APIConfig struct {
	// Enabled turns the HTTP server on.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Host is the listen address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the listen port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// Load loads configuration from file, environment, and defaults.
//
// An absent config file is not an error; defaults apply. A present but
// malformed file, or a value that fails validation, fails the load
// entirely — no partial or degraded configuration is ever returned.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration with a helpful error message when an
// explicitly requested config file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  xrealmd init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variables, defaults, and the config
// file location.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the XREALMD_ prefix with underscores,
	// e.g. XREALMD_AUTHZ_ENFORCING=false.
	v.SetEnvPrefix("XREALMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults must be registered with viper so a partial config file
	// inherits them. Enforcing in particular defaults to true; only an
	// explicit "enforcing: false" selects audit mode.
	v.SetDefault("authz.enforcing", true)
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.format", defaultLogFormat)
	v.SetDefault("logging.output", defaultLogOutput)
	v.SetDefault("store.backend", defaultStoreBackend)
	v.SetDefault("store.path", GetDefaultStorePath())
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.host", defaultAPIHost)
	v.SetDefault("api.port", defaultAPIPort)
	v.SetDefault("api.metrics", true)
	v.SetDefault("shutdown_timeout", defaultShutdownTimeout)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/xrealmd/config.yaml
		v.AddConfigPath(GetConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the decode hooks for custom types, currently
// duration strings ("30s", "1m") and comma-separated lists.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
