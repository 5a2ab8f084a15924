package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	defaultLogLevel        = "INFO"
	defaultLogFormat       = "text"
	defaultLogOutput       = "stdout"
	defaultStoreBackend    = "badger"
	defaultAPIHost         = "127.0.0.1"
	defaultAPIPort         = 7464
	defaultShutdownTimeout = 30 * time.Second
)

// GetDefaultConfig returns a fully populated configuration with all
// default values.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Output: defaultLogOutput,
		},
		Authz: AuthzConfig{
			Enforcing: true,
		},
		Store: StoreConfig{
			Backend: defaultStoreBackend,
			Path:    GetDefaultStorePath(),
		},
		API: APIConfig{
			Enabled: true,
			Host:    defaultAPIHost,
			Port:    defaultAPIPort,
			Metrics: true,
		},
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// ApplyDefaults fills in zero values left by a partial config file.
// Boolean options are defaulted through viper at load time since a
// false value is indistinguishable from unset here.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = defaultLogOutput
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = defaultStoreBackend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = GetDefaultStorePath()
	}
	if cfg.API.Host == "" {
		cfg.API.Host = defaultAPIHost
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = defaultAPIPort
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

// GetConfigDir returns the configuration directory,
// $XDG_CONFIG_HOME/xrealmd (falling back to ~/.config/xrealmd).
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "xrealmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "xrealmd")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetDefaultStorePath returns the default attribute database directory,
// $XDG_DATA_HOME/xrealmd/attrdb (falling back to
// ~/.local/share/xrealmd/attrdb).
func GetDefaultStorePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "xrealmd", "attrdb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "attrdb")
	}
	return filepath.Join(home, ".local", "share", "xrealmd", "attrdb")
}
