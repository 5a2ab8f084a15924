package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	// Point the config dir somewhere empty so no user config interferes.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Authz.Enforcing {
		t.Error("expected enforcing to default to true")
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "badger")
	}
	if cfg.API.Port != 7464 {
		t.Errorf("API.Port = %d, want 7464", cfg.API.Port)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: DEBUG
  format: json
authz:
  enforcing: false
  allowed_realms:
    - WEST.EXAMPLE.COM
    - FAR.EXAMPLE.COM
store:
  backend: memory
api:
  port: 9999
shutdown_timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Logging.Level = %q, want DEBUG", cfg.Logging.Level)
	}
	if cfg.Authz.Enforcing {
		t.Error("expected explicit enforcing: false to select audit mode")
	}
	if len(cfg.Authz.AllowedRealms) != 2 || cfg.Authz.AllowedRealms[0] != "WEST.EXAMPLE.COM" {
		t.Errorf("AllowedRealms = %v", cfg.Authz.AllowedRealms)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("API.Port = %d, want 9999", cfg.API.Port)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_PartialFileInheritsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: WARN
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("Logging.Level = %q, want WARN", cfg.Logging.Level)
	}
	if !cfg.Authz.Enforcing {
		t.Error("expected enforcing to default to true when omitted")
	}
	if cfg.API.Port != 7464 {
		t.Errorf("API.Port = %d, want default 7464", cfg.API.Port)
	}
}

func TestLoad_InvalidValueFailsEntirely(t *testing.T) {
	path := writeConfigFile(t, `
store:
  backend: redis
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected invalid backend to fail the load, got nil error")
	}
}

func TestLoad_MalformedFileFailsEntirely(t *testing.T) {
	path := writeConfigFile(t, "{not yaml: [")

	if _, err := Load(path); err == nil {
		t.Fatal("expected malformed YAML to fail the load, got nil error")
	}
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for explicitly requested missing config file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	original := GetDefaultConfig()
	original.Authz.AllowedRealms = []string{"WEST.EXAMPLE.COM"}
	original.Authz.Enforcing = false

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Authz.Enforcing {
		t.Error("expected enforcing: false to survive the round trip")
	}
	if len(loaded.Authz.AllowedRealms) != 1 || loaded.Authz.AllowedRealms[0] != "WEST.EXAMPLE.COM" {
		t.Errorf("AllowedRealms = %v, want [WEST.EXAMPLE.COM]", loaded.Authz.AllowedRealms)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
	if cfg.API.Port != 7464 {
		t.Errorf("API.Port = %d, want 7464", cfg.API.Port)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestGetDefaultStorePath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	want := filepath.Join(dir, "xrealmd", "attrdb")
	if got := GetDefaultStorePath(); got != want {
		t.Errorf("GetDefaultStorePath() = %q, want %q", got, want)
	}
}
