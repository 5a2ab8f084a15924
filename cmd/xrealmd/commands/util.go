package commands

import (
	"fmt"

	"github.com/crossrealm/xrealmd/internal/logger"
	"github.com/crossrealm/xrealmd/pkg/authz"
	"github.com/crossrealm/xrealmd/pkg/config"
	badgerstore "github.com/crossrealm/xrealmd/pkg/store/badger"
	"github.com/crossrealm/xrealmd/pkg/store/memory"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// attributeBackend is the full store surface the CLI needs: decision
// lookups, attribute administration, and a lifecycle.
type attributeBackend interface {
	authz.AttributeStore
	authz.AttributeAdmin
	Close() error
}

// openStore opens the configured attribute store backend.
func openStore(cfg *config.Config) (attributeBackend, error) {
	switch cfg.Store.Backend {
	case "badger":
		store, err := badgerstore.Open(badgerstore.Options{Path: cfg.Store.Path})
		if err != nil {
			return nil, err
		}
		logger.Debug("attribute store opened",
			logger.KeyBackend, cfg.Store.Backend,
			logger.KeyPath, cfg.Store.Path,
		)
		return store, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
