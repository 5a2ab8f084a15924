package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/crossrealm/xrealmd/internal/logger"
	"github.com/crossrealm/xrealmd/pkg/api"
	"github.com/crossrealm/xrealmd/pkg/authz"
	"github.com/crossrealm/xrealmd/pkg/config"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the xrealmd server",
	Long: `Start the xrealmd cross-realm authorization server.

The server opens the attribute store, loads the authorization policy,
and serves the decision and administration API over HTTP.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/xrealmd/config.yaml.

Examples:
  # Start with default config location
  xrealmd start

  # Start with custom config file
  xrealmd start --config /etc/xrealmd/config.yaml

  # Start in audit-only mode via environment override
  XREALMD_AUTHZ_ENFORCING=false xrealmd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Open the attribute store
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open attribute store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("attribute store close error", logger.KeyError, err.Error())
		}
	}()
	logger.Info("Attribute store ready",
		logger.KeyBackend, cfg.Store.Backend,
		logger.KeyPath, cfg.Store.Path,
	)

	// Decision metrics (if enabled)
	var metrics *authz.DecisionMetrics
	if cfg.API.Metrics {
		metrics = authz.NewDecisionMetrics(nil)
		logger.Info("Metrics enabled", "endpoint", "/metrics")
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Build the authorization policy
	authzCfg := authz.Config{
		Enforcing:     cfg.Authz.Enforcing,
		AllowedRealms: cfg.Authz.AllowedRealms,
	}
	if err := authzCfg.Validate(); err != nil {
		return err
	}
	engine := authz.NewEngine(authzCfg, store, authz.WithMetrics(metrics))
	policy := authz.NewPolicy(engine)
	defer policy.Shutdown()

	if !cfg.API.Enabled {
		return fmt.Errorf("API server is disabled; nothing to serve (set api.enabled: true)")
	}

	router := api.NewRouter(policy, store, cfg.API.Metrics)
	server := api.NewServer(cfg.API, router)

	// Start server in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", logger.KeyError, err.Error())
			return err
		}
		if err := <-serverDone; err != nil {
			logger.Error("Server error during shutdown", logger.KeyError, err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", logger.KeyError, err.Error())
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}
