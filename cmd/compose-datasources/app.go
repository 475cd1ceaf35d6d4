package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/plantarium-platform/compose-datasources/internal/config"
	"github.com/plantarium-platform/compose-datasources/internal/hostapi"
	"github.com/plantarium-platform/compose-datasources/internal/logging"
	"github.com/plantarium-platform/compose-datasources/internal/registry"
	"github.com/plantarium-platform/compose-datasources/internal/scan"
	"github.com/plantarium-platform/compose-datasources/internal/storage"
	"github.com/plantarium-platform/compose-datasources/internal/storage/repos"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"go.uber.org/zap"
)

const hostAPITimeout = 10 * time.Second

// app holds the wired components shared by all commands.
type app struct {
	config       *models.GlobalConfig
	logger       *zap.Logger
	reconciler   *registry.Reconciler
	orchestrator *scan.Orchestrator
	// inMemory is set when no host is configured and writes end with the process.
	inMemory bool
}

// options are command line overrides applied on top of the loaded configuration.
type options struct {
	configPath string
	root       string
	scope      string
}

// newAppWithDI loads the configuration and wires the registry backend, the
// reconciler and the scan orchestrator.
func newAppWithDI(opts options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.root != "" {
		root, err := filepath.Abs(opts.root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project root %s: %w", opts.root, err)
		}
		cfg.Project.RootFolder = root
		cfg.Project.Scope = filepath.Base(root)
	}
	if opts.scope != "" {
		cfg.Project.Scope = opts.scope
	}

	logger, err := logging.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApp(cfg, logger), nil
}

// newApp wires the components for an already loaded configuration.
func newApp(cfg *models.GlobalConfig, logger *zap.Logger) *app {
	var reconciler *registry.Reconciler
	if cfg.Host.URL != "" {
		api := hostapi.NewHostAPIManager(hostapi.HostAPIConfig{
			APIURL:  cfg.Host.URL,
			Token:   cfg.Host.Token,
			Timeout: hostAPITimeout,
		}, logger)
		client := hostapi.NewClient(api, logger)
		reconciler = registry.NewReconciler(client, client, client, client, logger)
		logger.Info("Using host connection registry", zap.String("url", cfg.Host.URL))
	} else {
		db := storage.GetRegistryDB()
		reconciler = registry.NewReconciler(
			repos.NewConnectionRepository(db),
			repos.NewSecretRepository(db),
			registry.NewLogNotifier(logger),
			nil,
			logger,
		)
		logger.Warn("No host configured, records are kept in memory and are lost on exit",
			zap.String("setting", "host.url"), zap.String("env", config.EnvHostURL))
	}

	return &app{
		config:       cfg,
		logger:       logger,
		reconciler:   reconciler,
		orchestrator: scan.NewOrchestrator(cfg.Project.RootFolder, cfg.Project.Scope, cfg.Project.MaxDepth, reconciler, logger),
		inMemory:     cfg.Host.URL == "",
	}
}

// Close stops background work and flushes the logger.
func (a *app) Close() {
	a.reconciler.Close()
	_ = a.logger.Sync()
}
