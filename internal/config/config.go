package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/plantarium-platform/compose-datasources/pkg/models"
	"gopkg.in/yaml.v2"
)

// Environment variables overriding the configuration file.
const (
	EnvProjectRoot = "COMPOSE_DS_PROJECT_ROOT"
	EnvScope       = "COMPOSE_DS_SCOPE"
	EnvMaxDepth    = "COMPOSE_DS_MAX_DEPTH"
	EnvHostURL     = "COMPOSE_DS_HOST_URL"
	EnvHostToken   = "COMPOSE_DS_HOST_TOKEN"
	EnvLogLevel    = "COMPOSE_DS_LOG_LEVEL"
	EnvLogFile     = "COMPOSE_DS_LOG_FILE"
)

const (
	defaultMaxDepth   = 2
	defaultLogLevel   = "info"
	defaultMaxSize    = 10
	defaultMaxBackups = 3
	defaultMaxAge     = 28
)

// Load reads the yaml configuration at path, then applies .env and environment
// overrides and fills defaults. An empty path or a missing file is not an error.
func Load(path string) (*models.GlobalConfig, error) {
	config := &models.GlobalConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	// Variables already set in the environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := applyDefaults(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *models.GlobalConfig) error {
	overrideString(&config.Project.RootFolder, EnvProjectRoot)
	overrideString(&config.Project.Scope, EnvScope)
	overrideString(&config.Host.URL, EnvHostURL)
	overrideString(&config.Host.Token, EnvHostToken)
	overrideString(&config.Logging.Level, EnvLogLevel)
	overrideString(&config.Logging.File, EnvLogFile)

	if value, ok := os.LookupEnv(EnvMaxDepth); ok && value != "" {
		depth, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxDepth, value, err)
		}
		config.Project.MaxDepth = depth
	}
	return nil
}

func applyDefaults(config *models.GlobalConfig) error {
	if config.Project.RootFolder == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		config.Project.RootFolder = wd
	}
	root, err := filepath.Abs(config.Project.RootFolder)
	if err != nil {
		return fmt.Errorf("failed to resolve project root %s: %w", config.Project.RootFolder, err)
	}
	config.Project.RootFolder = root

	if config.Project.Scope == "" {
		config.Project.Scope = filepath.Base(root)
	}
	if config.Project.MaxDepth <= 0 {
		config.Project.MaxDepth = defaultMaxDepth
	}

	if config.Logging.Level == "" {
		config.Logging.Level = defaultLogLevel
	}
	if config.Logging.MaxSize <= 0 {
		config.Logging.MaxSize = defaultMaxSize
	}
	if config.Logging.MaxBackups <= 0 {
		config.Logging.MaxBackups = defaultMaxBackups
	}
	if config.Logging.MaxAge <= 0 {
		config.Logging.MaxAge = defaultMaxAge
	}
	return nil
}

func overrideString(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}
