package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"gitlet/core/apperrors"
	"gitlet/core/logging"
	"gitlet/core/objects"
	"gitlet/pkg/storage/worktree"
)

const FileName = "config.toml"

const (
	BackendFiles = "files"
	BackendBolt  = "bolt"
)

const DefaultCompressionThreshold = 1024

// Config is the per-repository configuration stored in config.toml.
type Config struct {
	Repository RepositoryConfig `toml:"repository"`
	Storage    StorageConfig    `toml:"storage"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Log        LogConfig        `toml:"log"`
	Ignore     IgnoreConfig     `toml:"ignore"`
}

type RepositoryConfig struct {
	ID   string `toml:"id"`
	Hash string `toml:"hash"`
}

type StorageConfig struct {
	Backend              string `toml:"backend"`
	CompressionThreshold int    `toml:"compression_threshold"`
}

type CatalogConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type IgnoreConfig struct {
	Patterns []string `toml:"patterns"`
}

// Default returns the configuration written by init.
func Default() *Config {
	return &Config{
		Repository: RepositoryConfig{
			ID:   uuid.NewString(),
			Hash: objects.SHA1.String(),
		},
		Storage: StorageConfig{
			Backend:              BackendFiles,
			CompressionThreshold: DefaultCompressionThreshold,
		},
		Catalog: CatalogConfig{Enabled: true},
		Log:     LogConfig{Level: "warn"},
		Ignore:  IgnoreConfig{Patterns: []string{}},
	}
}

// HashAlgorithm returns the configured digest algorithm.
func (c *Config) HashAlgorithm() (objects.HashAlgorithm, error) {
	return objects.ParseHashAlgorithm(c.Repository.Hash)
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() (logging.LogLevel, error) {
	return logging.ParseLevel(c.Log.Level)
}

// Validate rejects values the repository cannot run with.
func (c *Config) Validate() error {
	if _, err := c.HashAlgorithm(); err != nil {
		return apperrors.NewFieldValidationError("repository.hash", c.Repository.Hash, err.Error())
	}
	switch c.Storage.Backend {
	case BackendFiles, BackendBolt:
	default:
		return apperrors.NewFieldValidationError("storage.backend", c.Storage.Backend, "must be \"files\" or \"bolt\"")
	}
	if c.Storage.CompressionThreshold < 0 {
		return apperrors.NewFieldValidationError("storage.compression_threshold", c.Storage.CompressionThreshold, "must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return apperrors.NewFieldValidationError("log.level", c.Log.Level, err.Error())
	}
	for _, p := range c.Ignore.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return apperrors.NewFieldValidationError("ignore.patterns", p, err.Error())
		}
	}
	return nil
}

// ConfigManager reads and writes a repository's config.toml.
type ConfigManager struct {
	configPath string
	getenv     func(string) string
}

// NewConfigManager creates a manager for the config file inside metaDir.
func NewConfigManager(metaDir string) *ConfigManager {
	return &ConfigManager{
		configPath: filepath.Join(metaDir, FileName),
		getenv:     os.Getenv,
	}
}

func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// Load reads the config file, falling back to defaults when it is missing,
// then applies GITLET_* environment overrides.
func (cm *ConfigManager) Load() (*Config, error) {
	cfg := Default()
	cfg.Repository.ID = ""

	data, err := os.ReadFile(cm.configPath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", cm.configPath, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", cm.configPath, err)
	}

	cm.applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the config file.
func (cm *ConfigManager) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return worktree.WriteFileAtomic(cm.configPath, data, 0644)
}

func (cm *ConfigManager) applyEnv(cfg *Config) {
	if v := cm.getenv("GITLET_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := cm.getenv("GITLET_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := cm.getenv("GITLET_CATALOG"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Catalog.Enabled = enabled
		}
	}
}
