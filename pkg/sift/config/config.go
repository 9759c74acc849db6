package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config is the resolved sift configuration.
type Config struct {
	DefaultPath string   `mapstructure:"default_path"`
	Skip        []string `mapstructure:"skip"`
	SkipFile    string   `mapstructure:"skip_file"`
	Format      string   `mapstructure:"format"`

	Index struct {
		Path        string        `mapstructure:"path"`
		BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	} `mapstructure:"index"`

	Hash struct {
		Algorithm string `mapstructure:"algorithm"`
	} `mapstructure:"hash"`

	Workers struct {
		Hash int `mapstructure:"hash"`
		Walk int `mapstructure:"walk"`
	} `mapstructure:"workers"`

	FileTimeout time.Duration `mapstructure:"file_timeout"`

	Duplicates struct {
		IncludeEmpty bool `mapstructure:"include_empty"`
	} `mapstructure:"duplicates"`

	Cache struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"cache"`

	Categories struct {
		Move   string `mapstructure:"move"`
		Delete string `mapstructure:"delete"`
	} `mapstructure:"categories"`

	Manifest struct {
		Enabled       bool   `mapstructure:"enabled"`
		Path          string `mapstructure:"path"`
		RetentionDays int    `mapstructure:"retention_days"`
	} `mapstructure:"manifest"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every default and the environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("skip", DefaultSkip)
	v.SetDefault("skip_file", "")
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("index.path", DefaultIndexPath())
	v.SetDefault("index.busy_timeout", DefaultBusyTimeout)
	v.SetDefault("hash.algorithm", DefaultAlgorithm)
	v.SetDefault("workers.hash", 0)
	v.SetDefault("workers.walk", 0)
	v.SetDefault("file_timeout", time.Duration(0))
	v.SetDefault("duplicates.include_empty", false)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(CacheDir(), "digests"))

	v.SetDefault("categories.move", "")
	v.SetDefault("categories.delete", "")

	v.SetDefault("manifest.enabled", true)
	v.SetDefault("manifest.path", filepath.Join(DataDir(), "manifest"))
	v.SetDefault("manifest.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{})
}

// AddConfigPaths points v at config.yaml in the sift config directories.
func AddConfigPaths(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
	}
}

// ReadInConfig reads the config file, tolerating its absence.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load reads configuration from the default locations and SIFT_* variables.
func Load() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	AddConfigPaths(v)
	if err := ReadInConfig(v); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes v into a Config and expands ~ in path settings.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for _, p := range []*string{
		&cfg.DefaultPath,
		&cfg.SkipFile,
		&cfg.Index.Path,
		&cfg.Cache.Path,
		&cfg.Categories.Move,
		&cfg.Categories.Delete,
		&cfg.Manifest.Path,
		&cfg.Logging.Path,
	} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return &cfg, nil
}

// ConfigDir returns the sift configuration directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a commented default config file and returns its path.
// An existing file is left alone.
func WriteDefault() (string, error) {
	path, err := ConfigFile()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	content := fmt.Sprintf(`# sift configuration

# Directory walked when no path argument is given
default_path: %s

# Relative paths (files or directories) pruned from every walk
skip: []

# Output format: pretty, plain, json, yaml, paths
format: %s

index:
  path: %s
  busy_timeout: 5s

hash:
  # sha512 or sha256
  algorithm: %s

workers:
  hash: 0   # 0 = sized from CPU and memory
  walk: 0

# Per-file hashing deadline, 0 disables it
file_timeout: 0s

duplicates:
  # Group zero-length files together
  include_empty: false

cache:
  enabled: true
  path: %s

# JSON category files used by "sift move" and "sift delete"
categories:
  move: ""
  delete: ""

manifest:
  enabled: true
  path: %s
  retention_days: %d

logging:
  level: info
  # Empty uses $XDG_STATE_HOME/sift/sift.log
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
  components: {}
`, DefaultPath, DefaultFormat, DefaultIndexPath(), DefaultAlgorithm,
		filepath.Join(CacheDir(), "digests"), filepath.Join(DataDir(), "manifest"), DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/sift.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/sift.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// CacheDir returns $XDG_CACHE_HOME/sift.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// DefaultIndexPath returns the default SQLite index location.
func DefaultIndexPath() string {
	return filepath.Join(DataDir(), "index.db")
}

// EnsureDirs creates the data, state and cache directories.
func EnsureDirs() error {
	for _, dir := range []string{DataDir(), StateDir(), CacheDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
