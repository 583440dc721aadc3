package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultDatabaseFile = "odin.db"
	defaultConfigFile   = "config.toml"
	defaultLogLevel     = "info"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5

	homeEnvVar = "ODIN_HOME"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
}

type StorageConfig struct {
	// Dir is the per-user application data directory; empty means the
	// platform default.
	Dir  string `toml:"dir"`
	File string `toml:"file"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

type LoadOptions struct {
	// ConfigPath overrides the config file location; empty means
	// <data dir>/config.toml.
	ConfigPath string
	// DataDir overrides the resolved data directory (highest precedence).
	DataDir string
}

func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			File: defaultDatabaseFile,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

// Load builds the effective config: defaults, then the config file if one
// exists, then option overrides.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	dataDir, err := ResolveDataDir(opts.DataDir)
	if err != nil {
		return Config{}, err
	}
	cfg.Storage.Dir = dataDir

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = filepath.Join(dataDir, defaultConfigFile)
	}
	if err := applyFile(configPath, &cfg, opts.ConfigPath != ""); err != nil {
		return Config{}, err
	}

	if opts.DataDir != "" {
		cfg.Storage.Dir = opts.DataDir
	}
	if cfg.Storage.File == "" {
		cfg.Storage.File = defaultDatabaseFile
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Storage.Dir == "" {
		return fmt.Errorf("%w: storage dir must not be empty", ErrInvalidConfig)
	}
	if strings.ContainsRune(c.Storage.File, os.PathSeparator) {
		return fmt.Errorf("%w: storage file must be a bare file name", ErrInvalidConfig)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// DatabasePath is the full path of the SQLite file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Storage.Dir, c.Storage.File)
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
	}
}

// ResolveDataDir picks the per-user application data directory:
// explicit override, then ODIN_HOME, then the platform convention.
func ResolveDataDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(homeEnvVar); env != "" {
		return env, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", "Odin"), nil
	}
	dataHome := filepath.Join(home, ".local", "share")
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		dataHome = xdgDataHome
	}
	return filepath.Join(dataHome, "odin"), nil
}

func applyFile(path string, cfg *Config, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, err)
	}
	return nil
}
