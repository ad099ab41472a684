package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/juniverse/sysload/pkg/sysload/logging"
	"github.com/juniverse/sysload/pkg/sysload/types"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

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

// LoadConfig holds the load generator settings.
type LoadConfig struct {
	Fraction float64       `mapstructure:"fraction"`
	Duration time.Duration `mapstructure:"duration"`
}

// Config represents the application configuration.
type Config struct {
	Load    LoadConfig    `mapstructure:"load"`
	Workers int           `mapstructure:"workers"`
	Stagger time.Duration `mapstructure:"stagger"`
	Pin     bool          `mapstructure:"pin"`
	Format  string        `mapstructure:"format"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every default on v. Keys without a default are
// invisible to AutomaticEnv during Unmarshal, so all keys are listed here.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("load.fraction", DefaultLoadFraction)
	v.SetDefault("load.duration", DefaultDuration)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("stagger", DefaultStagger)
	v.SetDefault("pin", false)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // empty means logging.DefaultLogPath
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_age", DefaultLogMaxAge)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.rotation.daily", DefaultLogDailyRotate)
	v.SetDefault("logging.components", map[string]string{
		"cli":     "info",
		"load":    "info",
		"sysinfo": "info",
	})
}

// Configure points v at the config file search path and the SYSLOAD_
// environment namespace. An explicit file overrides the search path.
func Configure(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix("SYSLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// ReadInConfig reads the configured file. A missing file is not an error.
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

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/sysload/config.yaml
//   - $HOME/.config/sysload/config.yaml
//
// Environment variables are prefixed with SYSLOAD_ (e.g., SYSLOAD_LOAD_FRACTION).
func Load() (*Config, error) {
	v := viper.New()
	Configure(v, "")
	if err := ReadInConfig(v); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	f := c.Load.Fraction
	if math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("%w: load.fraction %v is outside [0, 1]", ErrInvalidConfig, f)
	}
	if c.Load.Duration < 0 {
		return fmt.Errorf("%w: load.duration %s is negative", ErrInvalidConfig, c.Load.Duration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	}
	if c.Stagger < 0 {
		return fmt.Errorf("%w: stagger %s is negative", ErrInvalidConfig, c.Stagger)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoggingOptions converts the logging section into a logging.Config.
// consoleLevel is passed through untouched; it comes from CLI verbosity.
func (c *Config) LoggingOptions(consoleLevel string) (logging.Config, error) {
	rotation := logging.DefaultRotationConfig()
	if c.Logging.Rotation.MaxSize != "" {
		size, err := types.ParseSize(c.Logging.Rotation.MaxSize)
		if err != nil {
			return logging.Config{}, fmt.Errorf("logging.rotation.max_size: %w", err)
		}
		rotation.MaxSize = size
	}
	rotation.MaxAge = c.Logging.Rotation.MaxAge
	rotation.MaxBackups = c.Logging.Rotation.MaxBackups
	rotation.Daily = c.Logging.Rotation.Daily

	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Rotation:     rotation,
		Components:   c.Logging.Components,
		ConsoleLevel: consoleLevel,
	}, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "sysload"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "sysload"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a default config file if none exists.
// It returns the file path either way.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigFile()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

func defaultConfigFile() string {
	return fmt.Sprintf(`# sysload configuration

load:
  # Target utilization per worker, 0.0 (idle) to 1.0 (saturated)
  fraction: %.1f
  # How long each worker generates load
  duration: %s

# Worker count; 0 means one per logical processor
workers: %d

# Pause between starting consecutive workers
stagger: %s

# Pin worker N to CPU N (Linux only)
pin: false

# Inventory report format: text, pretty, json, yaml
format: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/sysload/sysload.log)
  path: ""
  rotation:
    max_size: %s
    max_age: %d       # days
    max_backups: %d
    daily: %t
  components:
    cli: info
    load: info
    sysinfo: info
`, DefaultLoadFraction, DefaultDuration, DefaultWorkers, DefaultStagger, DefaultFormat,
		DefaultLogLevel, DefaultLogMaxSize, DefaultLogMaxAge, DefaultLogMaxBackups, DefaultLogDailyRotate)
}
