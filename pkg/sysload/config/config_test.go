package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tempDir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultLoadFraction, cfg.Load.Fraction)
	assert.Equal(t, DefaultDuration, cfg.Load.Duration)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultStagger, cfg.Stagger)
	assert.False(t, cfg.Pin)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, "info", cfg.Logging.Components["load"])
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := isolate(t)
	configDir := filepath.Join(tempDir, ".config", "sysload")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
load:
  fraction: 0.25
  duration: 250ms
workers: 2
stagger: 0s
pin: true
format: json
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Load.Fraction)
	assert.Equal(t, 250*time.Millisecond, cfg.Load.Duration)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, time.Duration(0), cfg.Stagger)
	assert.True(t, cfg.Pin)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := isolate(t)
	xdgDir := filepath.Join(tempDir, "xdg-config")
	require.NoError(t, os.MkdirAll(filepath.Join(xdgDir, "sysload"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdgDir, "sysload", "config.yaml"), []byte("workers: 3\n"), 0o644))
	t.Setenv("XDG_CONFIG_HOME", xdgDir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SYSLOAD_LOAD_FRACTION", "0.5")
	t.Setenv("SYSLOAD_LOAD_DURATION", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Load.Fraction)
	assert.Equal(t, 2*time.Second, cfg.Load.Duration)
}

func TestLoad_MalformedFile(t *testing.T) {
	tempDir := isolate(t)
	configDir := filepath.Join(tempDir, ".config", "sysload")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("load: [unclosed"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Load:    LoadConfig{Fraction: 0.5, Duration: time.Second},
			Stagger: time.Millisecond,
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"fraction zero", func(c *Config) { c.Load.Fraction = 0 }, true},
		{"fraction one", func(c *Config) { c.Load.Fraction = 1 }, true},
		{"fraction above one", func(c *Config) { c.Load.Fraction = 1.01 }, false},
		{"fraction negative", func(c *Config) { c.Load.Fraction = -0.1 }, false},
		{"negative duration", func(c *Config) { c.Load.Duration = -time.Second }, false},
		{"negative workers", func(c *Config) { c.Workers = -1 }, false},
		{"negative stagger", func(c *Config) { c.Stagger = -time.Millisecond }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestFromViper_FlagStyleOverride(t *testing.T) {
	isolate(t)
	v := viper.New()
	Configure(v, "")
	v.Set("load.fraction", 0.75)

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 0.75, cfg.Load.Fraction)
	assert.Equal(t, DefaultDuration, cfg.Load.Duration)
}

func TestLoggingOptions(t *testing.T) {
	cfg := Config{Logging: LoggingConfig{
		Level:    "warn",
		Path:     "/tmp/sysload.log",
		Rotation: RotationConfig{MaxSize: "1MB", MaxAge: 7, MaxBackups: 2, Daily: false},
	}}

	opts, err := cfg.LoggingOptions("debug")
	require.NoError(t, err)
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, "debug", opts.ConsoleLevel)
	assert.Equal(t, int64(1024*1024), opts.Rotation.MaxSize)
	assert.Equal(t, 7, opts.Rotation.MaxAge)
	assert.Equal(t, 2, opts.Rotation.MaxBackups)
	assert.False(t, opts.Rotation.Daily)

	cfg.Logging.Rotation.MaxSize = "lots"
	_, err = cfg.LoggingOptions("")
	assert.Error(t, err)
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, "/custom/config/sysload", dir)
	})

	t.Run("uses HOME/.config otherwise", func(t *testing.T) {
		tempDir := isolate(t)
		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, ".config", "sysload"), dir)
	})
}

func TestWriteDefault(t *testing.T) {
	t.Run("creates a loadable default file", func(t *testing.T) {
		tempDir := isolate(t)

		path, err := WriteDefault()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tempDir, ".config", "sysload", "config.yaml"), path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, DefaultDuration, cfg.Load.Duration)
		assert.Equal(t, DefaultLoadFraction, cfg.Load.Fraction)
	})

	t.Run("does not overwrite an existing file", func(t *testing.T) {
		tempDir := isolate(t)
		configDir := filepath.Join(tempDir, ".config", "sysload")
		require.NoError(t, os.MkdirAll(configDir, 0o755))
		existing := "# mine\nworkers: 1\n"
		require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(existing), 0o644))

		_, err := WriteDefault()
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(configDir, "config.yaml"))
		require.NoError(t, err)
		assert.Equal(t, existing, string(data))
	})
}
