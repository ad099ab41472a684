package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/juniverse/sysload/pkg/sysload/config"
	"github.com/juniverse/sysload/pkg/sysload/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sysload configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/sysload/config.yaml (if set)
  2. ~/.config/sysload/config.yaml

Environment variables override config file settings using the SYSLOAD_ prefix:
  SYSLOAD_LOAD_FRACTION=0.5
  SYSLOAD_LOAD_DURATION=30s
  SYSLOAD_WORKERS=4`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// envOverrides lists the environment variables config show reports.
var envOverrides = []string{
	"SYSLOAD_LOAD_FRACTION",
	"SYSLOAD_LOAD_DURATION",
	"SYSLOAD_WORKERS",
	"SYSLOAD_STAGGER",
	"SYSLOAD_PIN",
	"SYSLOAD_FORMAT",
	"SYSLOAD_LOGGING_LEVEL",
	"SYSLOAD_LOGGING_PATH",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Failed to load configuration: %v", err)
		v := viper.New()
		config.SetDefaults(v)
		if cfg, err = config.FromViper(v); err != nil {
			return err
		}
	}

	showConfig(cmd.OutOrStdout(), cfg, viper.ConfigFileUsed())
	return nil
}

// showConfig renders cfg and any environment overrides.
func showConfig(out io.Writer, cfg *config.Config, file string) {
	if file != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintln(out, "Config file: (using defaults, no file found)")
		fmt.Fprintln(out)
	}

	logPath := cfg.Logging.Path
	if logPath == "" {
		logPath = logging.DefaultLogPath()
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "load.fraction:        %.2f\n", cfg.Load.Fraction)
	fmt.Fprintf(out, "load.duration:        %s\n", cfg.Load.Duration)
	fmt.Fprintf(out, "workers:              %s\n", workersLabel(cfg.Workers))
	fmt.Fprintf(out, "stagger:              %s\n", cfg.Stagger)
	fmt.Fprintf(out, "pin:                  %t\n", cfg.Pin)
	fmt.Fprintf(out, "format:               %s\n", cfg.Format)
	fmt.Fprintf(out, "logging.level:        %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:         %s\n", logPath)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	anyOverrides := false
	for _, name := range envOverrides {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}
}

func workersLabel(n int) string {
	if n <= 0 {
		return "auto (one per logical CPU)"
	}
	return fmt.Sprintf("%d", n)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.CommandContext(cmd.Context(), editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'sysload config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}
	return nil
}
