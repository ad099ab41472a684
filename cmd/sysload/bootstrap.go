package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juniverse/sysload/pkg/sysload/config"
	"github.com/juniverse/sysload/pkg/sysload/logging"
)

// consoleLevel maps CLI verbosity to the stderr log level. Worker
// interruptions are logged at error level and stay visible unless the
// console is silenced entirely.
func consoleLevel(verbose, quiet bool) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return "warn"
	}
}

// initializeLogging is the PersistentPreRunE hook. A log file that cannot
// be opened is reported and the run continues with console logging only. A bad
// configuration is left for the command itself to report.
func initializeLogging(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return nil
	}

	logCfg, err := cfg.LoggingOptions(consoleLevel(getVerbose(), getQuiet()))
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := logging.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: log file disabled: %v\n", err)
		return nil
	}

	log := logging.Get("cli")
	log.Debug("configuration loaded",
		"config_file", configFileUsed(),
		"load", cfg.Load.Fraction,
		"duration", cfg.Load.Duration,
		"workers", cfg.Workers,
	)
	return nil
}

// shutdownLogging is the PersistentPostRun hook.
func shutdownLogging(cmd *cobra.Command, args []string) {
	if err := logging.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// configFileUsed returns the config file path in effect, or "" for defaults.
func configFileUsed() string {
	if cfgFile != "" {
		return cfgFile
	}
	path, err := config.ConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
