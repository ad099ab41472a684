package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/juniverse/sysload/pkg/sysload/config"
	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

var (
	cfgFile string

	// configErr holds a config file read failure until a command runs.
	configErr error

	// newProvider builds the host information source; tests swap it out.
	newProvider = func() sysinfo.Provider { return sysinfo.NewHostProvider() }

	rootCmd = &cobra.Command{
		Use:   "sysload",
		Short: "Print host inventory and generate CPU load",
		Long: `Sysload prints the host's processor, memory and file system inventory,
then keeps every logical processor busy for a fixed duration.

Each worker spins in a busy loop and sleeps at 100ms-aligned instants to
approximate the requested load fraction. Positional arguments are ignored.

Examples:
  sysload                    # Report, then 5s of full load on every CPU
  sysload -l 0.5 -d 30s      # Half load for 30 seconds
  sysload -w 2 --no-report   # Two workers, no inventory
  sysload inventory -f json  # Inventory only, as JSON
  sysload config show        # Show configuration`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: shutdownLogging,
		RunE:              runRoot,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sysload/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", config.DefaultFormat, "inventory format (text, pretty, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output on stderr")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only errors on stderr")

	rootCmd.Flags().Float64P("load", "l", config.DefaultLoadFraction, "target load fraction per worker (0.0-1.0)")
	rootCmd.Flags().DurationP("duration", "d", config.DefaultDuration, "how long each worker runs")
	rootCmd.Flags().IntP("workers", "w", config.DefaultWorkers, "override worker count (0=one per logical CPU)")
	rootCmd.Flags().Duration("stagger", config.DefaultStagger, "pause between worker starts")
	rootCmd.Flags().Bool("pin", false, "pin worker N to CPU N (Linux)")
	rootCmd.Flags().Bool("no-report", false, "skip the inventory report")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("load.fraction", rootCmd.Flags().Lookup("load"))
	_ = viper.BindPFlag("load.duration", rootCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("stagger", rootCmd.Flags().Lookup("stagger"))
	_ = viper.BindPFlag("pin", rootCmd.Flags().Lookup("pin"))
	_ = viper.BindPFlag("no_report", rootCmd.Flags().Lookup("no-report"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	config.Configure(viper.GetViper(), cfgFile)
	configErr = config.ReadInConfig(viper.GetViper())
}

// loadConfig returns the merged and validated configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.FromViper(viper.GetViper())
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

func getVerbose() bool {
	return viper.GetBool("verbose")
}

func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
