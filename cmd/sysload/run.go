package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/juniverse/sysload/pkg/sysload/config"
	"github.com/juniverse/sysload/pkg/sysload/load"
	"github.com/juniverse/sysload/pkg/sysload/logging"
	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
	"github.com/juniverse/sysload/pkg/sysload/tuner"
)

// runRoot prints the inventory and then runs the load.
func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider := newProvider()
	return runLoad(cmd.Context(), cmd.OutOrStdout(), cfg, provider, !viper.GetBool("no_report"))
}

// runLoad is the body of the root command. An interrupted run is not an
// error; only configuration and startup failures are returned.
func runLoad(ctx context.Context, out io.Writer, cfg *config.Config, provider sysinfo.Provider, report bool) error {
	log := logging.Get("cli")

	if report {
		if err := writeInventory(ctx, out, provider, cfg.Format); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	resources, err := tuner.Detect(ctx, provider)
	if err != nil {
		return err
	}
	plan := tuner.CalculateWithOverrides(resources, cfg.Workers)
	if plan.GoMaxProcs > 0 {
		prev := runtime.GOMAXPROCS(plan.GoMaxProcs)
		log.Debug("raised GOMAXPROCS", "from", prev, "to", plan.GoMaxProcs)
	}

	loadCfg, err := load.NewConfig(cfg.Load.Fraction, cfg.Load.Duration)
	if err != nil {
		return err
	}

	printVerbose("Starting %d workers at load %.2f for %s", plan.Workers, loadCfg.LoadFraction, loadCfg.Duration)

	session, err := load.Run(ctx, out, loadCfg, plan.Workers,
		load.WithStagger(cfg.Stagger),
		load.WithPinning(cfg.Pin),
		load.WithLogger(logging.Get("load")),
	)
	if err != nil {
		return fmt.Errorf("starting load: %w", err)
	}

	// Workers that started late may still be spinning after "Done!".
	session.Wait()

	interrupted := 0
	for _, r := range session.Reports() {
		if r.Interrupted {
			interrupted++
		}
	}
	log.Debug("all workers returned", "run", session.ID, "interrupted", interrupted)
	return nil
}
