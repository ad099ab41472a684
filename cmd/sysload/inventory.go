package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/juniverse/sysload/pkg/sysload/output"
	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Print host inventory without generating load",
	Long: `Print the processor, memory and file system inventory and exit.

Formats:
  text    plain report (default)
  pretty  styled report for terminals
  json    machine-readable snapshot
  yaml    machine-readable snapshot`,
	Args: cobra.NoArgs,
	RunE: runInventory,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeInventory(cmd.Context(), cmd.OutOrStdout(), newProvider(), cfg.Format)
}

// writeInventory collects a snapshot from p and writes it in the named format.
func writeInventory(ctx context.Context, out io.Writer, p sysinfo.Provider, format string) error {
	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(output.Available(), ", "))
	}

	snap, err := sysinfo.Collect(ctx, p)
	if err != nil {
		return fmt.Errorf("collecting inventory: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, snap); err != nil {
		return fmt.Errorf("formatting inventory: %w", err)
	}
	_, err = buf.WriteTo(out)
	return err
}
