package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juniverse/sysload/pkg/sysload/config"
	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

func testProvider() *sysinfo.StaticProvider {
	return &sysinfo.StaticProvider{Snapshot: sysinfo.Snapshot{
		Processor: sysinfo.ProcessorTopology{PhysicalCores: 1, LogicalCores: 2},
		Memory: sysinfo.MemoryStats{
			AvailableBytes: 1 << 30,
			TotalBytes:     2 << 30,
			SwapUsedBytes:  0,
			SwapTotalBytes: 1 << 30,
		},
		FileStores: []sysinfo.FileStore{{
			Name:        "/",
			Description: "Local Disk",
			Type:        "ext4",
			UsableBytes: 50 << 30,
			TotalBytes:  100 << 30,
			Volume:      "/dev/sda1",
			Mount:       "/",
		}},
	}}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	cfg.Load.Duration = 100 * time.Millisecond
	return cfg
}

func TestWriteInventory(t *testing.T) {
	var buf bytes.Buffer
	err := writeInventory(context.Background(), &buf, testProvider(), "text")
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Checking Processor...\n"))
	assert.Contains(t, out, " 1 physical CPU core(s)\n")
	assert.Contains(t, out, " 2 logical CPU(s)\n")
	assert.Contains(t, out, " Memory: 1.0 GiB/2.0 GiB\n")
	assert.Contains(t, out, " / (Local Disk) [ext4] 50 GiB of 100 GiB free (50.0%) is /dev/sda1 and is mounted at /\n")
}

func TestWriteInventory_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeInventory(context.Background(), &buf, testProvider(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available: json, pretty, text, yaml")
	assert.Empty(t, buf.String())
}

func TestWriteInventory_ProviderError(t *testing.T) {
	p := &sysinfo.StaticProvider{Err: errors.New("no /proc")}
	err := writeInventory(context.Background(), &bytes.Buffer{}, p, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collecting inventory")
}

func TestRunLoad(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(t)

	err := runLoad(context.Background(), &buf, cfg, testProvider(), true)
	require.NoError(t, err)

	out := buf.String()
	report, run, found := strings.Cut(out, "\n\n")
	require.True(t, found, "report and run sections are separated by a blank line")
	assert.True(t, strings.HasPrefix(report, "Checking Processor..."))

	lines := strings.Split(strings.TrimSuffix(run, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Starting worker threads...", lines[0])
	assert.ElementsMatch(t, []string{" Started Thread0", " Started Thread1"}, lines[1:3])
	assert.Equal(t, "Done!", lines[3])
}

func TestRunLoad_NoReportWithOverride(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(t)
	cfg.Workers = 3
	cfg.Load.Fraction = 0.5

	err := runLoad(context.Background(), &buf, cfg, testProvider(), false)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Starting worker threads...\n"))
	assert.Equal(t, 3, strings.Count(out, " Started Thread"))
	assert.True(t, strings.HasSuffix(out, "Done!\n"))
}

func TestRunLoad_Interrupted(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(t)
	cfg.Load.Duration = 10 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	err := runLoad(ctx, &buf, cfg, testProvider(), false)
	require.NoError(t, err, "interruption is not a failure")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, strings.HasSuffix(buf.String(), "Done!\n"))
}

func TestShowConfig(t *testing.T) {
	for _, name := range envOverrides {
		t.Setenv(name, "")
	}

	var buf bytes.Buffer
	showConfig(&buf, testConfig(t), "")

	out := buf.String()
	assert.Contains(t, out, "Config file: (using defaults, no file found)")
	assert.Contains(t, out, "load.fraction:        1.00\n")
	assert.Contains(t, out, "workers:              auto (one per logical CPU)\n")
	assert.Contains(t, out, "(none)")
}

func TestShowConfig_EnvOverride(t *testing.T) {
	for _, name := range envOverrides {
		t.Setenv(name, "")
	}
	t.Setenv("SYSLOAD_WORKERS", "4")

	var buf bytes.Buffer
	showConfig(&buf, testConfig(t), "/tmp/sysload.yaml")

	out := buf.String()
	assert.Contains(t, out, "Config file: /tmp/sysload.yaml")
	assert.Contains(t, out, "SYSLOAD_WORKERS=4\n")
	assert.NotContains(t, out, "(none)")
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	runVersion(cmd, nil)

	assert.True(t, strings.HasPrefix(buf.String(), "sysload dev\n"))
	assert.Contains(t, buf.String(), "commit:  none")
}
