package tuner

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

func TestDetect(t *testing.T) {
	p := &sysinfo.StaticProvider{Snapshot: sysinfo.Snapshot{
		Processor: sysinfo.ProcessorTopology{PhysicalCores: 2, LogicalCores: 4},
	}}

	resources, err := Detect(context.Background(), p)
	if err != nil {
		t.Fatalf("Detect() returned error: %v", err)
	}

	if resources.LogicalCPUs != 4 {
		t.Errorf("LogicalCPUs = %d, want 4", resources.LogicalCPUs)
	}
	if resources.PhysicalCores != 2 {
		t.Errorf("PhysicalCores = %d, want 2", resources.PhysicalCores)
	}
	if resources.GoMaxProcs != runtime.GOMAXPROCS(0) {
		t.Errorf("GoMaxProcs = %d, want %d", resources.GoMaxProcs, runtime.GOMAXPROCS(0))
	}
}

func TestDetect_Error(t *testing.T) {
	boom := errors.New("no cpuinfo")
	_, err := Detect(context.Background(), &sysinfo.StaticProvider{Err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Detect() error = %v, want wrapping %v", err, boom)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name        string
		resources   Resources
		wantWorkers int
		wantProcs   int
	}{
		{"one per logical CPU", Resources{LogicalCPUs: 8, GoMaxProcs: 8}, 8, 0},
		{"never zero", Resources{LogicalCPUs: 0, GoMaxProcs: 1}, 1, 0},
		{"capped", Resources{LogicalCPUs: 4096, GoMaxProcs: 4096}, maxWorkers, 0},
		{"raises GOMAXPROCS when limited", Resources{LogicalCPUs: 8, GoMaxProcs: 2}, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.resources)
			if got.Workers != tt.wantWorkers {
				t.Errorf("Workers = %d, want %d", got.Workers, tt.wantWorkers)
			}
			if got.GoMaxProcs != tt.wantProcs {
				t.Errorf("GoMaxProcs = %d, want %d", got.GoMaxProcs, tt.wantProcs)
			}
		})
	}
}

func TestCalculateWithOverrides(t *testing.T) {
	resources := Resources{LogicalCPUs: 8, GoMaxProcs: 8}

	tests := []struct {
		name     string
		override int
		want     int
	}{
		{"no override", 0, 8},
		{"negative ignored", -3, 8},
		{"override below detected", 2, 2},
		{"override above detected", 16, 16},
		{"override capped", 5000, maxWorkers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateWithOverrides(resources, tt.override); got.Workers != tt.want {
				t.Errorf("Workers = %d, want %d", got.Workers, tt.want)
			}
		})
	}
}
