// Package tuner plans the load generator's worker pool from the detected
// processor topology. By default there is one worker per logical processor.
package tuner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

// Resources contains the detected resources relevant to worker planning.
type Resources struct {
	// LogicalCPUs is the number of logical processors reported by the host.
	LogicalCPUs int

	// PhysicalCores is the number of physical cores.
	PhysicalCores int

	// GoMaxProcs is the runtime's current GOMAXPROCS setting.
	GoMaxProcs int
}

// Detect queries p for the processor topology.
func Detect(ctx context.Context, p sysinfo.Provider) (Resources, error) {
	topo, err := p.Topology(ctx)
	if err != nil {
		return Resources{}, fmt.Errorf("detecting processor topology: %w", err)
	}

	return Resources{
		LogicalCPUs:   topo.LogicalCores,
		PhysicalCores: topo.PhysicalCores,
		GoMaxProcs:    runtime.GOMAXPROCS(0),
	}, nil
}
