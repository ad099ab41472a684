package tuner

// maxWorkers caps the worker count; each worker holds an OS thread.
const maxWorkers = 1024

// Plan is the calculated worker pool layout.
type Plan struct {
	// Workers is the number of load workers to start.
	Workers int

	// GoMaxProcs is the GOMAXPROCS value the run needs so that every worker
	// can be scheduled concurrently. Zero means the current setting suffices.
	GoMaxProcs int
}

// Calculate returns the default plan: one worker per logical CPU, at least one.
func Calculate(resources Resources) Plan {
	return CalculateWithOverrides(resources, 0)
}

// CalculateWithOverrides applies a user worker override to the plan.
// An override greater than 0 replaces the logical CPU count (still capped
// at maxWorkers); 0 or negative keeps the detected value.
func CalculateWithOverrides(resources Resources, workerOverride int) Plan {
	workers := resources.LogicalCPUs
	if workerOverride > 0 {
		workers = workerOverride
	}
	workers = max(workers, 1)
	workers = min(workers, maxWorkers)

	plan := Plan{Workers: workers}
	if resources.GoMaxProcs > 0 && workers > resources.GoMaxProcs {
		plan.GoMaxProcs = workers
	}
	return plan
}
