// Package config provides configuration management for sysload.
package config

import "time"

// Default configuration values. Running with no config file, environment or
// flags reproduces these exactly.
const (
	// DefaultLoadFraction is the target utilization per worker, 0.0 to 1.0.
	DefaultLoadFraction = 1.0

	// DefaultDuration is how long each worker generates load.
	DefaultDuration = 5000 * time.Millisecond

	// DefaultStagger is the pause between starting consecutive workers.
	DefaultStagger = time.Millisecond

	// DefaultWorkers of zero means one worker per logical processor.
	DefaultWorkers = 0

	// DefaultFormat is the inventory report format.
	DefaultFormat = "text"
)

// Logging defaults.
const (
	DefaultLogLevel       = "info"
	DefaultLogMaxSize     = "10MB"
	DefaultLogMaxAge      = 30
	DefaultLogMaxBackups  = 5
	DefaultLogDailyRotate = true
)
