// Package load generates artificial CPU load. One worker per logical
// processor spins in a busy loop for a fixed duration, sleeping briefly at
// 100ms-aligned wall-clock instants to throttle itself to a target fraction
// of full utilization.
//
// The throttle check is deliberately coarse: a worker only sleeps when it
// happens to observe a clock reading that is an exact multiple of 100ms, so
// the achieved duty cycle approximates the requested fraction rather than
// tracking it precisely.
package load

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/juniverse/sysload/pkg/sysload/logging"
)

var logger = logging.Get("load")

// ThrottleTick is the wall-clock alignment at which workers consider sleeping.
const ThrottleTick = 100 * time.Millisecond

var (
	// ErrInvalidConfig is returned for load fractions outside [0, 1] or
	// negative durations.
	ErrInvalidConfig = errors.New("invalid load config")

	// ErrInterruptedWhileThrottling is reported when a worker's throttle
	// sleep is cut short by cancellation. It is logged by the worker and
	// never propagated to the orchestrator.
	ErrInterruptedWhileThrottling = errors.New("interrupted while throttling")

	// ErrPinningUnsupported is returned on platforms without CPU affinity.
	ErrPinningUnsupported = errors.New("cpu pinning not supported on this platform")
)

// Config is the immutable load specification shared by every worker.
type Config struct {
	// LoadFraction is the target utilization, 0.0 (idle) to 1.0 (saturated).
	LoadFraction float64

	// Duration is how long each worker runs, measured from its own start.
	// Only millisecond resolution is meaningful.
	Duration time.Duration
}

// NewConfig validates and returns a Config.
func NewConfig(loadFraction float64, duration time.Duration) (Config, error) {
	cfg := Config{LoadFraction: loadFraction, Duration: duration}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports whether the config is usable.
func (c Config) Validate() error {
	if math.IsNaN(c.LoadFraction) || c.LoadFraction < 0 || c.LoadFraction > 1 {
		return fmt.Errorf("%w: load fraction %v is outside [0, 1]", ErrInvalidConfig, c.LoadFraction)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration %s is negative", ErrInvalidConfig, c.Duration)
	}
	return nil
}

// ThrottleSleep returns how long a worker sleeps at each observed throttle
// tick: floor((1 - loadFraction) * 100) milliseconds. A fraction of 1.0
// yields 0 and a fraction of 0.0 yields 100ms.
func ThrottleSleep(loadFraction float64) time.Duration {
	ms := math.Floor((1 - loadFraction) * 100)
	return time.Duration(ms) * time.Millisecond
}
