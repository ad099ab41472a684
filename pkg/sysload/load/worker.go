package load

import (
	"context"
	"fmt"
	"time"
)

// Worker is one load-generating thread.
type Worker struct {
	// Name is Thread0, Thread1, ...
	Name string

	// Config is the shared load specification.
	Config Config

	// CPU is the processor index the worker is pinned to when pinning is on.
	CPU int

	// StartTime is set when the worker enters its loop.
	StartTime time.Time
}

// WorkerReport summarizes a finished worker.
type WorkerReport struct {
	Name        string
	Started     time.Time
	Elapsed     time.Duration
	Throttles   int
	Interrupted bool
	Err         error
}

// workerName returns the name of the i-th worker.
func workerName(i int) string {
	return fmt.Sprintf("Thread%d", i)
}

// run executes the busy-with-throttle loop until Config.Duration has elapsed
// since StartTime or a throttle sleep is interrupted.
func (w *Worker) run(ctx context.Context, clock Clock, out *lineWriter) WorkerReport {
	out.Println(" Started " + w.Name)

	pause := ThrottleSleep(w.Config.LoadFraction)
	budget := w.Config.Duration.Milliseconds()

	w.StartTime = clock.Now()
	start := w.StartTime.UnixMilli()

	report := WorkerReport{Name: w.Name, Started: w.StartTime}
	for {
		now := clock.Now().UnixMilli()
		if now-start >= budget {
			break
		}
		if now%ThrottleTick.Milliseconds() != 0 {
			continue
		}

		if err := clock.Sleep(ctx, pause); err != nil {
			report.Interrupted = true
			report.Err = fmt.Errorf("%w: %s: %w", ErrInterruptedWhileThrottling, w.Name, err)
			break
		}
		if pause > 0 {
			report.Throttles++
		}
	}

	report.Elapsed = clock.Now().Sub(w.StartTime)
	return report
}
