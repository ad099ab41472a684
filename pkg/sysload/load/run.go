package load

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/juniverse/sysload/pkg/sysload/logging"
)

// DefaultStagger is the pause between consecutive worker starts. It keeps
// the "Started" lines roughly in order; correctness does not depend on it.
const DefaultStagger = time.Millisecond

// Option configures a run.
type Option func(*options)

type options struct {
	clock   Clock
	stagger time.Duration
	pin     bool
	logger  *logging.Logger
	runID   string
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStagger sets the pause between worker starts.
func WithStagger(d time.Duration) Option {
	return func(o *options) { o.stagger = d }
}

// WithPinning pins worker N to CPU N where the platform supports it.
func WithPinning(pin bool) Option {
	return func(o *options) { o.pin = pin }
}

// WithLogger sets the logger used for worker diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRunID sets the identifier attached to every log line of the run.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}

// Session is a started load run. Run returns once the orchestrator has
// waited out the duration; workers may still be finishing at that point.
type Session struct {
	// ID identifies the run in logs.
	ID string

	// Names lists the workers in start order.
	Names []string

	// Elapsed is the orchestrator's wall time from first start to "Done!".
	Elapsed time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	reports []WorkerReport
}

// Wait blocks until every worker has returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Reports returns the reports of the workers that have finished so far,
// in completion order.
func (s *Session) Reports() []WorkerReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WorkerReport(nil), s.reports...)
}

func (s *Session) record(r WorkerReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

// Run starts workerCount workers sequentially, pausing the stagger between
// starts, then sleeps for cfg.Duration and writes "Done!". It does not join
// the workers; call Session.Wait for that.
//
// Cancelling ctx interrupts the workers' throttle sleeps and cuts the
// orchestrator's wait short. Neither is reported as an error.
func Run(ctx context.Context, out io.Writer, cfg Config, workerCount int, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		clock:   SystemClock{},
		stagger: DefaultStagger,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	log := o.logger.With("run", o.runID)
	lw := &lineWriter{w: out}
	s := &Session{ID: o.runID}

	log.Info("starting load",
		"workers", workerCount,
		"load", cfg.LoadFraction,
		"duration", cfg.Duration,
		"throttle", ThrottleSleep(cfg.LoadFraction),
		"pin", o.pin,
	)

	lw.Println("Starting worker threads...")
	begin := o.clock.Now()

	for i := 0; i < workerCount; i++ {
		w := &Worker{Name: workerName(i), Config: cfg, CPU: i}
		s.Names = append(s.Names, w.Name)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.record(runLocked(ctx, w, o, lw, log))
		}()

		_ = o.clock.Sleep(ctx, o.stagger)
	}

	if err := o.clock.Sleep(ctx, cfg.Duration); err != nil {
		log.Warn("run interrupted", "err", err)
	}

	s.Elapsed = o.clock.Now().Sub(begin)
	lw.Println("Done!")
	log.Info("load finished", "elapsed", s.Elapsed)

	return s, nil
}

// runLocked runs w on a dedicated OS thread. A pinning failure only affects
// this worker, which still runs unpinned.
func runLocked(ctx context.Context, w *Worker, o options, lw *lineWriter, log *logging.Logger) WorkerReport {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	log = log.With("worker", w.Name)

	if o.pin {
		if err := pinToCPU(w.CPU); err != nil {
			level := log.Warn
			if errors.Is(err, ErrPinningUnsupported) {
				level = log.Debug
			}
			level("cpu pinning failed", "cpu", w.CPU, "err", err)
		}
	}

	report := w.run(ctx, o.clock, lw)
	if report.Err != nil {
		log.Error("worker stopped early", "err", report.Err)
	}
	log.Debug("worker finished",
		"elapsed", report.Elapsed,
		"throttles", report.Throttles,
		"interrupted", report.Interrupted,
	)
	return report
}

// lineWriter serializes whole-line writes from concurrent workers.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// Println writes s and a newline as a single write.
func (l *lineWriter) Println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, s+"\n")
}
