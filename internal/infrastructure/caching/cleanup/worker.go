// Package cleanup provides background worker
package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

// Sweeper is one in-memory structure the worker trims on every tick.
type Sweeper interface {
	Name() string
	// Sweep drops expired entries and returns how many were removed and how many remain.
	Sweep(ctx context.Context) (removed, remaining int, err error)
}

// SweepResult is the outcome of one sweeper during one pass.
type SweepResult struct {
	Name      string
	Removed   int
	Remaining int
	Err       error
}

// SweepFunc adapts a function to Sweeper.
type SweepFunc struct {
	Label string
	Fn    func(ctx context.Context) (int, int, error)
}

func (f SweepFunc) Name() string { return f.Label }

func (f SweepFunc) Sweep(ctx context.Context) (int, int, error) { return f.Fn(ctx) }

// Worker handles background cleanup of session state and bookkeeping
type Worker struct {
	sweepers []Sweeper
	config   *Config
	logger   *logging.ChanneledLogger
	reporter *Reporter
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(config *Config, logger *logging.ChanneledLogger, sweepers ...Sweeper) *Worker {
	return &Worker{
		sweepers: sweepers,
		config:   config,
		logger:   logger,
		reporter: NewReporter(nil),
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It blocks until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.CleanupInterval)
	defer ticker.Stop()

	w.logger.System().Info("Cleanup worker started", "interval", w.config.CleanupInterval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Cleanup worker stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single pass over every sweeper.
func (w *Worker) RunOnce(ctx context.Context) []SweepResult {
	start := time.Now()
	results := make([]SweepResult, 0, len(w.sweepers))

	var totalCleaned int
	for _, sweeper := range w.sweepers {
		select {
		case <-ctx.Done():
			return results
		default:
		}

		removed, remaining, err := sweeper.Sweep(ctx)
		results = append(results, SweepResult{Name: sweeper.Name(), Removed: removed, Remaining: remaining, Err: err})
		if err != nil {
			w.logger.System().Error("Cleanup sweep failed", "sweeper", sweeper.Name(), "error", err.Error())
			if w.config.VerboseReporting {
				w.reporter.LogError("Cleanup sweep failed: "+sweeper.Name(), err)
			}
			continue
		}
		totalCleaned += removed
	}

	duration := time.Since(start)
	if w.config.VerboseReporting {
		w.reporter.LogStage("PERIODIC CLEANUP")
		fmt.Fprint(w.reporter.out, w.reporter.GenerateSweepReport(results))
		if totalCleaned > 0 {
			w.reporter.LogSuccess("Cleanup finished: %d items cleaned in %v", totalCleaned, duration)
		} else {
			w.reporter.LogInfo("Cleanup completed - no expired items found (%v)", duration)
		}
	}
	if totalCleaned > 0 {
		w.logger.System().Info("Cleanup finished", "cleaned", totalCleaned, "sweepers", len(w.sweepers), "duration", duration)
	} else {
		w.logger.System().Debug("Cleanup completed, nothing expired", "duration", duration)
	}
	return results
}
