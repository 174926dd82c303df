package stores

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// TraceRetention prunes old trace records on a schedule. Trace records are
// write-once within the retention window; the sweeper is the only deleter.
type TraceRetention struct {
	store     TraceStore
	maxAge    time.Duration
	scheduler *cron.Cron
	logger    *log.Logger
}

// NewTraceRetention creates a retention sweeper for the given trace store.
// maxAge must be positive.
func NewTraceRetention(store TraceStore, maxAge time.Duration, logger *log.Logger) (*TraceRetention, error) {
	if store == nil {
		return nil, fmt.Errorf("trace store is nil")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %v", maxAge)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &TraceRetention{
		store:     store,
		maxAge:    maxAge,
		scheduler: cron.New(),
		logger:    logger,
	}, nil
}

// Start schedules the daily sweep. The first sweep runs on schedule, not at
// startup.
func (r *TraceRetention) Start() error {
	if _, err := r.scheduler.AddFunc("@daily", r.Sweep); err != nil {
		return fmt.Errorf("failed to schedule trace retention: %w", err)
	}
	r.scheduler.Start()
	return nil
}

// Stop halts the scheduler. A sweep already in flight completes.
func (r *TraceRetention) Stop() {
	r.scheduler.Stop()
}

// Sweep deletes trace records older than the retention window.
func (r *TraceRetention) Sweep() {
	cutoff := time.Now().Add(-r.maxAge)
	deleted, err := r.store.DeleteTracesBefore(cutoff)
	if err != nil {
		r.logger.Printf("[TRACE_RETENTION] Sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		r.logger.Printf("[TRACE_RETENTION] Deleted %d trace records older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}
