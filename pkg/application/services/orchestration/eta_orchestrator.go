package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/dto"
	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/events"
)

// ErrRunInProgress is returned when a run is requested while another is active
var ErrRunInProgress = errors.New("eta run already in progress")

// Run triggers recorded in the event journal
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// InputSource supplies the tables of one run
type InputSource interface {
	Load(ctx context.Context) (eta.Inputs, error)
}

// ETAOrchestrator loads inputs, runs the engine and persists the snapshot
type ETAOrchestrator struct {
	engine *eta.Engine
	source InputSource
	store  repositories.RecommendationStore
	logger *zap.Logger
	events events.EventStore

	running sync.Mutex
	mu      sync.RWMutex
	last    *RunReport
}

// NewETAOrchestrator creates a new orchestrator. store may be nil, in which
// case results are returned but not persisted.
func NewETAOrchestrator(
	engine *eta.Engine,
	source InputSource,
	store repositories.RecommendationStore,
	logger *zap.Logger,
) *ETAOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ETAOrchestrator{
		engine: engine,
		source: source,
		store:  store,
		logger: logger,
	}
}

// WithEvents records run lifecycle and snapshot events in store
func (o *ETAOrchestrator) WithEvents(store events.EventStore) *ETAOrchestrator {
	o.events = store
	return o
}

// Events returns the event journal, or nil
func (o *ETAOrchestrator) Events() events.EventStore {
	return o.events
}

// RunReport contains the engine result and what persisting it changed
type RunReport struct {
	Result   *dto.ETAResult
	Changes  *entities.ChangeSummary
	Started  time.Time
	Duration time.Duration
}

// Run performs one complete ETA run. Concurrent calls fail fast with
// ErrRunInProgress.
func (o *ETAOrchestrator) Run(ctx context.Context) (*RunReport, error) {
	return o.run(ctx, TriggerManual)
}

func (o *ETAOrchestrator) run(ctx context.Context, trigger string) (*RunReport, error) {
	if !o.running.TryLock() {
		o.publish(events.RunStream, events.RunRejectedEvent, events.RunRejected{Trigger: trigger})
		return nil, ErrRunInProgress
	}
	defer o.running.Unlock()

	o.publish(events.RunStream, events.RunStartedEvent, events.RunStarted{Trigger: trigger})
	report, err := o.execute(ctx)
	if err != nil {
		o.publish(events.RunStream, events.RunFailedEvent, events.RunFailed{Trigger: trigger, Error: err.Error()})
		return nil, err
	}

	res := report.Result
	if report.Changes != nil && report.Changes.HasChanges() {
		o.publish(events.SnapshotStream, events.SnapshotChangedEvent, events.SnapshotChanged{
			RunID:     res.RunID,
			Inserted:  report.Changes.Inserted,
			Updated:   report.Changes.Updated,
			Unchanged: report.Changes.Unchanged,
			Deleted:   report.Changes.Deleted,
		})
	}
	o.publish(events.RunStream, events.RunCompletedEvent, events.RunCompleted{
		RunID:           res.RunID,
		Recommendations: len(res.Recommendations),
		Skipped:         res.SkipCount(),
		CaseCounts:      res.CaseCounts,
		Duration:        report.Duration,
	})
	return report, nil
}

func (o *ETAOrchestrator) execute(ctx context.Context) (*RunReport, error) {
	started := time.Now()

	// Step 1: Load input tables
	in, err := o.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inputs: %w", err)
	}

	// Step 2: Run the engine
	result, err := o.engine.Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to run eta engine: %w", err)
	}

	report := &RunReport{Result: result, Started: started}

	// Step 3: Persist the snapshot
	if o.store != nil {
		changes, err := o.store.SaveSnapshot(ctx, result.RunID, result.GeneratedAt, result.Recommendations)
		if err != nil {
			return nil, fmt.Errorf("failed to save snapshot for run %s: %w", result.RunID, err)
		}
		report.Changes = changes
		o.logger.Info("snapshot saved",
			zap.String("run_id", result.RunID),
			zap.Int("inserted", changes.Inserted),
			zap.Int("updated", changes.Updated),
			zap.Int("unchanged", changes.Unchanged),
			zap.Int("deleted", changes.Deleted))
	}

	report.Duration = time.Since(started)

	o.mu.Lock()
	o.last = report
	o.mu.Unlock()
	return report, nil
}

func (o *ETAOrchestrator) publish(stream, eventType string, data interface{}) {
	if o.events == nil {
		return
	}
	if _, err := o.events.AppendEvent(stream, events.NewEvent(eventType, stream, data)); err != nil {
		o.logger.Warn("failed to record event", zap.String("type", eventType), zap.Error(err))
	}
}

// RunScheduled is Run for background jobs: failures are logged, not returned
func (o *ETAOrchestrator) RunScheduled(ctx context.Context) {
	report, err := o.run(ctx, TriggerScheduled)
	if errors.Is(err, ErrRunInProgress) {
		o.logger.Warn("scheduled eta run skipped", zap.Error(err))
		return
	}
	if err != nil {
		o.logger.Error("scheduled eta run failed", zap.Error(err))
		return
	}
	o.logger.Info("scheduled eta run complete",
		zap.String("run_id", report.Result.RunID),
		zap.Duration("duration", report.Duration))
}

// Last returns the most recent successful run, or nil
func (o *ETAOrchestrator) Last() *RunReport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.last
}

// Store returns the snapshot store, or nil when runs are not persisted
func (o *ETAOrchestrator) Store() repositories.RecommendationStore {
	return o.store
}

// GetSummary returns a formatted summary of the run
func (r *RunReport) GetSummary() string {
	res := r.Result
	summary := fmt.Sprintf("ETA Run %s (generated %s):\n", res.RunID, res.GeneratedAt.Format(time.RFC3339))
	summary += fmt.Sprintf("  Recommendations: %d, skipped lines: %d\n", len(res.Recommendations), res.SkipCount())
	summary += "  Cases:"
	for _, c := range entities.AllCases {
		summary += fmt.Sprintf(" %s=%d", c, res.CaseCounts[c])
	}
	if r.Changes != nil {
		summary += fmt.Sprintf("\n  Snapshot: %d inserted, %d updated, %d unchanged, %d deleted",
			r.Changes.Inserted, r.Changes.Updated, r.Changes.Unchanged, r.Changes.Deleted)
	}
	return summary
}
