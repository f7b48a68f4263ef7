package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/events"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/csv"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/store/sqlite"
)

const sampleScenario = "../../../../scenarios/sample"

var testNow = time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) *eta.Engine {
	t.Helper()
	opts := eta.DefaultOptions()
	opts.Now = func() time.Time { return testNow }
	engine, err := eta.NewEngine(nil, opts, nil)
	require.NoError(t, err)
	return engine
}

type sourceFunc func(ctx context.Context) (eta.Inputs, error)

func (f sourceFunc) Load(ctx context.Context) (eta.Inputs, error) { return f(ctx) }

func TestETAOrchestrator_RunSampleScenario(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	journal := events.NewInMemoryEventStore(0, nil)
	o := NewETAOrchestrator(newEngine(t), csv.NewDirectorySource(sampleScenario), store, nil).WithEvents(journal)
	assert.Nil(t, o.Last())

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	res := report.Result
	assert.Len(t, res.Recommendations, 8)
	assert.Empty(t, res.Skips)
	for _, c := range entities.AllCases {
		assert.Equal(t, 1, res.CaseCounts[c], c.String())
	}
	require.NotNil(t, report.Changes)
	assert.Equal(t, 8, report.Changes.Inserted)
	assert.Same(t, report, o.Last())
	assert.Contains(t, report.GetSummary(), "Recommendations: 8")

	latest, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, latest, 8)

	// same inputs, same clock: nothing changes
	again, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, res.RunID, again.Result.RunID)
	assert.False(t, again.Changes.HasChanges())
	assert.Equal(t, 8, again.Changes.Unchanged)

	runs, err := journal.ReadEvents(events.RunStream, 0)
	require.NoError(t, err)
	var types []string
	for _, e := range runs {
		types = append(types, e.Type())
	}
	assert.Equal(t, []string{
		events.RunStartedEvent, events.RunCompletedEvent,
		events.RunStartedEvent, events.RunCompletedEvent,
	}, types)
	assert.Equal(t, res.RunID, runs[1].Data().(events.RunCompleted).RunID)

	// only the first save changed the snapshot
	snaps, err := journal.ReadEvents(events.SnapshotStream, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 8, snaps[0].Data().(events.SnapshotChanged).Inserted)
}

func TestETAOrchestrator_WithoutStore(t *testing.T) {
	o := NewETAOrchestrator(newEngine(t), csv.NewDirectorySource(sampleScenario), nil, nil)
	report, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report.Changes)
	assert.Nil(t, o.Store())
	assert.NotContains(t, report.GetSummary(), "Snapshot:")
}

func TestETAOrchestrator_SourceError(t *testing.T) {
	boom := errors.New("boom")
	journal := events.NewInMemoryEventStore(0, nil)
	o := NewETAOrchestrator(newEngine(t), sourceFunc(func(context.Context) (eta.Inputs, error) {
		return eta.Inputs{}, boom
	}), nil, nil).WithEvents(journal)

	_, err := o.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, o.Last())

	// scheduled runs swallow the error
	o.RunScheduled(context.Background())
	assert.Nil(t, o.Last())

	all, err := journal.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	failed := all[3].Data().(events.RunFailed)
	assert.Equal(t, TriggerScheduled, failed.Trigger)
	assert.Contains(t, failed.Error, "boom")
}

func TestETAOrchestrator_RejectsConcurrentRun(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	o := NewETAOrchestrator(newEngine(t), sourceFunc(func(context.Context) (eta.Inputs, error) {
		close(entered)
		<-release
		return eta.Inputs{}, nil
	}), nil, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := o.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	_, err := o.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	wg.Wait()
	require.NotNil(t, o.Last())
	assert.Empty(t, o.Last().Result.Recommendations)
}
