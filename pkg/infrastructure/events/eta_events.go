package events

import (
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// Streams
const (
	RunStream      = "eta.runs"
	SnapshotStream = "eta.snapshots"
)

const (
	RunStartedEvent   = "run.started"
	RunCompletedEvent = "run.completed"
	RunFailedEvent    = "run.failed"
	RunRejectedEvent  = "run.rejected"

	SnapshotChangedEvent = "snapshot.changed"
)

type RunStarted struct {
	Trigger string `json:"trigger"`
}

type RunCompleted struct {
	RunID           string                     `json:"run_id"`
	Recommendations int                        `json:"recommendations"`
	Skipped         int                        `json:"skipped"`
	CaseCounts      map[entities.CaseLabel]int `json:"case_counts"`
	Duration        time.Duration              `json:"duration_ns"`
}

type RunFailed struct {
	Trigger string `json:"trigger"`
	Error   string `json:"error"`
}

type RunRejected struct {
	Trigger string `json:"trigger"`
}

type SnapshotChanged struct {
	RunID     string `json:"run_id"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Deleted   int    `json:"deleted"`
}
