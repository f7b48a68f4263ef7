package entities

import "time"

// ChangeKind classifies a row of the snapshot change log
type ChangeKind string

const (
	ChangeInserted ChangeKind = "INSERT"
	ChangeUpdated  ChangeKind = "UPDATE"
	ChangeDeleted  ChangeKind = "DELETE"
)

// FieldChange is one entry of the change log. Field, OldValue and NewValue
// are empty for whole-row inserts and deletes.
type FieldChange struct {
	RunID      string
	Key        RecommendationKey
	BatchIndex int
	Kind       ChangeKind
	Field      string
	OldValue   string
	NewValue   string
	ChangedAt  time.Time
}

// ChangeSummary counts what a snapshot save did
type ChangeSummary struct {
	RunID     string
	Inserted  int
	Updated   int
	Unchanged int
	Deleted   int
	Changes   []FieldChange
}

// HasChanges reports whether the save altered the stored snapshot
func (s *ChangeSummary) HasChanges() bool {
	return s.Inserted+s.Updated+s.Deleted > 0
}
