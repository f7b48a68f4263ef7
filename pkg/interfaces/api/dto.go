package api

import (
	"time"

	"github.com/ErrorLSC/QMS/pkg/application/dto"
	"github.com/ErrorLSC/QMS/pkg/application/services/orchestration"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/events"
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ChangeCountsDTO summarises a snapshot save
type ChangeCountsDTO struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
}

// RunDTO describes one completed engine run
type RunDTO struct {
	RunID           string                              `json:"run_id"`
	GeneratedAt     time.Time                           `json:"generated_at"`
	DurationMS      int64                               `json:"duration_ms"`
	Recommendations int                                 `json:"recommendations"`
	CaseCounts      map[entities.CaseLabel]int          `json:"case_counts"`
	Corrections     map[string]dto.ModeCorrectionCounts `json:"corrections"`
	Skips           []dto.Skip                          `json:"skips"`
	Changes         *ChangeCountsDTO                    `json:"changes,omitempty"`
}

// ChangeDTO is one change-log entry
type ChangeDTO struct {
	ItemCode   string    `json:"item_code"`
	Warehouse  string    `json:"warehouse"`
	PONumber   string    `json:"po_number"`
	POLine     string    `json:"po_line"`
	BatchIndex int       `json:"batch_index"`
	Kind       string    `json:"kind"`
	Field      string    `json:"field,omitempty"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}

func toRunDTO(r *orchestration.RunReport) RunDTO {
	res := r.Result
	out := RunDTO{
		RunID:           res.RunID,
		GeneratedAt:     res.GeneratedAt,
		DurationMS:      r.Duration.Milliseconds(),
		Recommendations: len(res.Recommendations),
		CaseCounts:      res.CaseCounts,
		Corrections:     res.Corrections,
		Skips:           res.Skips,
	}
	if out.Skips == nil {
		out.Skips = []dto.Skip{}
	}
	if c := r.Changes; c != nil {
		out.Changes = &ChangeCountsDTO{Inserted: c.Inserted, Updated: c.Updated, Unchanged: c.Unchanged, Deleted: c.Deleted}
	}
	return out
}

func toChangeDTOs(changes []entities.FieldChange) []ChangeDTO {
	out := make([]ChangeDTO, len(changes))
	for i, c := range changes {
		out[i] = ChangeDTO{
			ItemCode:   c.Key.ItemCode,
			Warehouse:  c.Key.Warehouse,
			PONumber:   c.Key.PONumber,
			POLine:     c.Key.POLine,
			BatchIndex: c.BatchIndex,
			Kind:       string(c.Kind),
			Field:      c.Field,
			OldValue:   c.OldValue,
			NewValue:   c.NewValue,
			ChangedAt:  c.ChangedAt,
		}
	}
	return out
}

// EventDTO is one journal entry
type EventDTO struct {
	Position int         `json:"position"`
	Stream   string      `json:"stream"`
	Version  int         `json:"version"`
	Type     string      `json:"type"`
	Time     time.Time   `json:"time"`
	Data     interface{} `json:"data,omitempty"`
}

func toEventDTO(e events.Event) EventDTO {
	return EventDTO{
		Position: e.Position(),
		Stream:   e.StreamID(),
		Version:  e.Version(),
		Type:     e.Type(),
		Time:     e.Timestamp(),
		Data:     e.Data(),
	}
}
