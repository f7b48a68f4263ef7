package dto

import (
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// ETAResult contains the complete output of an ETA run
type ETAResult struct {
	RunID           string                          `json:"run_id"`
	GeneratedAt     time.Time                       `json:"generated_at"`
	Recommendations []*entities.ETARecommendation   `json:"recommendations"`
	Skips           []Skip                          `json:"skips"`
	CaseCounts      map[entities.CaseLabel]int      `json:"case_counts"`
	Corrections     map[string]ModeCorrectionCounts `json:"corrections"`
}

// Skip is one open line the run produced no estimate for
type Skip struct {
	PONumber string             `json:"po_number"`
	POLine   string             `json:"po_line"`
	Case     entities.CaseLabel `json:"case"`
	Reason   string             `json:"reason"`
}

// ModeCorrectionCounts summarises one transport-mode correction pass
type ModeCorrectionCounts struct {
	Accepted   int `json:"accepted"`
	Reassigned int `json:"reassigned"`
	Unresolved int `json:"unresolved"`
	NoEvidence int `json:"no_evidence"`
}

// Correction pass names used as keys of ETAResult.Corrections
const (
	CorrectionDelivery = "delivery_records"
	CorrectionShipped  = "shipped_overdue"
)

// SkipCount returns the number of skipped lines
func (r *ETAResult) SkipCount() int {
	return len(r.Skips)
}
