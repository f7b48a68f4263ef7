// Package snapshot compares two ETA recommendation snapshots field by field.
package snapshot

import (
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// Identity addresses one stored recommendation
type Identity struct {
	Key        entities.RecommendationKey
	BatchIndex int
}

// IdentityOf returns the snapshot identity of a recommendation
func IdentityOf(r *entities.ETARecommendation) Identity {
	return Identity{Key: r.Key(), BatchIndex: r.BatchIndex}
}

// Field is one monitored column of a recommendation, rendered as text
type Field struct {
	Name  string
	Value func(r *entities.ETARecommendation) string
}

// MonitoredFields are compared between runs; an identity whose fields all
// match counts as unchanged.
var MonitoredFields = []Field{
	{"VendorCode", func(r *entities.ETARecommendation) string { return r.VendorCode }},
	{"TransportMode", func(r *entities.ETARecommendation) string { return string(r.TransportMode) }},
	{"Quantity", func(r *entities.ETARecommendation) string { return r.Quantity.String() }},
	{"ETADate", func(r *entities.ETARecommendation) string { return FormatDate(r.ETADate) }},
	{"ETAWeek", func(r *entities.ETARecommendation) string { return r.ETAWeek }},
	{"Flag", func(r *entities.ETARecommendation) string { return string(r.Flag) }},
	{"Comment", func(r *entities.ETARecommendation) string { return r.Comment }},
	{"IsFinalBatch", func(r *entities.ETARecommendation) string { return FormatOptionalFlag(r.IsFinalBatch) }},
	{"FallbackTransportUsed", func(r *entities.ETARecommendation) string { return FormatFlag(r.FallbackTransportUsed) }},
	{"FallbackTotalLeadUsed", func(r *entities.ETARecommendation) string { return FormatFlag(r.FallbackTotalLeadUsed) }},
	{"Overdue", func(r *entities.ETARecommendation) string { return FormatFlag(r.Overdue) }},
}

// Unique drops every recommendation whose identity already appeared earlier
// in recs. The first occurrence wins.
func Unique(recs []*entities.ETARecommendation) []*entities.ETARecommendation {
	seen := make(map[Identity]struct{}, len(recs))
	out := make([]*entities.ETARecommendation, 0, len(recs))
	for _, r := range recs {
		id := IdentityOf(r)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Diff compares the stored snapshot with the new one. Inserts and updates
// follow the order of current, deletes the order of previous.
func Diff(runID string, at time.Time, previous, current []*entities.ETARecommendation) *entities.ChangeSummary {
	summary := &entities.ChangeSummary{RunID: runID}

	old := make(map[Identity]*entities.ETARecommendation, len(previous))
	for _, r := range previous {
		old[IdentityOf(r)] = r
	}

	unique := Unique(current)
	seen := make(map[Identity]struct{}, len(unique))
	for _, r := range unique {
		id := IdentityOf(r)
		seen[id] = struct{}{}

		prev, ok := old[id]
		if !ok {
			summary.Inserted++
			summary.Changes = append(summary.Changes, entities.FieldChange{
				RunID: runID, Key: id.Key, BatchIndex: id.BatchIndex, Kind: entities.ChangeInserted, ChangedAt: at,
			})
			continue
		}

		changed := false
		for _, f := range MonitoredFields {
			before, after := f.Value(prev), f.Value(r)
			if before == after {
				continue
			}
			changed = true
			summary.Changes = append(summary.Changes, entities.FieldChange{
				RunID:      runID,
				Key:        id.Key,
				BatchIndex: id.BatchIndex,
				Kind:       entities.ChangeUpdated,
				Field:      f.Name,
				OldValue:   before,
				NewValue:   after,
				ChangedAt:  at,
			})
		}
		if changed {
			summary.Updated++
		} else {
			summary.Unchanged++
		}
	}

	for _, r := range previous {
		id := IdentityOf(r)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		summary.Deleted++
		summary.Changes = append(summary.Changes, entities.FieldChange{
			RunID: runID, Key: id.Key, BatchIndex: id.BatchIndex, Kind: entities.ChangeDeleted, ChangedAt: at,
		})
	}
	return summary
}

// FormatDate renders a date column; the zero time is empty
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseDate is the inverse of FormatDate
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// FormatFlag renders a boolean column as Y or N
func FormatFlag(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}

// FormatOptionalFlag renders an optional boolean column; nil is empty
func FormatOptionalFlag(v *bool) string {
	if v == nil {
		return ""
	}
	return FormatFlag(*v)
}

// ParseOptionalFlag is the inverse of FormatOptionalFlag
func ParseOptionalFlag(s string) *bool {
	switch s {
	case "Y":
		return entities.Bool(true)
	case "N":
		return entities.Bool(false)
	}
	return nil
}
