package repositories

import (
	"context"
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// RecommendationStore persists the latest ETA snapshot and a log of what changed between runs
type RecommendationStore interface {
	// SaveSnapshot replaces the stored snapshot with recs and records field-level changes
	SaveSnapshot(ctx context.Context, runID string, generatedAt time.Time, recs []*entities.ETARecommendation) (*entities.ChangeSummary, error)
	// Latest returns the stored snapshot ordered by natural key and batch index
	Latest(ctx context.Context) ([]*entities.ETARecommendation, error)
	// Changes returns the change log of one run
	Changes(ctx context.Context, runID string) ([]entities.FieldChange, error)
	Close() error
}
