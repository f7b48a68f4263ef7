package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

type recommendationRow struct {
	ItemCode              string          `gorm:"primaryKey;type:text"`
	Warehouse             string          `gorm:"primaryKey;type:text"`
	PONumber              string          `gorm:"primaryKey;type:text;column:po_number"`
	POLine                string          `gorm:"primaryKey;type:text;column:po_line"`
	BatchIndex            int             `gorm:"primaryKey;not null;default:0"`
	VendorCode            string          `gorm:"type:text"`
	TransportMode         string          `gorm:"type:text"`
	Quantity              decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	ETADate               *time.Time      `gorm:"type:date;column:eta_date;index"`
	ETAWeek               string          `gorm:"type:text;column:eta_week"`
	ETAFlag               string          `gorm:"type:text;column:eta_flag"`
	Comment               string          `gorm:"type:text"`
	IsFinalBatch          *bool           `gorm:"default:null"`
	FallbackTransportUsed bool            `gorm:"not null;default:false"`
	FallbackTotalLeadUsed bool            `gorm:"not null;default:false"`
	Overdue               bool            `gorm:"not null;default:false"`
	RunID                 string          `gorm:"type:text;not null"`
}

func (recommendationRow) TableName() string {
	return "eta_recommendations"
}

type changeLogRow struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	RunID      string    `gorm:"type:text;not null;index"`
	ItemCode   string    `gorm:"type:text;not null"`
	Warehouse  string    `gorm:"type:text;not null"`
	PONumber   string    `gorm:"type:text;not null;column:po_number;index:idx_eta_change_log_po"`
	POLine     string    `gorm:"type:text;not null;column:po_line;index:idx_eta_change_log_po"`
	BatchIndex int       `gorm:"not null;default:0"`
	ChangeKind string    `gorm:"type:text;not null"`
	FieldName  string    `gorm:"type:text"`
	OldValue   string    `gorm:"type:text"`
	NewValue   string    `gorm:"type:text"`
	ChangedAt  time.Time `gorm:"type:timestamptz;not null"`
}

func (changeLogRow) TableName() string {
	return "eta_change_log"
}

type runRow struct {
	RunID       string    `gorm:"primaryKey;type:text"`
	GeneratedAt time.Time `gorm:"type:timestamptz;not null"`
	Inserted    int       `gorm:"not null"`
	Updated     int       `gorm:"not null"`
	Unchanged   int       `gorm:"not null"`
	Deleted     int       `gorm:"not null"`
}

func (runRow) TableName() string {
	return "eta_runs"
}

func toRow(runID string, r *entities.ETARecommendation) recommendationRow {
	row := recommendationRow{
		ItemCode:              r.ItemCode,
		Warehouse:             r.Warehouse,
		PONumber:              r.PONumber,
		POLine:                r.POLine,
		BatchIndex:            r.BatchIndex,
		VendorCode:            r.VendorCode,
		TransportMode:         string(r.TransportMode),
		Quantity:              r.Quantity,
		ETAWeek:               r.ETAWeek,
		ETAFlag:               string(r.Flag),
		Comment:               r.Comment,
		IsFinalBatch:          r.IsFinalBatch,
		FallbackTransportUsed: r.FallbackTransportUsed,
		FallbackTotalLeadUsed: r.FallbackTotalLeadUsed,
		Overdue:               r.Overdue,
		RunID:                 runID,
	}
	if !r.ETADate.IsZero() {
		d := entities.Day(r.ETADate)
		row.ETADate = &d
	}
	return row
}

func (row recommendationRow) toEntity() *entities.ETARecommendation {
	r := &entities.ETARecommendation{
		ItemCode:              row.ItemCode,
		Warehouse:             row.Warehouse,
		PONumber:              row.PONumber,
		POLine:                row.POLine,
		BatchIndex:            row.BatchIndex,
		VendorCode:            row.VendorCode,
		TransportMode:         entities.TransportMode(row.TransportMode),
		Quantity:              row.Quantity,
		ETAWeek:               row.ETAWeek,
		Flag:                  entities.ETAFlag(row.ETAFlag),
		Comment:               row.Comment,
		IsFinalBatch:          row.IsFinalBatch,
		FallbackTransportUsed: row.FallbackTransportUsed,
		FallbackTotalLeadUsed: row.FallbackTotalLeadUsed,
		Overdue:               row.Overdue,
	}
	if row.ETADate != nil {
		y, m, d := row.ETADate.Date()
		r.ETADate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return r
}

func toChangeRow(c entities.FieldChange) changeLogRow {
	return changeLogRow{
		RunID:      c.RunID,
		ItemCode:   c.Key.ItemCode,
		Warehouse:  c.Key.Warehouse,
		PONumber:   c.Key.PONumber,
		POLine:     c.Key.POLine,
		BatchIndex: c.BatchIndex,
		ChangeKind: string(c.Kind),
		FieldName:  c.Field,
		OldValue:   c.OldValue,
		NewValue:   c.NewValue,
		ChangedAt:  c.ChangedAt.UTC(),
	}
}

func (row changeLogRow) toEntity() entities.FieldChange {
	return entities.FieldChange{
		RunID: row.RunID,
		Key: entities.RecommendationKey{
			ItemCode:  row.ItemCode,
			Warehouse: row.Warehouse,
			PONumber:  row.PONumber,
			POLine:    row.POLine,
		},
		BatchIndex: row.BatchIndex,
		Kind:       entities.ChangeKind(row.ChangeKind),
		Field:      row.FieldName,
		OldValue:   row.OldValue,
		NewValue:   row.NewValue,
		ChangedAt:  row.ChangedAt,
	}
}
