// Package postgres provides a PostgreSQL RecommendationStore built on GORM.
// It keeps the same tables and delta semantics as the SQLite store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ErrorLSC/QMS/pkg/application/services/snapshot"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

const insertBatchSize = 500

type Store struct {
	db  *gorm.DB
	sql *sql.DB
}

var _ repositories.RecommendationStore = (*Store)(nil)

// Open connects to dsn and migrates the schema
func Open(dsn string) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqldb, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(5)
	sqldb.SetMaxIdleConns(2)
	sqldb.SetConnMaxLifetime(30 * time.Minute)

	s := New(gdb)
	s.sql = sqldb
	if err := s.AutoMigrate(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&recommendationRow{}, &changeLogRow{}, &runRow{})
}

func (s *Store) Close() error {
	if s.sql == nil {
		return nil
	}
	return s.sql.Close()
}

func (s *Store) SaveSnapshot(ctx context.Context, runID string, generatedAt time.Time, recs []*entities.ETARecommendation) (*entities.ChangeSummary, error) {
	var summary *entities.ChangeSummary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous, err := loadSnapshot(tx)
		if err != nil {
			return err
		}
		summary = snapshot.Diff(runID, generatedAt, previous, recs)

		if summary.HasChanges() {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&recommendationRow{}).Error; err != nil {
				return fmt.Errorf("failed to clear snapshot: %w", err)
			}
			if unique := snapshot.Unique(recs); len(unique) > 0 {
				rows := make([]recommendationRow, len(unique))
				for i, r := range unique {
					rows[i] = toRow(runID, r)
				}
				if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
					return fmt.Errorf("failed to insert snapshot: %w", err)
				}
			}
			if len(summary.Changes) > 0 {
				changes := make([]changeLogRow, len(summary.Changes))
				for i, c := range summary.Changes {
					changes[i] = toChangeRow(c)
				}
				if err := tx.CreateInBatches(changes, insertBatchSize).Error; err != nil {
					return fmt.Errorf("failed to write change log: %w", err)
				}
			}
		}

		run := runRow{
			RunID:       runID,
			GeneratedAt: generatedAt.UTC(),
			Inserted:    summary.Inserted,
			Updated:     summary.Updated,
			Unchanged:   summary.Unchanged,
			Deleted:     summary.Deleted,
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to record run %s: %w", runID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Store) Latest(ctx context.Context) ([]*entities.ETARecommendation, error) {
	return loadSnapshot(s.db.WithContext(ctx))
}

func (s *Store) Changes(ctx context.Context, runID string) ([]entities.FieldChange, error) {
	var rows []changeLogRow
	if err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query change log: %w", err)
	}
	out := make([]entities.FieldChange, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

func loadSnapshot(db *gorm.DB) ([]*entities.ETARecommendation, error) {
	var rows []recommendationRow
	if err := db.Order("item_code, warehouse, po_number, po_line, batch_index").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	out := make([]*entities.ETARecommendation, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}
