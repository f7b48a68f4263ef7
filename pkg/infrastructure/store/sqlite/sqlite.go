/*
Package sqlite provides a SQLite-backed RecommendationStore.

The store keeps exactly one snapshot: every save diffs the incoming
recommendations against the stored ones, replaces the snapshot when anything
changed and appends one change-log row per inserted, deleted or modified
field. Every save is recorded in eta_runs, changed or not.

KEY TABLES:

	eta_recommendations: current snapshot, keyed by (item, warehouse, PO, line, batch)
	eta_change_log:      field-level history of snapshot changes
	eta_runs:            one row per save with its change counts

USAGE:

	store, err := sqlite.New("./data/eta.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ErrorLSC/QMS/pkg/application/services/snapshot"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

// Store implements repositories.RecommendationStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ repositories.RecommendationStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if strings.HasPrefix(dbPath, ":memory:") {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: would see its own empty database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS eta_recommendations (
		item_code TEXT NOT NULL,
		warehouse TEXT NOT NULL,
		po_number TEXT NOT NULL,
		po_line TEXT NOT NULL,
		batch_index INTEGER NOT NULL DEFAULT 0,
		vendor_code TEXT,
		transport_mode TEXT,
		quantity TEXT NOT NULL,
		eta_date TEXT,
		eta_week TEXT,
		eta_flag TEXT,
		comment TEXT,
		is_final_batch TEXT,
		fallback_transport_used TEXT,
		fallback_total_lead_used TEXT,
		overdue TEXT,
		run_id TEXT NOT NULL,
		PRIMARY KEY (item_code, warehouse, po_number, po_line, batch_index)
	);

	CREATE TABLE IF NOT EXISTS eta_change_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		item_code TEXT NOT NULL,
		warehouse TEXT NOT NULL,
		po_number TEXT NOT NULL,
		po_line TEXT NOT NULL,
		batch_index INTEGER NOT NULL DEFAULT 0,
		change_kind TEXT NOT NULL,
		field_name TEXT,
		old_value TEXT,
		new_value TEXT,
		changed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_eta_change_log_run
		ON eta_change_log(run_id);
	CREATE INDEX IF NOT EXISTS idx_eta_change_log_po
		ON eta_change_log(po_number, po_line);

	CREATE TABLE IF NOT EXISTS eta_runs (
		run_id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		inserted INTEGER NOT NULL,
		updated INTEGER NOT NULL,
		unchanged INTEGER NOT NULL,
		deleted INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SaveSnapshot replaces the stored snapshot with recs and logs what changed.
// Of several recs sharing an identity only the first is stored.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, generatedAt time.Time, recs []*entities.ETARecommendation) (*entities.ChangeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	previous, err := s.loadSnapshot(ctx, sqlTx)
	if err != nil {
		return nil, err
	}
	summary := snapshot.Diff(runID, generatedAt, previous, recs)

	if summary.HasChanges() {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM eta_recommendations"); err != nil {
			return nil, fmt.Errorf("failed to clear snapshot: %w", err)
		}
		for _, r := range snapshot.Unique(recs) {
			if err := insertRecommendation(ctx, sqlTx, runID, r); err != nil {
				return nil, err
			}
		}
		for _, c := range summary.Changes {
			if err := insertChange(ctx, sqlTx, c); err != nil {
				return nil, err
			}
		}
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO eta_runs (run_id, generated_at, inserted, updated, unchanged, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, generatedAt.UTC().Format(time.RFC3339), summary.Inserted, summary.Updated, summary.Unchanged, summary.Deleted)
	if err != nil {
		return nil, fmt.Errorf("failed to record run %s: %w", runID, err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return summary, nil
}

// Latest returns the stored snapshot.
func (s *Store) Latest(ctx context.Context) ([]*entities.ETARecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadSnapshot(ctx, s.db)
}

// Changes returns the change log of one run in write order.
func (s *Store) Changes(ctx context.Context, runID string) ([]entities.FieldChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, item_code, warehouse, po_number, po_line, batch_index,
		       change_kind, field_name, old_value, new_value, changed_at
		FROM eta_change_log
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query change log: %w", err)
	}
	defer rows.Close()

	var changes []entities.FieldChange
	for rows.Next() {
		var c entities.FieldChange
		var kind, changedAt string
		var field, oldValue, newValue sql.NullString
		if err := rows.Scan(&c.RunID, &c.Key.ItemCode, &c.Key.Warehouse, &c.Key.PONumber, &c.Key.POLine,
			&c.BatchIndex, &kind, &field, &oldValue, &newValue, &changedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		c.Kind = entities.ChangeKind(kind)
		c.Field, c.OldValue, c.NewValue = field.String, oldValue.String, newValue.String
		c.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (s *Store) loadSnapshot(ctx context.Context, db querier) ([]*entities.ETARecommendation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT item_code, warehouse, po_number, po_line, batch_index, vendor_code,
		       transport_mode, quantity, eta_date, eta_week, eta_flag, comment,
		       is_final_batch, fallback_transport_used, fallback_total_lead_used, overdue
		FROM eta_recommendations
		ORDER BY item_code, warehouse, po_number, po_line, batch_index
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var recs []*entities.ETARecommendation
	for rows.Next() {
		r := &entities.ETARecommendation{}
		var vendor, mode, etaDate, etaWeek, flag, comment, finalBatch sql.NullString
		var quantity, fbTransport, fbLead, overdue string
		if err := rows.Scan(&r.ItemCode, &r.Warehouse, &r.PONumber, &r.POLine, &r.BatchIndex, &vendor,
			&mode, &quantity, &etaDate, &etaWeek, &flag, &comment,
			&finalBatch, &fbTransport, &fbLead, &overdue); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}

		r.VendorCode = vendor.String
		r.TransportMode = entities.TransportMode(mode.String)
		if r.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("invalid stored quantity %q: %w", quantity, err)
		}
		if r.ETADate, err = snapshot.ParseDate(etaDate.String); err != nil {
			return nil, fmt.Errorf("invalid stored eta date %q: %w", etaDate.String, err)
		}
		r.ETAWeek = etaWeek.String
		r.Flag = entities.ETAFlag(flag.String)
		r.Comment = comment.String
		r.IsFinalBatch = snapshot.ParseOptionalFlag(finalBatch.String)
		r.FallbackTransportUsed = fbTransport == "Y"
		r.FallbackTotalLeadUsed = fbLead == "Y"
		r.Overdue = overdue == "Y"
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func insertRecommendation(ctx context.Context, db execer, runID string, r *entities.ETARecommendation) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO eta_recommendations
		(item_code, warehouse, po_number, po_line, batch_index, vendor_code, transport_mode,
		 quantity, eta_date, eta_week, eta_flag, comment, is_final_batch,
		 fallback_transport_used, fallback_total_lead_used, overdue, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ItemCode,
		r.Warehouse,
		r.PONumber,
		r.POLine,
		r.BatchIndex,
		r.VendorCode,
		string(r.TransportMode),
		r.Quantity.String(),
		snapshot.FormatDate(r.ETADate),
		r.ETAWeek,
		string(r.Flag),
		r.Comment,
		snapshot.FormatOptionalFlag(r.IsFinalBatch),
		snapshot.FormatFlag(r.FallbackTransportUsed),
		snapshot.FormatFlag(r.FallbackTotalLeadUsed),
		snapshot.FormatFlag(r.Overdue),
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recommendation %s/%s: %w", r.PONumber, r.POLine, err)
	}
	return nil
}

func insertChange(ctx context.Context, db execer, c entities.FieldChange) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO eta_change_log
		(run_id, item_code, warehouse, po_number, po_line, batch_index,
		 change_kind, field_name, old_value, new_value, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.RunID,
		c.Key.ItemCode,
		c.Key.Warehouse,
		c.Key.PONumber,
		c.Key.POLine,
		c.BatchIndex,
		string(c.Kind),
		nullString(c.Field),
		nullString(c.OldValue),
		nullString(c.NewValue),
		c.ChangedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write change log: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
