package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Ledger keeps a DuckDB record of exported months
type Ledger struct {
	db   *sql.DB
	path string
}

// Open connects to (and creates if needed) the ledger database at path
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	l := &Ledger{
		db:   db,
		path: path,
	}

	if err := l.initializeTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize ledger tables: %w", err)
	}

	return l, nil
}

// Path returns the database file location
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database connection
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func (l *Ledger) initializeTables() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS month_exports (
			month_start DATE PRIMARY KEY,
			month_end DATE NOT NULL,
			file_path VARCHAR NOT NULL,
			status VARCHAR NOT NULL,      -- 'written', 'empty', 'failed'
			pages INTEGER NOT NULL,
			row_count INTEGER NOT NULL,
			error_text VARCHAR NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Record stores the outcome of a month, replacing any earlier run of the same month
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO month_exports
		(month_start, month_end, file_path, status, pages, row_count, error_text, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, dateOnly(e.MonthStart), dateOnly(e.MonthEnd), e.FilePath, string(e.Status),
		e.Pages, e.Rows, e.Error, e.StartedAt.UTC(), e.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record month %s: %w", e.MonthStart.Format("2006-01-02"), err)
	}
	return nil
}

// List returns every recorded month, oldest first
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT month_start, month_end, file_path, status, pages, row_count,
		       error_text, started_at, finished_at
		FROM month_exports
		ORDER BY month_start
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		err := rows.Scan(
			&e.MonthStart, &e.MonthEnd, &e.FilePath, &status, &e.Pages, &e.Rows,
			&e.Error, &e.StartedAt, &e.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Status = Status(status)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats returns counts per status and the total number of rows exported
func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = 'written' THEN 1 END),
		       COUNT(CASE WHEN status = 'empty' THEN 1 END),
		       COUNT(CASE WHEN status = 'failed' THEN 1 END),
		       CAST(COALESCE(SUM(row_count), 0) AS BIGINT)
		FROM month_exports
	`).Scan(&stats.Months, &stats.Written, &stats.Empty, &stats.Failed, &stats.TotalRows)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ledger stats: %w", err)
	}
	return &stats, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
