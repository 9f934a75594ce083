package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DevRickLin/slack-tone-bot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// sqliteMarkerRepo persists markers so redelivered events stay deduplicated across restarts
type sqliteMarkerRepo struct {
	db *sql.DB
}

// NewSQLiteMarkerRepo creates a marker repository backed by a SQLite file
func NewSQLiteMarkerRepo(dbPath string) (repo.MarkerRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps INSERT OR IGNORE free of SQLITE_BUSY
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS posted_markers (
			key TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &sqliteMarkerRepo{db: db}, nil
}

// MarkOnce implements MarkerRepo
func (r *sqliteMarkerRepo) MarkOnce(ctx context.Context, key string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO posted_markers (key, created_at) VALUES (?, ?)`,
		key, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// Cleanup implements MarkerRepo
func (r *sqliteMarkerRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posted_markers WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup markers: %w", err)
	}
	return res.RowsAffected()
}

// Close implements MarkerRepo
func (r *sqliteMarkerRepo) Close() error {
	return r.db.Close()
}
