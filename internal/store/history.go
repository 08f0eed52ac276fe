package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"tunedeck/internal/core"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// DefaultRecentLimit is the number of entries Recent returns for a non-positive limit.
const DefaultRecentLimit = 20

// HistoryStore records the items tunedeck started, newest first.
type HistoryStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

var _ core.HistoryRecorder = (*HistoryStore)(nil)

// OpenHistory opens or creates the history database at path and migrates it.
// The path can be ":memory:" for an in-memory database.
func OpenHistory(path string, logger *zap.Logger) (*HistoryStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("History store opened", zap.String("path", path))
	return &HistoryStore{db: db, path: path, logger: logger}, nil
}

func (h *HistoryStore) Path() string {
	return h.path
}

// Record appends one entry. A zero PlayedAt is stamped with the current time.
func (h *HistoryStore) Record(ctx context.Context, entry core.HistoryEntry) error {
	if entry.URI == "" {
		return errors.New("history entry has no uri")
	}
	if entry.PlayedAt.IsZero() {
		entry.PlayedAt = time.Now()
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO history (uri, name, artist, source, backend, played_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.URI, entry.Name, entry.Artist, entry.Source, entry.Backend, entry.PlayedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}

	h.logger.Debug("Recorded history entry", zap.String("uri", entry.URI), zap.String("backend", entry.Backend))
	return nil
}

// Recent returns up to limit entries, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT uri, name, artist, source, backend, played_at FROM history ORDER BY played_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var entry core.HistoryEntry
		if err := rows.Scan(&entry.URI, &entry.Name, &entry.Artist, &entry.Source, &entry.Backend, &entry.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (h *HistoryStore) Close() error {
	return h.db.Close()
}

type migration struct {
	version int
	up      string
}

// loadMigrations reads the embedded *_up.sql files sorted by version.
func loadMigrations() ([]migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, "_up.sql") {
			continue
		}

		// "0001_history_up.sql" -> version 1
		version, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile("sql/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: version, up: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

func migrate(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", m.version).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
