package guildconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"vxlinks/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLiteBackend stores one row per guild with the entry JSON in settings.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens the database at dsn and runs pending migrations.
func NewSQLiteBackend(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes serialized and lets :memory: databases work.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// ReadAll returns the settings column of every guild.
func (s *SQLiteBackend) ReadAll(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT guild_id, settings FROM guild_configs`)
	if err != nil {
		return nil, fmt.Errorf("query guild configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make(map[string]json.RawMessage)
	for rows.Next() {
		var guildID, settings string
		if err := rows.Scan(&guildID, &settings); err != nil {
			return nil, fmt.Errorf("scan guild config: %w", err)
		}
		entries[guildID] = json.RawMessage(settings)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guild configs: %w", err)
	}
	return entries, nil
}

// WriteEntry upserts the row of guildID, retrying while the database is locked.
func (s *SQLiteBackend) WriteEntry(ctx context.Context, guildID string, e json.RawMessage, _ map[string]json.RawMessage) error {
	now := time.Now().UTC().Format(timeLayout)
	var lastErr error
	for i := 0; i < 5; i++ {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO guild_configs (guild_id, settings, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(guild_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at`,
			guildID, string(e), now,
		)
		if err == nil {
			return nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "database is locked") {
			return fmt.Errorf("upsert guild config: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("upsert guild config: %w", lastErr)
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
