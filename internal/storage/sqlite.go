package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Schema versions, tracked in PRAGMA user_version:
// 1 - saves table
// 2 - previous copy of each slot kept for recovery
const currentSchemaVersion = 2

// SQLiteStore keeps save slots in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite creates or opens the database at path and migrates it to the
// current schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("executing %q: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		_, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
			slot       TEXT PRIMARY KEY,
			data       BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`)
		if err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	if version < 2 {
		_, err := db.Exec(`ALTER TABLE saves ADD COLUMN previous BLOB`)
		if err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("slot %q: %w", slot, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading slot %q: %w", slot, err)
	}
	return data, nil
}

// Previous returns the save that slot held before its latest write.
func (s *SQLiteStore) Previous(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT previous FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && data == nil) {
		return nil, fmt.Errorf("previous of slot %q: %w", slot, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading previous of slot %q: %w", slot, err)
	}
	return data, nil
}

func (s *SQLiteStore) Save(ctx context.Context, slot string, data []byte) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (slot, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			previous = saves.data,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		slot, data, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving slot %q: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("deleting slot %q: %w", slot, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, length(data), updated_at FROM saves ORDER BY slot`)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var updated int64
		if err := rows.Scan(&info.Name, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		info.Updated = time.UnixMilli(updated)
		out = append(out, info)
	}
	return out, rows.Err()
}
