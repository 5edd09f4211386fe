package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultStorePath is the default location for the agent database.
const DefaultStorePath = ".naru/agents.db"

// SQLiteStore persists agent definitions. Records are stored as JSON rows;
// the registry is the queryable in-memory view, so the store only needs
// load-all and per-id writes.
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteStoreConfig configures a SQLiteStore.
type SQLiteStoreConfig struct {
	// Path to the SQLite database file; parent directories are created.
	Path string
}

// NewSQLiteStore opens the database and initializes the schema.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultStorePath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create agent store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open agent database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS agent_records (
		id TEXT PRIMARY KEY,
		definition JSON NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize agent schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadAll implements Store. Rows that no longer unmarshal are skipped rather
// than failing the whole load.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT definition FROM agent_records ORDER BY updated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}
	defer rows.Close()

	var out []*Agent
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan agent row: %w", err)
		}
		var a Agent
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return out, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, agent *Agent) error {
	raw, err := json.Marshal(agent)
	if err != nil {
		return fmt.Errorf("marshal agent %s: %w", agent.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agent_records (id, definition, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET definition = excluded.definition, updated_at = excluded.updated_at`,
		agent.ID, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save agent %s: %w", agent.ID, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM agent_records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete agent %s: %w", id, err)
	}
	return nil
}
