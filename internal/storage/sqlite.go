package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"eventdocs/internal/catalog"
	"eventdocs/internal/graph"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS records (
			collection TEXT,
			id TEXT,
			version TEXT,
			body JSON,
			PRIMARY KEY (collection, id, version)
		);`,
		`CREATE TABLE IF NOT EXISTS graphs (
			id TEXT PRIMARY KEY,
			kind TEXT,
			focal_id TEXT,
			focal_version TEXT,
			mode TEXT,
			created_at TIMESTAMP,
			body JSON
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RecordStore Implementation ---

// SaveRecords writes a full snapshot: records missing from it are removed.
func (s *SQLiteStore) SaveRecords(ctx context.Context, records map[catalog.Collection][]*catalog.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, version, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id, version) DO UPDATE SET body=excluded.body
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range catalog.All {
		for _, rec := range records[c] {
			body, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("failed to encode %s %s: %w", c, rec.Key(), err)
			}
			if _, err := stmt.ExecContext(ctx, string(c), rec.ID, rec.Version, body); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Collection implements pipeline.Source.
func (s *SQLiteStore) Collection(ctx context.Context, c catalog.Collection) ([]*catalog.Entity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM records WHERE collection = ? ORDER BY rowid", string(c))
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	out := []*catalog.Entity{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec catalog.Entity
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		rec.Collection = c
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// --- GraphStore Implementation ---

// SaveGraph stores g under a fresh id and returns it. Graphs that do not
// match the rendered graph contract are rejected.
func (s *SQLiteStore) SaveGraph(ctx context.Context, kind graph.Kind, id, version string, mode graph.Mode, g *graph.Graph) (string, error) {
	body, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := graph.ValidateJSON(body); err != nil {
		return "", err
	}
	graphID := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO graphs (id, kind, focal_id, focal_version, mode, created_at, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, graphID, string(kind), id, version, string(mode), time.Now().UTC(), body)
	if err != nil {
		return "", err
	}
	return graphID, nil
}

func (s *SQLiteStore) LoadGraph(ctx context.Context, graphID string) (*SavedGraph, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, kind, focal_id, focal_version, mode, created_at, body FROM graphs WHERE id = ?", graphID)

	var sg SavedGraph
	var kind, mode string
	var body []byte
	if err := row.Scan(&sg.ID, &kind, &sg.FocalID, &sg.Version, &mode, &sg.CreatedAt, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("graph %s: %w", graphID, ErrNotFound)
		}
		return nil, err
	}
	if err := graph.ValidateJSON(body); err != nil {
		return nil, fmt.Errorf("stored graph %s: %w", graphID, err)
	}
	sg.Kind = graph.Kind(kind)
	sg.Mode = graph.Mode(mode)
	sg.Body = json.RawMessage(body)
	return &sg, nil
}

// FolderName implements pipeline.FolderResolver from the stored entry ids.
func (s *SQLiteStore) FolderName(_, id, ver string) (string, error) {
	rows, err := s.db.Query("SELECT body FROM records WHERE id = ?", id)
	if err != nil {
		return "", fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var family []*catalog.Entity
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return "", fmt.Errorf("failed to scan record: %w", err)
		}
		var rec catalog.Entity
		if err := json.Unmarshal(body, &rec); err != nil {
			return "", fmt.Errorf("failed to decode record: %w", err)
		}
		family = append(family, &rec)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return folderOf(family, ver), nil
}
