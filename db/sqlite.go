package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no artifact has the requested name.
var ErrNotFound = errors.New("artifact not found")

// Artifact is a serialized scaler or classifier kept in the store.
type Artifact struct {
	Name      string
	Kind      string
	Payload   []byte
	CreatedAt time.Time
}

// ArtifactInfo describes a stored artifact without its payload.
type ArtifactInfo struct {
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps artifacts in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS artifacts (
        name TEXT PRIMARY KEY,
        kind TEXT NOT NULL,
        payload BLOB NOT NULL,
        created_at DATETIME NOT NULL
    );`
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create artifacts table: %w", err)
	}
	return &Store{db: database}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveArtifact inserts or replaces the artifact with the same name.
func (s *Store) SaveArtifact(ctx context.Context, a Artifact) error {
	if a.Name == "" {
		return errors.New("artifact name is required")
	}
	if a.Kind == "" {
		return errors.New("artifact kind is required")
	}
	if len(a.Payload) == 0 {
		return errors.New("artifact payload is empty")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO artifacts (name, kind, payload, created_at) VALUES (?, ?, ?, ?)
        ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, payload = excluded.payload, created_at = excluded.created_at`
	_, err := s.db.ExecContext(ctx, query, a.Name, a.Kind, a.Payload, a.CreatedAt)
	return err
}

// LoadArtifact returns the artifact stored under name.
func (s *Store) LoadArtifact(ctx context.Context, name string) (Artifact, error) {
	var a Artifact
	row := s.db.QueryRowContext(ctx, `SELECT name, kind, payload, created_at FROM artifacts WHERE name = ?`, name)
	if err := row.Scan(&a.Name, &a.Kind, &a.Payload, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artifact{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return Artifact{}, err
	}
	return a, nil
}

// ListArtifacts returns all stored artifacts ordered by name.
func (s *Store) ListArtifacts(ctx context.Context) ([]ArtifactInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, kind, length(payload), created_at FROM artifacts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ArtifactInfo
	for rows.Next() {
		var info ArtifactInfo
		if err := rows.Scan(&info.Name, &info.Kind, &info.Size, &info.CreatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
