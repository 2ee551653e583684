package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

// SQLiteStore is a single-file storage.ObjectStore for small deployments.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE TABLE IF NOT EXISTS objects (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			folder_id TEXT NOT NULL,
			name TEXT NOT NULL,
			mime_type TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY(folder_id) REFERENCES folders(id)
		);`,
		`CREATE INDEX IF NOT EXISTS objects_folder_name_idx ON objects(folder_id, name);`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateFolder(ctx context.Context, name string) (string, error) {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO folders (id, name) VALUES (?, ?)`, uuid.NewString(), name); err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM folders WHERE name = ?`, name).Scan(&id); err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return id, nil
}

func (s *SQLiteStore) UploadObject(ctx context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO objects (id, folder_id, name, mime_type, data) VALUES (?, ?, ?, ?, ?)`,
		id, folderID, name, mimeType, data)
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("upload %q: %w", name, err)
	}
	return models.ObjectHandle{ID: id, Name: name}, nil
}

func (s *SQLiteStore) ListObjects(ctx context.Context, folderID, prefix string) ([]models.ObjectHandle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM objects
		WHERE folder_id = ? AND substr(name, 1, length(?)) = ?
		ORDER BY seq ASC`, folderID, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ObjectHandle
	for rows.Next() {
		var h models.ObjectHandle
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetObject(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM objects WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
