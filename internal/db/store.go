package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
	"github.com/SoeMoeHtet18/telegram-bot/internal/storage"
)

// Store is a Postgres-backed storage.ObjectStore.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS folders (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS objects (
		id TEXT PRIMARY KEY,
		folder_id TEXT NOT NULL REFERENCES folders(id),
		name TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		data BYTEA NOT NULL,
		seq BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS objects_folder_name_idx ON objects (folder_id, name)`,
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, q := range postgresSchema {
			if _, err := tx.Exec(ctx, q); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CreateFolder(ctx context.Context, name string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO folders (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.NewString(), name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) UploadObject(ctx context.Context, folderID, name string, data []byte, mimeType string) (models.ObjectHandle, error) {
	id := uuid.NewString()
	_, err := s.Pool.Exec(ctx, `INSERT INTO objects (id, folder_id, name, mime_type, data) VALUES ($1,$2,$3,$4,$5)`,
		id, folderID, name, mimeType, data)
	if err != nil {
		return models.ObjectHandle{}, fmt.Errorf("upload %q: %w", name, err)
	}
	return models.ObjectHandle{ID: id, Name: name}, nil
}

func (s *Store) ListObjects(ctx context.Context, folderID, prefix string) ([]models.ObjectHandle, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name FROM objects
		WHERE folder_id = $1 AND starts_with(name, $2)
		ORDER BY seq ASC
	`, folderID, prefix)
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

func (s *Store) GetObject(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.Pool.QueryRow(ctx, `SELECT data FROM objects WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}
