package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"americano-app/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

type SQLiteOptions struct {
	// MigrationsDir overrides the embedded migrations when set.
	MigrationsDir string
}

func NewSQLiteStore(path string, opts SQLiteOptions) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps modernc from returning SQLITE_BUSY under concurrent commits.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	fsys, err := migrationsFS(sqliteDialect, opts.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, sqliteDialect, fsys); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (model.Tournament, Revision, error) {
	var (
		rev         Revision
		data        string
		committedAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, data, committed_at FROM snapshots ORDER BY seq DESC LIMIT 1`).
		Scan(&rev.ID, &rev.Name, &data, &committedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tournament{}, Revision{}, ErrNoSnapshot
	}
	if err != nil {
		return model.Tournament{}, Revision{}, fmt.Errorf("load snapshot: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, committedAt); err == nil {
		rev.CommittedAt = parsed
	}
	t, err := decodeSnapshot([]byte(data))
	if err != nil {
		return model.Tournament{}, Revision{}, err
	}
	return t, rev, nil
}

func (s *SQLiteStore) Commit(ctx context.Context, t model.Tournament) (Revision, error) {
	data, err := encodeSnapshot(t)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{
		ID:          uuid.NewString(),
		Name:        t.Name,
		CommittedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO snapshots (id, name, data, committed_at) VALUES (?,?,?,?)`,
		rev.ID, rev.Name, string(data), rev.CommittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Revision{}, fmt.Errorf("commit snapshot: %w", err)
	}
	return rev, nil
}

func (s *SQLiteStore) History(ctx context.Context, limit int) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, committed_at FROM snapshots ORDER BY seq DESC LIMIT ?`, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		var rev Revision
		var committedAt string
		if err := rows.Scan(&rev.ID, &rev.Name, &committedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, committedAt); err == nil {
			rev.CommittedAt = parsed
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
