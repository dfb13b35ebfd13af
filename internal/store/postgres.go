package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"americano-app/internal/model"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresStore struct {
	db *sql.DB
}

type PostgresOptions struct {
	MigrationsDir string
}

func NewPostgresStore(dsn string, opts PostgresOptions) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	fsys, err := migrationsFS(postgresDialect, opts.MigrationsDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applyMigrations(db, postgresDialect, fsys); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (model.Tournament, Revision, error) {
	var (
		rev  Revision
		data []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT id::text, name, data, committed_at FROM snapshots ORDER BY seq DESC LIMIT 1`).
		Scan(&rev.ID, &rev.Name, &data, &rev.CommittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tournament{}, Revision{}, ErrNoSnapshot
	}
	if err != nil {
		return model.Tournament{}, Revision{}, fmt.Errorf("load snapshot: %w", err)
	}
	rev.CommittedAt = rev.CommittedAt.UTC()
	t, err := decodeSnapshot(data)
	if err != nil {
		return model.Tournament{}, Revision{}, err
	}
	return t, rev, nil
}

func (s *PostgresStore) Commit(ctx context.Context, t model.Tournament) (Revision, error) {
	data, err := encodeSnapshot(t)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{ID: uuid.NewString(), Name: t.Name}
	err = s.db.QueryRowContext(ctx, `INSERT INTO snapshots (id, name, data) VALUES ($1,$2,$3) RETURNING committed_at`,
		rev.ID, rev.Name, string(data),
	).Scan(&rev.CommittedAt)
	if err != nil {
		return Revision{}, fmt.Errorf("commit snapshot: %w", err)
	}
	rev.CommittedAt = rev.CommittedAt.UTC()
	return rev, nil
}

func (s *PostgresStore) History(ctx context.Context, limit int) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id::text, name, committed_at FROM snapshots ORDER BY seq DESC LIMIT $1`, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	revisions := []Revision{}
	for rows.Next() {
		var rev Revision
		if err := rows.Scan(&rev.ID, &rev.Name, &rev.CommittedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		rev.CommittedAt = rev.CommittedAt.UTC()
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
