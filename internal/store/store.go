package store

import (
	"context"
	"errors"
	"time"

	"americano-app/internal/model"
)

// ErrNoSnapshot is returned by Load before anything has been committed.
var ErrNoSnapshot = errors.New("no tournament snapshot committed")

const defaultHistoryLimit = 20

// Revision identifies one committed snapshot.
type Revision struct {
	ID          string    `json:"id"`
	Name        string    `json:"tournamentName"`
	CommittedAt time.Time `json:"committedAt"`
}

// SnapshotStore keeps every committed tournament snapshot; Load returns the newest
// together with the revision it was committed as.
type SnapshotStore interface {
	Load(ctx context.Context) (model.Tournament, Revision, error)
	Commit(ctx context.Context, t model.Tournament) (Revision, error)
	History(ctx context.Context, limit int) ([]Revision, error)
	Close() error
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}
