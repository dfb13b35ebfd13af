package store

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"americano-app/internal/model"

	"github.com/google/uuid"
)

type memoryRevision struct {
	Revision
	data []byte
}

// MemoryStore keeps the commit log in process. Snapshots are held encoded so callers
// never share slices with the log.
type MemoryStore struct {
	mu        sync.RWMutex
	revisions []memoryRevision
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	if strings.ToLower(strings.TrimSpace(os.Getenv("APP"))) != "prod" {
		seedData(s)
	}
	return s
}

func seedData(s *MemoryStore) {
	_, _ = s.Commit(context.Background(), model.DefaultTournament(time.Now().UTC()))
}

func (s *MemoryStore) Load(ctx context.Context) (model.Tournament, Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.revisions) == 0 {
		return model.Tournament{}, Revision{}, ErrNoSnapshot
	}
	last := s.revisions[len(s.revisions)-1]
	t, err := decodeSnapshot(last.data)
	if err != nil {
		return model.Tournament{}, Revision{}, err
	}
	return t, last.Revision, nil
}

func (s *MemoryStore) Commit(ctx context.Context, t model.Tournament) (Revision, error) {
	data, err := encodeSnapshot(t)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{
		ID:          uuid.NewString(),
		Name:        t.Name,
		CommittedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions = append(s.revisions, memoryRevision{Revision: rev, data: data})
	return rev, nil
}

func (s *MemoryStore) History(ctx context.Context, limit int) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = historyLimit(limit)
	out := []Revision{}
	for i := len(s.revisions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.revisions[i].Revision)
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
