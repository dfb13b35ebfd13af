package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"americano-app/internal/engine"
	"americano-app/internal/model"
	"americano-app/internal/store"

	"github.com/sirupsen/logrus"
)

// Event is what listeners hear after a snapshot has been committed.
type Event struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Revision    string    `json:"revision"`
}

type Listener interface {
	SnapshotCommitted(Event)
}

// TournamentService owns the live tournament snapshot. Every mutation runs the engine
// on a copy and only replaces the live snapshot once the store has committed it.
type TournamentService struct {
	mu        sync.RWMutex
	store     store.SnapshotStore
	log       *logrus.Logger
	now       func() time.Time
	state     model.Tournament
	revision  store.Revision
	listeners []Listener
}

type Option func(*TournamentService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TournamentService) { s.now = now }
}

func New(st store.SnapshotStore, log *logrus.Logger, opts ...Option) *TournamentService {
	s := &TournamentService{
		store: st,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = model.DefaultTournament(s.now().UTC())
	return s
}

func (s *TournamentService) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Load replaces the live snapshot with the newest committed one. When the store is
// empty or unreadable the default tournament is used; a read failure is still
// returned so the caller can report it.
func (s *TournamentService) Load(ctx context.Context) error {
	t, rev, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision = rev
	switch {
	case err == nil:
		s.state = t
		s.log.WithFields(logrus.Fields{"tournament": t.Name, "players": len(t.Players), "matches": len(t.Matches)}).Info("snapshot loaded")
		return nil
	case errors.Is(err, store.ErrNoSnapshot):
		s.state = model.DefaultTournament(s.now().UTC())
		s.log.Info("no snapshot stored, starting from the default tournament")
		return nil
	default:
		s.state = model.DefaultTournament(s.now().UTC())
		s.log.WithError(err).Warn("snapshot load failed, falling back to the default tournament")
		return fmt.Errorf("load snapshot: %w", err)
	}
}

// Snapshot returns a copy of the live tournament.
func (s *TournamentService) Snapshot() model.Tournament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *TournamentService) Revision() store.Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// View runs fn against the live tournament under the read lock. fn must not keep
// or modify t.
func (s *TournamentService) View(fn func(t *model.Tournament)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

func (s *TournamentService) History(ctx context.Context, limit int) ([]store.Revision, error) {
	return s.store.History(ctx, limit)
}

// mutate applies fn to a copy of the snapshot, commits the copy and swaps it in.
// Nothing changes when fn or the commit fails.
func (s *TournamentService) mutate(ctx context.Context, op string, fn func(t *model.Tournament) error) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	next.LastUpdated = s.now().UTC()
	rev, err := s.store.Commit(ctx, next)
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).WithField("op", op).Error("snapshot commit failed")
		return fmt.Errorf("commit snapshot: %w", err)
	}
	s.state = next
	s.revision = rev
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"op": op, "revision": rev.ID}).Info("snapshot committed")
	ev := Event{LastUpdated: next.LastUpdated, Revision: rev.ID}
	for _, l := range listeners {
		l.SnapshotCommitted(ev)
	}
	return nil
}

func (s *TournamentService) AddPlayer(ctx context.Context, in engine.PlayerInput) (model.Player, error) {
	var p model.Player
	err := s.mutate(ctx, "add player", func(t *model.Tournament) error {
		var err error
		p, err = engine.AddPlayer(t, in)
		return err
	})
	return p, err
}

func (s *TournamentService) UpdatePlayer(ctx context.Context, id int, in engine.PlayerInput) (model.Player, error) {
	var p model.Player
	err := s.mutate(ctx, "update player", func(t *model.Tournament) error {
		var err error
		p, err = engine.UpdatePlayer(t, id, in)
		return err
	})
	return p, err
}

// DeletePlayer returns the number of matches removed with the player.
func (s *TournamentService) DeletePlayer(ctx context.Context, id int) (int, error) {
	var removed int
	err := s.mutate(ctx, "delete player", func(t *model.Tournament) error {
		var err error
		removed, err = engine.DeletePlayer(t, id)
		return err
	})
	return removed, err
}

func (s *TournamentService) GenerateMatches(ctx context.Context) ([]model.Match, error) {
	var created []model.Match
	err := s.mutate(ctx, "generate matches", func(t *model.Tournament) error {
		var err error
		created, err = engine.GenerateMatches(t)
		return err
	})
	return created, err
}

func (s *TournamentService) CreateMatch(ctx context.Context, in engine.MatchInput) (model.Match, error) {
	var m model.Match
	err := s.mutate(ctx, "create match", func(t *model.Tournament) error {
		var err error
		m, err = engine.CreateMatch(t, in)
		return err
	})
	return m, err
}

func (s *TournamentService) DeleteMatch(ctx context.Context, id int) error {
	return s.mutate(ctx, "delete match", func(t *model.Tournament) error {
		return engine.DeleteMatch(t, id)
	})
}

func (s *TournamentService) StartMatch(ctx context.Context, id int) (model.Match, error) {
	return s.moveMatch(ctx, "start match", id, engine.StartMatch)
}

func (s *TournamentService) PauseMatch(ctx context.Context, id int) (model.Match, error) {
	return s.moveMatch(ctx, "pause match", id, engine.PauseMatch)
}

func (s *TournamentService) EditResult(ctx context.Context, id int) (model.Match, error) {
	return s.moveMatch(ctx, "reopen match", id, engine.EditResult)
}

func (s *TournamentService) moveMatch(ctx context.Context, op string, id int, move func(*model.Tournament, int) (model.Match, error)) (model.Match, error) {
	var m model.Match
	err := s.mutate(ctx, op, func(t *model.Tournament) error {
		var err error
		m, err = move(t, id)
		return err
	})
	return m, err
}

func (s *TournamentService) SubmitResult(ctx context.Context, id, p1Points, p2Points int, confirm bool) (engine.Result, error) {
	var res engine.Result
	err := s.mutate(ctx, "submit result", func(t *model.Tournament) error {
		var err error
		res, err = engine.SubmitResult(t, id, p1Points, p2Points, confirm)
		return err
	})
	return res, err
}

func (s *TournamentService) Schedule(ctx context.Context) ([]model.Match, error) {
	var assigned []model.Match
	err := s.mutate(ctx, "schedule", func(t *model.Tournament) error {
		var err error
		assigned, err = engine.Schedule(t, s.now())
		return err
	})
	return assigned, err
}

func (s *TournamentService) AdvanceRound(ctx context.Context) (int, error) {
	var round int
	err := s.mutate(ctx, "advance round", func(t *model.Tournament) error {
		round = engine.AdvanceRound(t)
		return nil
	})
	return round, err
}

func (s *TournamentService) SetRound(ctx context.Context, round int) error {
	return s.mutate(ctx, "set round", func(t *model.Tournament) error {
		return engine.SetRound(t, round)
	})
}

func (s *TournamentService) UpdateSettings(ctx context.Context, in engine.SettingsInput) (model.Settings, error) {
	var settings model.Settings
	err := s.mutate(ctx, "update settings", func(t *model.Tournament) error {
		var err error
		settings, err = engine.UpdateSettings(t, in)
		return err
	})
	return settings, err
}

// Import replaces the whole tournament with an uploaded snapshot.
func (s *TournamentService) Import(ctx context.Context, in model.Tournament) error {
	in = in.Clone()
	in.Normalize()
	if err := engine.Validate(&in); err != nil {
		return err
	}
	return s.mutate(ctx, "import snapshot", func(t *model.Tournament) error {
		*t = in
		return nil
	})
}

// Reset commits the default tournament over whatever is live.
func (s *TournamentService) Reset(ctx context.Context) error {
	return s.mutate(ctx, "reset", func(t *model.Tournament) error {
		*t = model.DefaultTournament(s.now().UTC())
		return nil
	})
}
