package engine

import (
	"testing"
	"time"

	"americano-app/internal/model"
)

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// seeded returns the default four-player tournament with every pairing generated.
func seeded(t *testing.T) *model.Tournament {
	t.Helper()
	tour := model.DefaultTournament(testNow)
	if _, err := GenerateMatches(&tour); err != nil {
		t.Fatalf("GenerateMatches: %v", err)
	}
	return &tour
}

func mustPlayer(t *testing.T, tour *model.Tournament, id int) model.Player {
	t.Helper()
	p, ok := tour.Player(id)
	if !ok {
		t.Fatalf("player %d not found", id)
	}
	return p
}

func mustMatch(t *testing.T, tour *model.Tournament, id int) model.Match {
	t.Helper()
	m, ok := tour.Match(id)
	if !ok {
		t.Fatalf("match %d not found", id)
	}
	return m
}

func completed(id, p1, p2, s1, s2 int) model.Match {
	m := model.Match{
		ID:            id,
		Player1ID:     p1,
		Player2ID:     p2,
		Player1Points: s1,
		Player2Points: s2,
		TotalPoints:   s1 + s2,
		Court:         1,
		Round:         1,
		Status:        model.MatchCompleted,
	}
	switch {
	case s1 > s2:
		m.WinnerID = &p1
	case s2 > s1:
		m.WinnerID = &p2
	}
	return m
}
