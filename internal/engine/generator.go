package engine

import (
	"time"

	"americano-app/internal/model"
)

// GenerateMatches adds one scheduled match for every pair of roster players that
// has not met yet. Calling it again on an unchanged roster adds nothing.
func GenerateMatches(t *model.Tournament) ([]model.Match, error) {
	if len(t.Players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	nextID := t.NextMatchID()
	created := []model.Match{}
	for i := 0; i < len(t.Players); i++ {
		for j := i + 1; j < len(t.Players); j++ {
			p1 := t.Players[i].ID
			p2 := t.Players[j].ID
			if t.HasPairing(p1, p2) || pairingIn(created, p1, p2) {
				continue
			}
			created = append(created, model.Match{
				ID:        nextID,
				Player1ID: p1,
				Player2ID: p2,
				Court:     1,
				Round:     1,
				Status:    model.MatchScheduled,
			})
			nextID++
		}
	}

	t.Matches = append(t.Matches, created...)
	return created, nil
}

func pairingIn(matches []model.Match, a, b int) bool {
	for _, m := range matches {
		if m.Between(a, b) {
			return true
		}
	}
	return false
}

type MatchInput struct {
	Player1ID int        `json:"player1Id"`
	Player2ID int        `json:"player2Id"`
	Court     int        `json:"court"`
	Round     int        `json:"round"`
	StartTime *time.Time `json:"startTime"`
}

// CreateMatch adds a single hand-picked pairing. Court 0 means court 1 and round 0
// means the current round.
func CreateMatch(t *model.Tournament, in MatchInput) (model.Match, error) {
	if in.Player1ID == 0 || in.Player2ID == 0 || in.Player1ID == in.Player2ID {
		return model.Match{}, ErrSamePlayer
	}
	if t.PlayerIndex(in.Player1ID) < 0 || t.PlayerIndex(in.Player2ID) < 0 {
		return model.Match{}, ErrPlayerNotFound
	}
	if t.HasPairing(in.Player1ID, in.Player2ID) {
		return model.Match{}, ErrDuplicatePairing
	}

	court := in.Court
	if court == 0 {
		court = 1
	}
	if court < 1 || court > t.Settings.Courts {
		return model.Match{}, ErrInvalidCourt
	}
	round := in.Round
	if round == 0 {
		round = t.CurrentRound
	}
	if round < 1 {
		return model.Match{}, ErrInvalidRound
	}

	match := model.Match{
		ID:        t.NextMatchID(),
		Player1ID: in.Player1ID,
		Player2ID: in.Player2ID,
		Court:     court,
		Round:     round,
		Status:    model.MatchScheduled,
	}
	if in.StartTime != nil && !in.StartTime.IsZero() {
		start := in.StartTime.UTC()
		match.StartTime = &start
	}
	t.Matches = append(t.Matches, match)
	return match, nil
}
