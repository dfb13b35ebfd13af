package engine

import (
	"fmt"

	"americano-app/internal/model"
)

// Validate checks an imported snapshot for what the engine relies on: unique ids,
// non-negative aggregates and scores, matches between two different known players on
// a configured court, known statuses, and a winner that agrees with the score on
// completed matches. Ratings are unbounded.
func Validate(t *model.Tournament) error {
	players := make(map[int]bool, len(t.Players))
	for _, p := range t.Players {
		if p.ID <= 0 {
			return fmt.Errorf("%w: player id %d", ErrValidation, p.ID)
		}
		if players[p.ID] {
			return fmt.Errorf("%w: duplicate player id %d", ErrValidation, p.ID)
		}
		players[p.ID] = true
		if p.Points < 0 || p.Wins < 0 || p.Losses < 0 || p.MatchesPlayed < 0 {
			return fmt.Errorf("%w: player %d has negative totals", ErrValidation, p.ID)
		}
	}

	matches := make(map[int]bool, len(t.Matches))
	for _, m := range t.Matches {
		if m.ID <= 0 {
			return fmt.Errorf("%w: match id %d", ErrValidation, m.ID)
		}
		if matches[m.ID] {
			return fmt.Errorf("%w: duplicate match id %d", ErrValidation, m.ID)
		}
		matches[m.ID] = true
		if m.Player1ID == m.Player2ID {
			return fmt.Errorf("%w: match %d pairs player %d with themselves", ErrValidation, m.ID, m.Player1ID)
		}
		if !players[m.Player1ID] || !players[m.Player2ID] {
			return fmt.Errorf("%w: match %d references an unknown player", ErrValidation, m.ID)
		}
		if !m.Status.Valid() {
			return fmt.Errorf("%w: match %d has status %q", ErrValidation, m.ID, m.Status)
		}
		if m.Player1Points < 0 || m.Player2Points < 0 || m.TotalPoints < 0 {
			return fmt.Errorf("%w: match %d has a negative score", ErrValidation, m.ID)
		}
		if m.Court < 1 || m.Court > t.Settings.Courts {
			return fmt.Errorf("%w: match %d is on court %d of %d", ErrValidation, m.ID, m.Court, t.Settings.Courts)
		}
		if m.Round < 1 {
			return fmt.Errorf("%w: match %d has round %d", ErrValidation, m.ID, m.Round)
		}
		if m.Completed() && !winnerMatchesScore(m) {
			return fmt.Errorf("%w: match %d winner does not agree with the score", ErrValidation, m.ID)
		}
	}
	return nil
}

func winnerMatchesScore(m model.Match) bool {
	switch {
	case m.Player1Points > m.Player2Points:
		return m.WinnerID != nil && *m.WinnerID == m.Player1ID
	case m.Player2Points > m.Player1Points:
		return m.WinnerID != nil && *m.WinnerID == m.Player2ID
	}
	return m.WinnerID == nil
}
