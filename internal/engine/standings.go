package engine

import (
	"cmp"
	"slices"

	"americano-app/internal/model"
)

type Standing struct {
	Rank    int          `json:"rank"`
	Player  model.Player `json:"player"`
	Draws   int          `json:"draws"`
	WinDiff int          `json:"winDiff"`
}

// Standings orders the roster by points, head-to-head, win/loss difference, wins and
// rating. The sort is stable, so players still level keep roster order.
func Standings(t *model.Tournament) []Standing {
	players := slices.Clone(t.Players)
	slices.SortStableFunc(players, func(a, b model.Player) int {
		return ComparePlayers(t, a, b)
	})

	standings := make([]Standing, 0, len(players))
	for i, p := range players {
		standings = append(standings, Standing{
			Rank:    i + 1,
			Player:  p,
			Draws:   p.Draws(),
			WinDiff: p.Wins - p.Losses,
		})
	}
	return standings
}

// ComparePlayers is the leaderboard comparator; negative puts a ahead of b.
func ComparePlayers(t *model.Tournament, a, b model.Player) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if h2h := HeadToHead(t, a.ID, b.ID); h2h != 0 {
		return h2h
	}
	if c := cmp.Compare(b.Wins-b.Losses, a.Wins-a.Losses); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
		return c
	}
	return cmp.Compare(b.Rating, a.Rating)
}
