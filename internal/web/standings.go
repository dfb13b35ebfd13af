package web

import (
	"americano-app/internal/engine"
	"americano-app/internal/model"
)

func buildStandings(t *model.Tournament) []StandingRow {
	standings := engine.Standings(t)
	rows := make([]StandingRow, 0, len(standings))
	for _, st := range standings {
		p := st.Player
		rows = append(rows, StandingRow{
			Rank:          st.Rank,
			PlayerID:      p.ID,
			FullName:      p.FullName(),
			ShortName:     p.ShortName(),
			Organization:  p.Organization,
			Points:        p.Points,
			Wins:          p.Wins,
			Losses:        p.Losses,
			Draws:         st.Draws,
			MatchesPlayed: p.MatchesPlayed,
			Rating:        p.Rating,
			WinDiff:       st.WinDiff,
		})
	}
	return rows
}
