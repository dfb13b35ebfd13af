package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"americano-app/internal/engine"
	"americano-app/internal/model"
)

const (
	StandingsFileName = "tournament_stats.csv"
	SnapshotFileName  = "tournament_data.json"

	CSVContentType  = "text/csv; charset=utf-8"
	JSONContentType = "application/json; charset=utf-8"
)

var standingsHeader = []string{"Место", "Фамилия", "Имя", "Организация", "Очки", "Матчи", "Победы", "Поражения", "Рейтинг"}

// WriteStandingsCSV writes the leaderboard summary in standings order.
func WriteStandingsCSV(w io.Writer, t *model.Tournament) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(standingsHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range engine.Standings(t) {
		p := s.Player
		row := []string{
			strconv.Itoa(s.Rank),
			p.LastName,
			p.FirstName,
			p.Organization,
			strconv.Itoa(p.Points),
			strconv.Itoa(p.MatchesPlayed),
			strconv.Itoa(p.Wins),
			strconv.Itoa(p.Losses),
			strconv.Itoa(p.Rating),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotJSON writes the full snapshot, indented.
func WriteSnapshotJSON(w io.Writer, t *model.Tournament) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}
