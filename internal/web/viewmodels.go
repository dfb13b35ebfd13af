package web

import (
	"americano-app/internal/engine"
	"americano-app/internal/store"
)

type StandingRow struct {
	Rank          int    `json:"rank"`
	PlayerID      int    `json:"playerId"`
	FullName      string `json:"fullName"`
	ShortName     string `json:"shortName"`
	Organization  string `json:"organization,omitempty"`
	Points        int    `json:"points"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Rating        int    `json:"rating"`
	WinDiff       int    `json:"winDiff"`
}

type MatchList struct {
	Matches []engine.MatchView `json:"matches"`
}

type ScheduleView struct {
	Filter engine.ScheduleFilter `json:"filter"`
	Slots  []engine.TimeSlot     `json:"slots"`
}

type RoundView struct {
	CurrentRound int `json:"currentRound"`
}

type DeletePlayerView struct {
	RemovedMatches int `json:"removedMatches"`
}

type HistoryView struct {
	Revisions []store.Revision `json:"revisions"`
}

type scoreRequest struct {
	Player1Points *int `json:"player1Points"`
	Player2Points *int `json:"player2Points"`
	Confirm       bool `json:"confirm"`
}

type roundRequest struct {
	Round int `json:"round"`
}
