package engine

import (
	"fmt"

	"americano-app/internal/model"
)

type matchEvent int

const (
	eventStart matchEvent = iota
	eventPause
	eventSubmit
	eventReopen
)

func (e matchEvent) String() string {
	switch e {
	case eventStart:
		return "start"
	case eventPause:
		return "pause"
	case eventSubmit:
		return "submit result"
	case eventReopen:
		return "reopen"
	}
	return "unknown"
}

// nextStatus is the match state machine:
//
//	scheduled --start--> live --pause--> scheduled
//	scheduled|live --submit--> completed --reopen--> scheduled
func nextStatus(from model.MatchStatus, ev matchEvent) (model.MatchStatus, error) {
	switch from {
	case model.MatchScheduled:
		switch ev {
		case eventStart:
			return model.MatchLive, nil
		case eventSubmit:
			return model.MatchCompleted, nil
		}
	case model.MatchLive:
		switch ev {
		case eventPause:
			return model.MatchScheduled, nil
		case eventSubmit:
			return model.MatchCompleted, nil
		case eventStart:
			return model.MatchLive, nil
		}
	case model.MatchCompleted:
		if ev == eventReopen {
			return model.MatchScheduled, nil
		}
	}
	return from, fmt.Errorf("%w: cannot %s a %s match", ErrInvalidTransition, ev, from)
}

type Result struct {
	Match         model.Match `json:"match"`
	WinnerID      *int        `json:"winnerId"`
	Player1Rating int         `json:"player1Rating"`
	Player2Rating int         `json:"player2Rating"`
	Player1Delta  int         `json:"player1RatingDelta"`
	Player2Delta  int         `json:"player2RatingDelta"`
}

// SubmitResult records a score and updates both players. When the scores do not add
// up to the configured total the call fails with *TotalMismatchError unless confirm
// is set; nothing is changed in that case.
func SubmitResult(t *model.Tournament, matchID, p1Points, p2Points int, confirm bool) (Result, error) {
	mi := t.MatchIndex(matchID)
	if mi < 0 {
		return Result{}, ErrMatchNotFound
	}
	if p1Points < 0 || p2Points < 0 {
		return Result{}, ErrInvalidScore
	}
	match := &t.Matches[mi]
	status, err := nextStatus(match.Status, eventSubmit)
	if err != nil {
		return Result{}, err
	}
	i1 := t.PlayerIndex(match.Player1ID)
	i2 := t.PlayerIndex(match.Player2ID)
	if i1 < 0 || i2 < 0 {
		return Result{}, ErrPlayerNotFound
	}
	total := p1Points + p2Points
	if total != t.Settings.TotalPoints && !confirm {
		return Result{}, &TotalMismatchError{Got: total, Want: t.Settings.TotalPoints}
	}

	match.Player1Points = p1Points
	match.Player2Points = p2Points
	match.TotalPoints = total
	match.Status = status
	match.WinnerID = nil
	switch {
	case p1Points > p2Points:
		winner := match.Player1ID
		match.WinnerID = &winner
	case p2Points > p1Points:
		winner := match.Player2ID
		match.WinnerID = &winner
	}

	player1 := &t.Players[i1]
	player2 := &t.Players[i2]
	before1, before2 := player1.Rating, player2.Rating
	applyResult(match, player1, player2)

	return Result{
		Match:         *match,
		WinnerID:      match.WinnerID,
		Player1Rating: player1.Rating,
		Player2Rating: player2.Rating,
		Player1Delta:  player1.Rating - before1,
		Player2Delta:  player2.Rating - before2,
	}, nil
}

func applyResult(m *model.Match, p1, p2 *model.Player) {
	p1.MatchesPlayed++
	p2.MatchesPlayed++
	p1.Points += m.Player1Points
	p2.Points += m.Player2Points

	switch {
	case m.Player1Points > m.Player2Points:
		p1.Wins++
		p2.Losses++
		p1.Rating, p2.Rating = UpdateRating(p1.Rating, p2.Rating, AWins)
	case m.Player2Points > m.Player1Points:
		p2.Wins++
		p1.Losses++
		p2.Rating, p1.Rating = UpdateRating(p2.Rating, p1.Rating, AWins)
	default:
		p1.Rating, p2.Rating = UpdateRating(p1.Rating, p2.Rating, Draw)
	}
}

// EditResult reopens a completed match and takes its points, win and loss back off
// the players. Rating changes stay where they are.
func EditResult(t *model.Tournament, matchID int) (model.Match, error) {
	mi := t.MatchIndex(matchID)
	if mi < 0 {
		return model.Match{}, ErrMatchNotFound
	}
	match := &t.Matches[mi]
	status, err := nextStatus(match.Status, eventReopen)
	if err != nil {
		return model.Match{}, err
	}

	winnerID := match.WinnerID
	match.Status = status
	match.WinnerID = nil

	i1 := t.PlayerIndex(match.Player1ID)
	i2 := t.PlayerIndex(match.Player2ID)
	if i1 >= 0 {
		revertPlayer(&t.Players[i1], match.Player1Points, winnerID)
	}
	if i2 >= 0 {
		revertPlayer(&t.Players[i2], match.Player2Points, winnerID)
	}
	return *match, nil
}

func revertPlayer(p *model.Player, points int, winnerID *int) {
	p.Points = clampSub(p.Points, points)
	p.MatchesPlayed = clampSub(p.MatchesPlayed, 1)
	if winnerID == nil {
		return
	}
	if *winnerID == p.ID {
		p.Wins = clampSub(p.Wins, 1)
	} else {
		p.Losses = clampSub(p.Losses, 1)
	}
}

func clampSub(v, d int) int {
	if v-d < 0 {
		return 0
	}
	return v - d
}

func StartMatch(t *model.Tournament, matchID int) (model.Match, error) {
	return moveMatch(t, matchID, eventStart)
}

func PauseMatch(t *model.Tournament, matchID int) (model.Match, error) {
	return moveMatch(t, matchID, eventPause)
}

func moveMatch(t *model.Tournament, matchID int, ev matchEvent) (model.Match, error) {
	mi := t.MatchIndex(matchID)
	if mi < 0 {
		return model.Match{}, ErrMatchNotFound
	}
	status, err := nextStatus(t.Matches[mi].Status, ev)
	if err != nil {
		return model.Match{}, err
	}
	t.Matches[mi].Status = status
	return t.Matches[mi], nil
}

// DeleteMatch drops the match as is; a completed result stays on the players.
func DeleteMatch(t *model.Tournament, matchID int) error {
	mi := t.MatchIndex(matchID)
	if mi < 0 {
		return ErrMatchNotFound
	}
	t.Matches = append(t.Matches[:mi], t.Matches[mi+1:]...)
	return nil
}
