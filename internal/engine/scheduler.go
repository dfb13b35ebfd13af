package engine

import (
	"time"

	"americano-app/internal/model"
)

const (
	scheduleStartHour = 10
	changeoverMinutes = 10
)

// Schedule gives every match without a start time a court and a slot. Matches are
// dealt across the courts in order; the clock starts at 10:00 on now's day and moves
// on by the match duration plus changeover after each full pass over the courts.
// All matches placed in one call get the tournament's current round.
func Schedule(t *model.Tournament, now time.Time) ([]model.Match, error) {
	if len(t.Matches) == 0 {
		return nil, ErrNoMatches
	}

	courts := t.Settings.Courts
	if courts < 1 {
		courts = 1
	}
	duration := t.Settings.MatchDuration
	if duration <= 0 {
		duration = model.DefaultMatchDuration
	}
	step := time.Duration(duration+changeoverMinutes) * time.Minute

	local := now.In(t.Settings.Location())
	base := time.Date(local.Year(), local.Month(), local.Day(), scheduleStartHour, 0, 0, 0, local.Location())

	assigned := []model.Match{}
	n := 0
	for i := range t.Matches {
		m := &t.Matches[i]
		if m.StartTime != nil {
			continue
		}
		start := base.Add(time.Duration(n/courts) * step).UTC()
		m.Court = n%courts + 1
		m.StartTime = &start
		m.Round = t.CurrentRound
		assigned = append(assigned, *m)
		n++
	}
	return assigned, nil
}

// AdvanceRound moves the tournament to the next round and returns it.
func AdvanceRound(t *model.Tournament) int {
	if t.CurrentRound < 1 {
		t.CurrentRound = 1
	}
	t.CurrentRound++
	return t.CurrentRound
}

func SetRound(t *model.Tournament, round int) error {
	if round < 1 {
		return ErrInvalidRound
	}
	t.CurrentRound = round
	return nil
}
