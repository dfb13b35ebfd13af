package engine

import (
	"cmp"
	"encoding/json"
	"slices"
	"time"

	"americano-app/internal/model"
)

// MatchView is a match joined with both player records for display.
type MatchView struct {
	model.Match
	Player1 model.Player `json:"player1"`
	Player2 model.Player `json:"player2"`
}

// MarshalJSON keeps the player records; the embedded Match marshaller would
// otherwise be promoted and drop them.
func (v MatchView) MarshalJSON() ([]byte, error) {
	type match model.Match
	return json.Marshal(struct {
		match
		Completed bool         `json:"completed"`
		Player1   model.Player `json:"player1"`
		Player2   model.Player `json:"player2"`
	}{match: match(v.Match), Completed: v.Completed(), Player1: v.Player1, Player2: v.Player2})
}

func viewOf(t *model.Tournament, m model.Match) (MatchView, bool) {
	p1, ok1 := t.Player(m.Player1ID)
	p2, ok2 := t.Player(m.Player2ID)
	if !ok1 || !ok2 {
		return MatchView{}, false
	}
	return MatchView{Match: m, Player1: p1, Player2: p2}, true
}

type MatchFilter struct {
	Round  int
	Status model.MatchStatus
}

func ListMatches(t *model.Tournament, f MatchFilter) []MatchView {
	views := []MatchView{}
	for _, m := range t.Matches {
		if f.Round > 0 && m.Round != f.Round {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if v, ok := viewOf(t, m); ok {
			views = append(views, v)
		}
	}
	return views
}

func LiveMatches(t *model.Tournament) []MatchView {
	return ListMatches(t, MatchFilter{Status: model.MatchLive})
}

type ScheduleFilter string

const (
	ScheduleToday    ScheduleFilter = "today"
	ScheduleTomorrow ScheduleFilter = "tomorrow"
	ScheduleAll      ScheduleFilter = "all"
)

type TimeSlot struct {
	Date    string      `json:"date"`
	Time    string      `json:"time"`
	Matches []MatchView `json:"matches"`
}

// ScheduleFor groups timed matches by their "HH:MM" start in the tournament timezone.
// Slots on different days stay apart.
func ScheduleFor(t *model.Tournament, filter ScheduleFilter, now time.Time) []TimeSlot {
	loc := t.Settings.Location()
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	var from, to time.Time
	switch filter {
	case ScheduleToday:
		from, to = today, today.AddDate(0, 0, 1)
	case ScheduleTomorrow:
		from, to = today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)
	}

	timed := []model.Match{}
	for _, m := range t.Matches {
		if m.StartTime == nil {
			continue
		}
		if !from.IsZero() && (m.StartTime.Before(from) || !m.StartTime.Before(to)) {
			continue
		}
		timed = append(timed, m)
	}
	slices.SortStableFunc(timed, func(a, b model.Match) int {
		return a.StartTime.Compare(*b.StartTime)
	})

	slots := []TimeSlot{}
	index := map[string]int{}
	for _, m := range timed {
		v, ok := viewOf(t, m)
		if !ok {
			continue
		}
		start := m.StartTime.In(loc)
		key := start.Format("2006-01-02 15:04")
		i, seen := index[key]
		if !seen {
			i = len(slots)
			index[key] = i
			slots = append(slots, TimeSlot{Date: start.Format("2006-01-02"), Time: start.Format("15:04")})
		}
		slots[i].Matches = append(slots[i].Matches, v)
	}
	return slots
}

type CourtSchedule struct {
	Court   int         `json:"court"`
	Matches []MatchView `json:"matches"`
}

func CourtSchedules(t *model.Tournament) []CourtSchedule {
	out := make([]CourtSchedule, 0, t.Settings.Courts)
	for court := 1; court <= t.Settings.Courts; court++ {
		cs := CourtSchedule{Court: court, Matches: []MatchView{}}
		for _, m := range t.Matches {
			if m.Court != court || m.StartTime == nil {
				continue
			}
			if v, ok := viewOf(t, m); ok {
				cs.Matches = append(cs.Matches, v)
			}
		}
		slices.SortStableFunc(cs.Matches, func(a, b MatchView) int {
			return a.StartTime.Compare(*b.StartTime)
		})
		out = append(out, cs)
	}
	return out
}

// RecentResults returns up to limit completed matches, latest start time first.
// Matches that never got a start time sort last.
func RecentResults(t *model.Tournament, limit int) []MatchView {
	done := []model.Match{}
	for _, m := range t.Matches {
		if m.Completed() {
			done = append(done, m)
		}
	}
	slices.SortStableFunc(done, func(a, b model.Match) int {
		switch {
		case a.StartTime == nil && b.StartTime == nil:
			return 0
		case a.StartTime == nil:
			return 1
		case b.StartTime == nil:
			return -1
		}
		return b.StartTime.Compare(*a.StartTime)
	})

	views := []MatchView{}
	for _, m := range done {
		if limit > 0 && len(views) >= limit {
			break
		}
		if v, ok := viewOf(t, m); ok {
			views = append(views, v)
		}
	}
	return views
}

func byPoints(t *model.Tournament) []model.Player {
	players := slices.Clone(t.Players)
	slices.SortStableFunc(players, func(a, b model.Player) int {
		return cmp.Compare(b.Points, a.Points)
	})
	return players
}

func TopScorers(t *model.Tournament, limit int) []model.Player {
	players := byPoints(t)
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players
}

const previewPlayers = 8

type PairPreview struct {
	Rank1   int          `json:"rank1"`
	Player1 model.Player `json:"player1"`
	Rank2   int          `json:"rank2"`
	Player2 model.Player `json:"player2"`
}

type NextRoundView struct {
	CurrentRound   int           `json:"currentRound"`
	NextRound      int           `json:"nextRound"`
	PendingInRound int           `json:"pendingInRound"`
	Ready          bool          `json:"ready"`
	CompletedTotal int           `json:"completedTotal"`
	PlayerCount    int           `json:"playerCount"`
	Pairs          []PairPreview `json:"pairs"`
}

// NextRound summarizes progress of the current round and previews pairs among the
// top eight players by points (1 v 2, 3 v 4, ...).
func NextRound(t *model.Tournament) NextRoundView {
	view := NextRoundView{
		CurrentRound: t.CurrentRound,
		NextRound:    t.CurrentRound + 1,
		PlayerCount:  len(t.Players),
		Pairs:        []PairPreview{},
	}
	for _, m := range t.Matches {
		if m.Completed() {
			view.CompletedTotal++
		} else if m.Round == t.CurrentRound {
			view.PendingInRound++
		}
	}
	view.Ready = view.PendingInRound == 0

	top := TopScorers(t, previewPlayers)
	for i := 0; i+1 < len(top); i += 2 {
		view.Pairs = append(view.Pairs, PairPreview{
			Rank1:   i + 1,
			Player1: top[i],
			Rank2:   i + 2,
			Player2: top[i+1],
		})
	}
	return view
}

type Summary struct {
	Name             string    `json:"tournamentName"`
	Type             string    `json:"tournamentType"`
	Players          int       `json:"players"`
	Matches          int       `json:"matches"`
	CompletedMatches int       `json:"completedMatches"`
	LiveMatches      int       `json:"liveMatches"`
	CurrentRound     int       `json:"currentRound"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

func Summarize(t *model.Tournament) Summary {
	s := Summary{
		Name:         t.Name,
		Type:         t.Type,
		Players:      len(t.Players),
		Matches:      len(t.Matches),
		CurrentRound: t.CurrentRound,
		LastUpdated:  t.LastUpdated,
	}
	for _, m := range t.Matches {
		switch m.Status {
		case model.MatchCompleted:
			s.CompletedMatches++
		case model.MatchLive:
			s.LiveMatches++
		}
	}
	return s
}
