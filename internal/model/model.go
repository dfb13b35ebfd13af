package model

import (
	"encoding/json"
	"strings"
	"time"
	_ "time/tzdata"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchLive, MatchCompleted:
		return true
	}
	return false
}

const (
	DefaultRating         = 1500
	DefaultTotalPoints    = 21
	DefaultCourts         = 4
	DefaultMatchDuration  = 30
	DefaultTimezone       = "Europe/Moscow"
	DefaultTournamentName = "Турнир по настольному теннису"
	TournamentAmericano   = "Americano"
)

type Player struct {
	ID            int    `json:"id"`
	LastName      string `json:"lastName"`
	FirstName     string `json:"firstName"`
	MiddleName    string `json:"middleName,omitempty"`
	Organization  string `json:"organization,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	Country       string `json:"country,omitempty"`
	Points        int    `json:"points"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Rating        int    `json:"rating"`
}

// UnmarshalJSON gives players from older exports, which carry no rating field, the
// starting rating. A present rating is kept as is, zero included.
func (p *Player) UnmarshalJSON(data []byte) error {
	type plain Player
	var raw struct {
		plain
		Rating *int `json:"rating"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Player(raw.plain)
	p.Rating = DefaultRating
	if raw.Rating != nil {
		p.Rating = *raw.Rating
	}
	return nil
}

func (p Player) FullName() string {
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return last + " " + first
}

// ShortName renders "Lastname F." the way the leaderboard and schedule show players.
func (p Player) ShortName() string {
	last := strings.TrimSpace(p.LastName)
	first := []rune(strings.TrimSpace(p.FirstName))
	if len(first) == 0 {
		return last
	}
	return last + " " + string(first[0]) + "."
}

func (p Player) Draws() int {
	draws := p.MatchesPlayed - p.Wins - p.Losses
	if draws < 0 {
		return 0
	}
	return draws
}

type Match struct {
	ID            int         `json:"id"`
	Player1ID     int         `json:"player1Id"`
	Player2ID     int         `json:"player2Id"`
	Player1Points int         `json:"player1Points"`
	Player2Points int         `json:"player2Points"`
	TotalPoints   int         `json:"totalPoints"`
	Court         int         `json:"court"`
	Round         int         `json:"round"`
	Status        MatchStatus `json:"status"`
	StartTime     *time.Time  `json:"startTime"`
	WinnerID      *int        `json:"winnerId"`
}

func (m Match) Completed() bool {
	return m.Status == MatchCompleted
}

func (m Match) Involves(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Between reports whether the match pairs a and b, in either order.
func (m Match) Between(a, b int) bool {
	return (m.Player1ID == a && m.Player2ID == b) || (m.Player1ID == b && m.Player2ID == a)
}

func (m Match) MarshalJSON() ([]byte, error) {
	type plain Match
	return json.Marshal(struct {
		plain
		Completed bool `json:"completed"`
	}{plain: plain(m), Completed: m.Completed()})
}

func (m *Match) UnmarshalJSON(data []byte) error {
	type plain Match
	var raw struct {
		plain
		Completed bool `json:"completed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Match(raw.plain)
	if !m.Status.Valid() {
		if raw.Completed {
			m.Status = MatchCompleted
		} else {
			m.Status = MatchScheduled
		}
	}
	return nil
}

type Settings struct {
	TotalPoints   int    `json:"totalPoints"`
	Courts        int    `json:"courts"`
	MatchDuration int    `json:"matchDuration"`
	Timezone      string `json:"timezone"`
	AllowDraws    bool   `json:"allowDraws"`
}

func DefaultSettings() Settings {
	return Settings{
		TotalPoints:   DefaultTotalPoints,
		Courts:        DefaultCourts,
		MatchDuration: DefaultMatchDuration,
		Timezone:      DefaultTimezone,
		AllowDraws:    false,
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (s Settings) Location() *time.Location {
	if strings.TrimSpace(s.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Tournament struct {
	Name         string    `json:"tournamentName"`
	Type         string    `json:"tournamentType"`
	Settings     Settings  `json:"settings"`
	Players      []Player  `json:"players"`
	Matches      []Match   `json:"matches"`
	CurrentRound int       `json:"currentRound"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (t *Tournament) PlayerIndex(id int) int {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tournament) MatchIndex(id int) int {
	for i := range t.Matches {
		if t.Matches[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tournament) Player(id int) (Player, bool) {
	if i := t.PlayerIndex(id); i >= 0 {
		return t.Players[i], true
	}
	return Player{}, false
}

func (t *Tournament) Match(id int) (Match, bool) {
	if i := t.MatchIndex(id); i >= 0 {
		return t.Matches[i], true
	}
	return Match{}, false
}

func (t *Tournament) NextPlayerID() int {
	next := 1
	for _, p := range t.Players {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

func (t *Tournament) NextMatchID() int {
	next := 1
	for _, m := range t.Matches {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

func (t *Tournament) HasPairing(a, b int) bool {
	for _, m := range t.Matches {
		if m.Between(a, b) {
			return true
		}
	}
	return false
}

func (t Tournament) Clone() Tournament {
	out := t
	out.Players = append([]Player(nil), t.Players...)
	out.Matches = make([]Match, len(t.Matches))
	for i, m := range t.Matches {
		if m.StartTime != nil {
			start := *m.StartTime
			m.StartTime = &start
		}
		if m.WinnerID != nil {
			winner := *m.WinnerID
			m.WinnerID = &winner
		}
		out.Matches[i] = m
	}
	if t.Players == nil {
		out.Players = []Player{}
	}
	return out
}

// Normalize fills defaults that older or hand-edited snapshots may be missing.
func (t *Tournament) Normalize() {
	if strings.TrimSpace(t.Name) == "" {
		t.Name = DefaultTournamentName
	}
	if t.Type == "" {
		t.Type = TournamentAmericano
	}
	defaults := DefaultSettings()
	if t.Settings.TotalPoints <= 0 {
		t.Settings.TotalPoints = defaults.TotalPoints
	}
	if t.Settings.Courts <= 0 {
		t.Settings.Courts = defaults.Courts
	}
	if t.Settings.MatchDuration <= 0 {
		t.Settings.MatchDuration = defaults.MatchDuration
	}
	if t.Settings.Timezone == "" {
		t.Settings.Timezone = defaults.Timezone
	}
	if t.CurrentRound < 1 {
		t.CurrentRound = 1
	}
	if t.Players == nil {
		t.Players = []Player{}
	}
	if t.Matches == nil {
		t.Matches = []Match{}
	}
}

func DefaultTournament(now time.Time) Tournament {
	seed := []Player{
		{ID: 1, LastName: "Иванов", FirstName: "Иван", MiddleName: "Иванович", Organization: "Спортклуб 'Чемпион'", Nationality: "Русский", Country: "Россия"},
		{ID: 2, LastName: "Петров", FirstName: "Петр", MiddleName: "Петрович", Organization: "Клуб 'Молния'", Nationality: "Русский", Country: "Россия"},
		{ID: 3, LastName: "Сидорова", FirstName: "Анна", Organization: "Фитнес-центр 'Энергия'", Nationality: "Русская", Country: "Россия"},
		{ID: 4, LastName: "Смирнов", FirstName: "Алексей", Organization: "Спорткомплекс 'Олимп'"},
	}
	for i := range seed {
		seed[i].Rating = DefaultRating
	}
	return Tournament{
		Name:         DefaultTournamentName,
		Type:         TournamentAmericano,
		Settings:     DefaultSettings(),
		Players:      seed,
		Matches:      []Match{},
		CurrentRound: 1,
		LastUpdated:  now,
	}
}
