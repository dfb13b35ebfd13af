package engine

import (
	"strings"

	"americano-app/internal/model"
)

type PlayerInput struct {
	LastName     string `json:"lastName"`
	FirstName    string `json:"firstName"`
	MiddleName   string `json:"middleName"`
	Organization string `json:"organization"`
	Nationality  string `json:"nationality"`
	Country      string `json:"country"`
}

func (in PlayerInput) normalize() (PlayerInput, error) {
	out := PlayerInput{
		LastName:     strings.TrimSpace(in.LastName),
		FirstName:    strings.TrimSpace(in.FirstName),
		MiddleName:   strings.TrimSpace(in.MiddleName),
		Organization: strings.TrimSpace(in.Organization),
		Nationality:  strings.TrimSpace(in.Nationality),
		Country:      strings.TrimSpace(in.Country),
	}
	if out.LastName == "" || out.FirstName == "" {
		return PlayerInput{}, ErrNameRequired
	}
	return out, nil
}

func AddPlayer(t *model.Tournament, in PlayerInput) (model.Player, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Player{}, err
	}
	player := model.Player{
		ID:           t.NextPlayerID(),
		LastName:     in.LastName,
		FirstName:    in.FirstName,
		MiddleName:   in.MiddleName,
		Organization: in.Organization,
		Nationality:  in.Nationality,
		Country:      in.Country,
		Rating:       model.DefaultRating,
	}
	t.Players = append(t.Players, player)
	return player, nil
}

// UpdatePlayer edits names and metadata; results-derived fields are left alone.
func UpdatePlayer(t *model.Tournament, id int, in PlayerInput) (model.Player, error) {
	pi := t.PlayerIndex(id)
	if pi < 0 {
		return model.Player{}, ErrPlayerNotFound
	}
	in, err := in.normalize()
	if err != nil {
		return model.Player{}, err
	}
	p := &t.Players[pi]
	p.LastName = in.LastName
	p.FirstName = in.FirstName
	p.MiddleName = in.MiddleName
	p.Organization = in.Organization
	p.Nationality = in.Nationality
	p.Country = in.Country
	return *p, nil
}

// DeletePlayer removes the player with all of their matches and returns how many
// matches went with them. Opponents keep whatever those matches gave them.
func DeletePlayer(t *model.Tournament, id int) (int, error) {
	pi := t.PlayerIndex(id)
	if pi < 0 {
		return 0, ErrPlayerNotFound
	}
	t.Players = append(t.Players[:pi], t.Players[pi+1:]...)

	kept := t.Matches[:0]
	removed := 0
	for _, m := range t.Matches {
		if m.Involves(id) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	t.Matches = kept
	return removed, nil
}
