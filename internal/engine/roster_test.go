package engine

import (
	"errors"
	"testing"

	"americano-app/internal/model"
)

func TestAddPlayer(t *testing.T) {
	tour := model.DefaultTournament(testNow)

	p, err := AddPlayer(&tour, PlayerInput{LastName: "  Орлова ", FirstName: "Мария", Organization: "ДЮСШ №3"})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if p.ID != 5 || p.LastName != "Орлова" || p.Rating != model.DefaultRating || p.Points != 0 {
		t.Fatalf("player = %+v", p)
	}
	if len(tour.Players) != 5 {
		t.Fatalf("roster size = %d", len(tour.Players))
	}

	for _, in := range []PlayerInput{{FirstName: "Мария"}, {LastName: "Орлова", FirstName: "   "}} {
		if _, err := AddPlayer(&tour, in); !errors.Is(err, ErrNameRequired) {
			t.Fatalf("AddPlayer(%+v) err = %v", in, err)
		}
	}
	if len(tour.Players) != 5 {
		t.Fatalf("invalid player added")
	}
}

func TestAddPlayerAfterDeleteUsesMaxID(t *testing.T) {
	tour := model.DefaultTournament(testNow)
	if _, err := DeletePlayer(&tour, 2); err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	p, err := AddPlayer(&tour, PlayerInput{LastName: "Новиков", FirstName: "Ян"})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if p.ID != 5 {
		t.Fatalf("id = %d, want 5", p.ID)
	}
}

func TestUpdatePlayerKeepsResults(t *testing.T) {
	tour := seeded(t)
	if _, err := SubmitResult(tour, 1, 11, 10, false); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	p, err := UpdatePlayer(tour, 1, PlayerInput{LastName: "Иванов", FirstName: "Илья", Country: "Беларусь"})
	if err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if p.FirstName != "Илья" || p.Country != "Беларусь" || p.MiddleName != "" {
		t.Fatalf("player = %+v", p)
	}
	if p.Points != 11 || p.Wins != 1 || p.Rating != 1516 {
		t.Fatalf("results were touched: %+v", p)
	}
	if _, err := UpdatePlayer(tour, 77, PlayerInput{LastName: "A", FirstName: "B"}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}

func TestDeletePlayerCascades(t *testing.T) {
	tour := seeded(t)
	if _, err := SubmitResult(tour, 1, 11, 10, false); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	removed, err := DeletePlayer(tour, 1)
	if err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed %d matches, want 3", removed)
	}
	if len(tour.Players) != 3 || len(tour.Matches) != 3 {
		t.Fatalf("players=%d matches=%d, want 3 and 3", len(tour.Players), len(tour.Matches))
	}
	for _, m := range tour.Matches {
		if m.Involves(1) {
			t.Fatalf("match %d still references deleted player", m.ID)
		}
	}
	if p := mustPlayer(t, tour, 2); p.Losses != 1 || p.Points != 10 || p.MatchesPlayed != 1 {
		t.Fatalf("opponent aggregates changed: %+v", p)
	}

	if _, err := DeletePlayer(tour, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
}
