package engine

import "americano-app/internal/model"

// HeadToHead returns wins of b minus wins of a over completed matches between them.
// A negative value favours a; drawn matches count for neither.
func HeadToHead(t *model.Tournament, a, b int) int {
	winsA, winsB := 0, 0
	for _, m := range t.Matches {
		if !m.Completed() || !m.Between(a, b) || m.WinnerID == nil {
			continue
		}
		switch *m.WinnerID {
		case a:
			winsA++
		case b:
			winsB++
		}
	}
	return winsB - winsA
}

type HeadToHeadRecord struct {
	PlayerA int `json:"playerA"`
	PlayerB int `json:"playerB"`
	WinsA   int `json:"winsA"`
	WinsB   int `json:"winsB"`
	Draws   int `json:"draws"`
	Played  int `json:"played"`
	// Compare is HeadToHead(a, b).
	Compare int `json:"compare"`
}

func HeadToHeadSummary(t *model.Tournament, a, b int) HeadToHeadRecord {
	rec := HeadToHeadRecord{PlayerA: a, PlayerB: b}
	for _, m := range t.Matches {
		if !m.Completed() || !m.Between(a, b) {
			continue
		}
		rec.Played++
		switch {
		case m.WinnerID == nil:
			rec.Draws++
		case *m.WinnerID == a:
			rec.WinsA++
		case *m.WinnerID == b:
			rec.WinsB++
		}
	}
	rec.Compare = rec.WinsB - rec.WinsA
	return rec
}
