package engine

import "math"

const EloK = 32

type Outcome int

const (
	// AWins means the first argument of UpdateRating won.
	AWins Outcome = iota
	Draw
)

// UpdateRating applies one Elo step. The first argument is the nominal winner; for a
// draw the same ordering is kept and both sides score 0.5. Each delta is rounded on
// its own, so the two changes may differ in magnitude by one point.
func UpdateRating(a, b int, outcome Outcome) (newA, newB int) {
	expected := ExpectedScore(a, b)
	if outcome == Draw {
		return a + roundHalfUp(EloK*(0.5-expected)), b + roundHalfUp(EloK*(0.5-(1-expected)))
	}
	return a + roundHalfUp(EloK*(1-expected)), b + roundHalfUp(EloK*(0-(1-expected)))
}

// ExpectedScore is the expected result for a rated a against b.
func ExpectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
