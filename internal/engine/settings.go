package engine

import (
	"fmt"
	"strings"
	"time"

	"americano-app/internal/model"
)

type SettingsInput struct {
	TotalPoints   int    `json:"totalPoints"`
	Courts        int    `json:"courts"`
	MatchDuration int    `json:"matchDuration"`
	Timezone      string `json:"timezone"`
	AllowDraws    *bool  `json:"allowDraws"`
}

// UpdateSettings replaces the tournament settings. Zero values fall back to the
// defaults; allowDraws is kept unless given.
func UpdateSettings(t *model.Tournament, in SettingsInput) (model.Settings, error) {
	if in.TotalPoints < 0 || in.Courts < 0 || in.MatchDuration < 0 {
		return model.Settings{}, fmt.Errorf("%w: values must not be negative", ErrInvalidSettings)
	}
	defaults := model.DefaultSettings()
	next := model.Settings{
		TotalPoints:   orDefault(in.TotalPoints, defaults.TotalPoints),
		Courts:        orDefault(in.Courts, defaults.Courts),
		MatchDuration: orDefault(in.MatchDuration, defaults.MatchDuration),
		Timezone:      strings.TrimSpace(in.Timezone),
		AllowDraws:    t.Settings.AllowDraws,
	}
	if next.Timezone == "" {
		next.Timezone = defaults.Timezone
	}
	if _, err := time.LoadLocation(next.Timezone); err != nil {
		return model.Settings{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, next.Timezone)
	}
	if in.AllowDraws != nil {
		next.AllowDraws = *in.AllowDraws
	}
	t.Settings = next
	return next, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
