package store

import (
	"encoding/json"
	"fmt"

	"americano-app/internal/model"
)

func encodeSnapshot(t model.Tournament) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (model.Tournament, error) {
	var t model.Tournament
	if err := json.Unmarshal(data, &t); err != nil {
		return model.Tournament{}, fmt.Errorf("decode snapshot: %w", err)
	}
	t.Normalize()
	return t, nil
}
