package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/syncprobe/internal/canon"
	"github.com/roach88/syncprobe/internal/visibility"
)

// marshalObservations serializes reader observations to canonical JSON.
// Returns "[]" for nil/empty slices.
func marshalObservations(obs []visibility.Observation) (string, error) {
	items := make([]any, len(obs))
	for i, o := range obs {
		items[i] = map[string]any{
			"reader":    o.Reader,
			"value":     o.Value,
			"spins":     o.Spins,
			"stale":     o.Stale,
			"timed_out": o.TimedOut,
		}
	}
	data, err := canon.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal observations: %w", err)
	}
	return string(data), nil
}

// unmarshalObservations parses stored observations.
// Returns nil for an empty array so round-tripped results compare equal.
func unmarshalObservations(data string) ([]visibility.Observation, error) {
	var obs []visibility.Observation
	if err := json.Unmarshal([]byte(data), &obs); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	if len(obs) == 0 {
		return nil, nil
	}
	return obs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
