// Package seed bundles the initial roster snapshot and validates imported
// documents. A snapshot is the export format too: players and championships
// only, match history intentionally excluded.
package seed

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"pvp-leaderboard/internal/domain"
)

//go:embed snapshot.json
var embedded []byte

var ErrMissingPlayers = errors.New("snapshot is missing the players array")

type Snapshot struct {
	Players []domain.Player       `json:"players"`
	Champs  []domain.Championship `json:"champs"`
}

// Parse decodes and validates a snapshot document. The players key must be
// present; champs defaults to empty. A failed parse applies nothing.
func Parse(data []byte) (*Snapshot, error) {
	var raw struct {
		Players *[]domain.Player      `json:"players"`
		Champs  []domain.Championship `json:"champs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	if raw.Players == nil {
		return nil, ErrMissingPlayers
	}

	snap := &Snapshot{Players: *raw.Players, Champs: raw.Champs}
	if snap.Champs == nil {
		snap.Champs = []domain.Championship{}
	}
	return snap, nil
}

// Embedded returns the bundled fallback snapshot.
func Embedded() (*Snapshot, error) {
	return Parse(embedded)
}
