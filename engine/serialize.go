package engine

import (
	"encoding/json"
	"fmt"
)

// Save serializes the complete game state, nested players, piles, history
// and RNG included, to a JSON document. A Load of the result continues the
// game bit-for-bit, shuffles and AI decisions included.
func (g *GameState) Save() ([]byte, error) {
	return json.Marshal(g)
}

// Load restores a game state produced by Save.
func Load(data []byte) (*GameState, error) {
	var g GameState
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decoding game state: %w", err)
	}
	if len(g.Players) < 2 {
		return nil, fmt.Errorf("decoded game state has %d players, need at least 2", len(g.Players))
	}
	if g.Direction != 1 && g.Direction != -1 {
		return nil, fmt.Errorf("decoded game state has invalid direction %d", g.Direction)
	}
	if g.RNG == 0 {
		g.RNG = 1
	}
	return &g, nil
}

// Clone returns a deep copy, useful for what-if evaluation without
// touching the live game.
func (g *GameState) Clone() (*GameState, error) {
	data, err := g.Save()
	if err != nil {
		return nil, err
	}
	return Load(data)
}
