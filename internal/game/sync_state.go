// internal/game/sync_state.go
package game

import "github.com/google/uuid"

// ObfLobbyCard is a lobby card in a state snapshot. Assignments are
// public, so both fields are always visible.
type ObfLobbyCard struct {
	Type string `json:"type"`
	Used bool   `json:"used"`
}

// ObfPlayerState represents one seat, obfuscated for a specific
// observer. RevealedHand is populated only for the observer's own seat.
type ObfPlayerState struct {
	PlayerID       uuid.UUID      `json:"playerId"`
	Username       string         `json:"username"`
	Seat           uint8          `json:"seat"`
	IsAI           bool           `json:"isAI"`
	Connected      bool           `json:"connected"`
	HandSize       int            `json:"handSize"`
	HasCalledPower bool           `json:"hasCalledPower"`
	LobbyCards     []ObfLobbyCard `json:"lobbyCards"`
	IsCurrentTurn  bool           `json:"isCurrentTurn"`
	RevealedHand   []EventCard    `json:"revealedHand,omitempty"`
	VoteSubmitted  bool           `json:"voteSubmitted,omitempty"`
}

// ObfVoteState is the in-progress vote as everyone may see it: who has
// submitted, never what. Ballots reveal only at resolution.
type ObfVoteState struct {
	Color     string    `json:"color"`
	Initiator uuid.UUID `json:"initiator"`
}

// ObfGameState is the full game state tailored for one observer.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Started         bool             `json:"started"`
	GameOver        bool             `json:"gameOver"`
	Phase           string           `json:"phase"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	Direction       int8             `json:"direction"`
	TurnID          int              `json:"turnId"`
	ActiveColor     string           `json:"activeColor"`
	TopCard         *EventCard       `json:"topCard,omitempty"`
	DrawPileSize    int              `json:"drawPileSize"`
	PlayPileSize    int              `json:"playPileSize"`
	SkipPending     bool             `json:"skipPending"`
	Vote            *ObfVoteState    `json:"vote,omitempty"`
	Players         []ObfPlayerState `json:"players"`
	HouseRules      HouseRules       `json:"houseRules"`
}

// ObfuscatedStateFor generates a snapshot of the game state tailored to
// the perspective of the requesting user. Assumes lock is held by caller.
func (g *PowerGame) ObfuscatedStateFor(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:       g.ID,
		Started:      g.Started,
		GameOver:     g.GameOver || g.Engine.IsGameOver(),
		Phase:        g.Engine.Phase.String(),
		Direction:    g.Engine.Direction,
		TurnID:       g.TurnID,
		ActiveColor:  g.Engine.ActiveColor.String(),
		DrawPileSize: len(g.Engine.DrawPile),
		PlayPileSize: len(g.Engine.PlayPile),
		SkipPending:  g.Engine.SkipNext,
		HouseRules:   g.HouseRules,
	}

	if g.Started && !obf.GameOver {
		obf.CurrentPlayerID = g.currentPlayerID()
	}
	if len(g.Engine.PlayPile) > 0 {
		obf.TopCard = cardEvent(g.Engine.TopCard(), nil)
	}
	if v := g.Engine.ActiveVote; v != nil {
		obf.Vote = &ObfVoteState{
			Color:     v.Color.String(),
			Initiator: g.EngineToPlayer[v.Initiator],
		}
	}

	obf.Players = make([]ObfPlayerState, len(g.Players))
	for i, pl := range g.Players {
		seat := uint8(i)
		ep := g.Engine.Players[seat]
		isSelf := pl.ID == forUser

		ps := ObfPlayerState{
			PlayerID:       pl.ID,
			Username:       pl.User.Username,
			Seat:           seat,
			IsAI:           pl.IsAI,
			Connected:      pl.Connected,
			HandSize:       len(ep.Hand),
			HasCalledPower: ep.HasCalledPower,
			IsCurrentTurn:  g.Started && !obf.GameOver && g.Engine.CurrentPlayerIndex == seat,
		}
		ps.LobbyCards = make([]ObfLobbyCard, len(ep.LobbyCards))
		for j, lc := range ep.LobbyCards {
			ps.LobbyCards[j] = ObfLobbyCard{Type: lc.Type.String(), Used: lc.Used}
		}
		if v := g.Engine.ActiveVote; v != nil && int(seat) < len(v.Ballots) {
			ps.VoteSubmitted = v.Ballots[seat].Submitted
		}
		if isSelf {
			ps.RevealedHand = make([]EventCard, len(ep.Hand))
			for j, c := range ep.Hand {
				idx := j
				ps.RevealedHand[j] = *cardEvent(c, &idx)
			}
		}
		obf.Players[i] = ps
	}

	return obf
}
