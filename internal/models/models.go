// internal/models/models.go
package models

import (
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Elo          int       `json:"elo"`
	IsEphemeral  bool      `json:"isEphemeral"` // Guest account, created without registration.
}

// Player represents a participant in a game session. AI players have a
// nil Conn and IsAI set; they never disconnect.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	User      *User           `json:"user,omitempty"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"connected"`
	IsAI      bool            `json:"isAI"`
	Seat      uint8           `json:"seat"`
}

// GameAction is the envelope for every action a client sends over the
// game WebSocket.
type GameAction struct {
	ActionType string                 `json:"action"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
