// internal/game/game.go
package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/votecraft/powerplays/engine"
	"github.com/votecraft/powerplays/internal/cache"
	"github.com/votecraft/powerplays/internal/database"
	"github.com/votecraft/powerplays/internal/models"
)

// OnGameEndFunc is executed when a game ends. Winner is uuid.Nil when
// the game ended without one (stall or mass forfeit).
type OnGameEndFunc func(lobbyID uuid.UUID, winner uuid.UUID, standings map[uuid.UUID]int)

// GameEventType represents the type of a game-related event broadcast via WebSockets.
type GameEventType string

// Constants defining the various GameEvent types used for WebSocket communication.
const (
	EventGameStart        GameEventType = "game_start"
	EventGamePlayerTurn   GameEventType = "game_player_turn"
	EventGameEnd          GameEventType = "game_end"
	EventPlayerPlayCard   GameEventType = "player_play_card"   // Public: card played and its resolved effect.
	EventPlayerDraw       GameEventType = "player_draw"        // Public: player drew (count only).
	EventPrivateDraw      GameEventType = "private_draw"       // Private: details of the cards drawn.
	EventPlayerPowerCall  GameEventType = "player_power_call"  // Public: player declared Power!.
	EventPlayerChallenge  GameEventType = "player_challenge"   // Public: challenge outcome.
	EventVoteStarted      GameEventType = "vote_started"       // Public: a vote card opened a vote.
	EventVoteSubmitted    GameEventType = "vote_submitted"     // Public: seat submitted or declined (card hidden).
	EventVoteResolved     GameEventType = "vote_resolved"      // Public: ballots revealed, winner and reward.
	EventLobbyChoice      GameEventType = "lobby_choice"       // Private: prompt to pick a lobby card during setup.
	EventLobbyOffer       GameEventType = "lobby_offer"        // Private: activation window after a trigger-color play.
	EventLobbyAssigned    GameEventType = "lobby_assigned"     // Public: seat's lobby card selection.
	EventLobbyActivated   GameEventType = "lobby_activated"    // Public: bill or court case fired.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: full game state sync for a player.
	EventPrivateFail      GameEventType = "private_action_fail"
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventCard carries card details within a GameEvent payload. Hidden
// cards are sent with Known=false and no detail fields.
type EventCard struct {
	Known bool   `json:"known"`
	Color string `json:"color,omitempty"`
	Type  string `json:"type,omitempty"`
	Value int    `json:"value,omitempty"`
	Idx   *int   `json:"idx,omitempty"` // Index in hand, if relevant.
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Card    *EventCard             `json:"card,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *ObfGameState          `json:"state,omitempty"` // Full obfuscated state for sync events.
}

// HouseRules holds the service-level knobs for a game session.
type HouseRules struct {
	TurnTimerSec        int               `json:"turnTimerSec"`        // 0 disables the turn timer.
	AIThinkDelayMs      int               `json:"aiThinkDelayMs"`      // 0 runs AI turns synchronously.
	MaxTurns            int               `json:"maxTurns"`            // Hard cap before the game is scored as a stalemate.
	Difficulty          engine.Difficulty `json:"difficulty"`          // AI policy tier for this session.
	ForfeitOnDisconnect bool              `json:"forfeitOnDisconnect"` // End the game when no human remains.
	Seed                uint64            `json:"-"`                   // 0 uses wall-clock seeding.
}

// PowerGame represents the state and logic for a single game session.
// The embedded engine is the authoritative rules state; PowerGame adds
// identity, timing, transport and persistence around it.
type PowerGame struct {
	ID      uuid.UUID
	LobbyID uuid.UUID

	HouseRules HouseRules
	Rules      engine.Rules

	Players []*models.Player
	Engine  *engine.GameState

	PlayerToEngine map[uuid.UUID]uint8
	EngineToPlayer [engine.MaxPlayers]uuid.UUID

	// Turn management.
	TurnID       int
	TurnDuration time.Duration
	turnTimer    *time.Timer
	aiTimer      *time.Timer
	actionIndex  int

	// Lifecycle state.
	Started  bool
	GameOver bool

	// A colored play can open a lobby window for a human; the turn holds
	// until they answer or the timer declines for them.
	pendingLobby *engine.LobbyOffer

	// Consecutive turns that ended with neither a play nor a draw; a
	// full table of them means the deck is spent and nobody can move.
	stallPasses int

	lastSeen map[uuid.UUID]time.Time
	Mu       sync.Mutex

	// Communication callbacks.
	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewPowerGame creates a game instance with default settings. The
// engine is initialized during Begin.
func NewPowerGame() *PowerGame {
	id, _ := uuid.NewRandom()
	return &PowerGame{
		ID:             id,
		lastSeen:       make(map[uuid.UUID]time.Time),
		PlayerToEngine: make(map[uuid.UUID]uint8),
		TurnDuration:   30 * time.Second,
		Rules:          engine.DefaultRules(),
		HouseRules: HouseRules{
			TurnTimerSec:        30,
			AIThinkDelayMs:      800,
			MaxTurns:            500,
			Difficulty:          engine.DifficultyMedium,
			ForfeitOnDisconnect: true,
		},
	}
}

// AddPlayer adds a player to the game if not started, or marks them as
// reconnected. Assumes lock is held by caller.
func (g *PowerGame) AddPlayer(p *models.Player) {
	for i, pl := range g.Players {
		if pl.ID == p.ID {
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			g.Players[i].User = p.User
			g.lastSeen[p.ID] = time.Now()
			log.Printf("Game %s: Player %s reconnected.", g.ID, p.ID)
			g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": true})
			return
		}
	}
	if g.Started {
		log.Printf("Game %s: Player %s cannot join, game already started.", g.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Game already in progress.")
		}
		return
	}
	p.Seat = uint8(len(g.Players))
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	g.logAction(p.ID, "player_add", map[string]interface{}{"reconnect": false, "seat": p.Seat})
}

// AddAIPlayers fills the table with AI opponents up to total seats.
// Assumes lock is held by caller.
func (g *PowerGame) AddAIPlayers(total int) {
	for len(g.Players) < total {
		seat := uint8(len(g.Players))
		id, _ := uuid.NewRandom()
		g.Players = append(g.Players, &models.Player{
			ID:        id,
			IsAI:      true,
			Connected: true,
			Seat:      seat,
			User:      &models.User{ID: id, Username: aiName(seat), IsEphemeral: true},
		})
	}
}

func aiName(seat uint8) string {
	names := [...]string{"Senator Bot", "Delegate Bot", "Whip Bot", "Speaker Bot",
		"Clerk Bot", "Page Bot", "Aide Bot", "Envoy Bot"}
	return names[int(seat)%len(names)]
}

// Begin initializes the engine, deals, and enters the lobby-selection
// setup phase. AI players choose their lobby card immediately; humans
// are prompted and answer with action_choose_lobby. Assumes lock is
// held by caller.
func (g *PowerGame) Begin() {
	if g.Started || g.GameOver || g.Engine != nil {
		log.Printf("Game %s: Begin called in invalid state (Started:%v, Over:%v).", g.ID, g.Started, g.GameOver)
		return
	}
	if len(g.Players) < 2 || len(g.Players) > engine.MaxPlayers {
		log.Printf("Game %s: Cannot begin with %d players.", g.ID, len(g.Players))
		return
	}

	if g.HouseRules.TurnTimerSec > 0 {
		g.TurnDuration = time.Duration(g.HouseRules.TurnTimerSec) * time.Second
	} else {
		g.TurnDuration = 0
	}

	rules := g.Rules
	rules.NumPlayers = uint8(len(g.Players))
	seed := g.HouseRules.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	eng, err := engine.NewGame(seed, rules, engine.ModeSinglePlayer, 0, g.HouseRules.Difficulty)
	if err != nil {
		log.Printf("Game %s: engine init failed: %v", g.ID, err)
		return
	}
	g.Engine = eng
	for i, p := range g.Players {
		g.PlayerToEngine[p.ID] = uint8(i)
		g.EngineToPlayer[i] = p.ID
		g.Engine.Players[i].Name = p.User.Username
		g.Engine.Players[i].IsHuman = !p.IsAI
	}

	if err := g.Engine.Deal(); err != nil {
		log.Printf("Game %s: deal failed: %v", g.ID, err)
		return
	}
	g.persistInitialGameState()
	g.logAction(uuid.Nil, "game_deal", map[string]interface{}{"seed": seed})

	// Lobby selection: AI immediately, humans via prompt.
	for i, p := range g.Players {
		if p.IsAI {
			g.assignLobby(uint8(i), aiLobbyPick(uint8(i)))
		} else {
			g.fireEventToPlayer(p.ID, GameEvent{Type: EventLobbyChoice})
		}
	}
	g.maybeStart()
}

// aiLobbyPick alternates the AI's setup selection by seat so tables get
// a mix of bills and court cases.
func aiLobbyPick(seat uint8) engine.LobbyType {
	if seat%2 == 0 {
		return engine.LobbyBill
	}
	return engine.LobbyCourtCase
}

// assignLobby records a seat's lobby card choice and broadcasts it.
// Assumes lock is held by caller.
func (g *PowerGame) assignLobby(seat uint8, t engine.LobbyType) {
	if err := g.Engine.AssignLobbyCard(seat, t); err != nil {
		log.Printf("Game %s: lobby assignment for seat %d failed: %v", g.ID, seat, err)
		return
	}
	g.fireEvent(GameEvent{
		Type:    EventLobbyAssigned,
		User:    &EventUser{ID: g.EngineToPlayer[seat]},
		Payload: map[string]interface{}{"lobbyType": t.String()},
	})
	g.logAction(g.EngineToPlayer[seat], "lobby_assigned", map[string]interface{}{"lobbyType": t.String()})
}

// maybeStart starts play once every seat has selected a lobby card.
// Assumes lock is held by caller.
func (g *PowerGame) maybeStart() {
	if err := g.Engine.Start(); err != nil {
		return // Still waiting on lobby selections.
	}
	g.Started = true
	log.Printf("Game %s: Started with %d players.", g.ID, len(g.Players))
	g.logAction(uuid.Nil, string(EventGameStart), nil)
	g.fireEvent(GameEvent{Type: EventGameStart})
	g.broadcastSyncStateToAll()
	g.onTurnAdvanced()
}

// currentPlayerID returns the UUID of the current acting player.
// Assumes lock is held by caller.
func (g *PowerGame) currentPlayerID() uuid.UUID {
	return g.EngineToPlayer[g.Engine.CurrentPlayerIndex]
}

// getPlayerByID finds a player struct by ID within the game's Players slice.
// Assumes lock is held by caller.
func (g *PowerGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// fireEvent broadcasts an event to all connected players via the BroadcastFn callback.
// Assumes lock is held by caller.
func (g *PowerGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	} else {
		log.Printf("Warning: Game %s: BroadcastFn is nil, cannot broadcast event type %s.", g.ID, ev.Type)
	}
}

// fireEventToPlayer sends an event to a specific connected player.
// AI players silently absorb their events. Assumes lock is held by caller.
func (g *PowerGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	p := g.getPlayerByID(playerID)
	if p == nil || p.IsAI {
		return
	}
	if g.BroadcastToPlayerFn == nil {
		log.Printf("Warning: Game %s: BroadcastToPlayerFn is nil, cannot send %s to %s.", g.ID, ev.Type, playerID)
		return
	}
	if p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// failAction sends a private failure message to a player.
// Assumes lock is held by caller.
func (g *PowerGame) failAction(playerID uuid.UUID, message string) {
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateFail,
		Payload: map[string]interface{}{"message": message},
	})
}

// sendSyncState sends the current obfuscated game state to a single player.
// Assumes lock is held by caller.
func (g *PowerGame) sendSyncState(playerID uuid.UUID) {
	state := g.ObfuscatedStateFor(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends the obfuscated game state to all
// connected human players. Assumes lock is held by caller.
func (g *PowerGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected && !p.IsAI {
			g.sendSyncState(p.ID)
		}
	}
}

// countConnectedHumans returns the number of connected human players.
// Assumes lock is held by caller.
func (g *PowerGame) countConnectedHumans() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected && !p.IsAI {
			count++
		}
	}
	return count
}

// HandleDisconnect marks a player as disconnected and handles game
// state consequences. Assumes lock is held by caller.
func (g *PowerGame) HandleDisconnect(playerID uuid.UUID) {
	p := g.getPlayerByID(playerID)
	if p == nil || !p.Connected {
		return
	}
	p.Connected = false
	p.Conn = nil
	log.Printf("Game %s: Player %s disconnected.", g.ID, playerID)
	g.logAction(playerID, "player_disconnect", nil)

	if !g.Started || g.GameOver {
		return
	}
	if g.HouseRules.ForfeitOnDisconnect && g.countConnectedHumans() == 0 {
		log.Printf("Game %s: No humans remain connected. Ending game.", g.ID)
		g.endGame(-1, "forfeit")
		return
	}
	g.broadcastSyncStateToAll()
	// An open lobby offer means they already played this turn; decline it
	// rather than granting an autopilot second play.
	if seat, ok := g.PlayerToEngine[playerID]; ok && g.pendingLobby != nil && g.pendingLobby.Player == seat {
		g.pendingLobby = nil
		g.advanceAfterPlay()
		return
	}
	// A disconnected current player plays on autopilot.
	if g.currentPlayerID() == playerID && g.Engine.Phase == engine.PhasePlaying {
		g.runAutoTurn(g.Engine.CurrentPlayerIndex)
	}
}

// HandleReconnect marks a player as connected and sends them the
// current game state. Assumes lock is held by caller.
func (g *PowerGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	p := g.getPlayerByID(playerID)
	if p == nil {
		log.Printf("Game %s: Reconnecting player %s not found.", g.ID, playerID)
		if conn != nil {
			conn.Close(websocket.StatusPolicyViolation, "You are not part of this game.")
		}
		return
	}
	p.Connected = true
	p.Conn = conn
	g.lastSeen[playerID] = time.Now()
	g.logAction(playerID, "player_reconnect", nil)
	g.sendSyncState(playerID)
	if g.Started && !g.GameOver && g.currentPlayerID() == playerID {
		g.scheduleTurnTimer()
	}
}

// persistInitialGameState saves the post-deal snapshot for replay.
// Assumes lock is held by caller.
func (g *PowerGame) persistInitialGameState() {
	snapshot, err := g.Engine.Save()
	if err != nil {
		log.Printf("Game %s: snapshot initial state: %v", g.ID, err)
		return
	}
	if database.DB != nil {
		var raw map[string]interface{} = map[string]interface{}{}
		raw["engine"] = string(snapshot)
		go database.UpsertInitialGameState(g.ID, raw)
	}
}

// persistFinalGameState saves the final snapshot and winner.
// Assumes lock is held by caller.
func (g *PowerGame) persistFinalGameState(winnerID uuid.UUID, standings map[uuid.UUID]int) {
	snapshot, err := g.Engine.Save()
	if err != nil {
		log.Printf("Game %s: snapshot final state: %v", g.ID, err)
		return
	}
	if database.DB != nil {
		raw := map[string]interface{}{
			"engine":    string(snapshot),
			"standings": standings,
		}
		go database.StoreFinalGameStateInDB(context.Background(), g.ID, winnerID, raw)
	}
}

// endGame finalizes the game, broadcasts results and triggers the
// OnGameEnd callback. winnerSeat is -1 when there is no winner.
// Assumes lock is held by caller.
func (g *PowerGame) endGame(winnerSeat int8, reason string) {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.Started = false
	g.stopTimers()

	winnerID := uuid.Nil
	if winnerSeat >= 0 {
		winnerID = g.EngineToPlayer[winnerSeat]
	}

	// Standings: cards left in hand, winner at zero.
	standings := make(map[uuid.UUID]int, len(g.Players))
	for i, p := range g.Players {
		standings[p.ID] = len(g.Engine.Players[i].Hand)
	}

	payload := map[string]interface{}{
		"reason": reason,
		"winner": winnerID.String(),
		"cards":  map[string]int{},
	}
	for id, n := range standings {
		payload["cards"].(map[string]int)[id.String()] = n
	}
	g.logAction(uuid.Nil, string(EventGameEnd), payload)
	g.persistFinalGameState(winnerID, standings)
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: payload})

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.LobbyID, winnerID, standings)
	}
	log.Printf("Game %s: Ended (%s). Winner: %s.", g.ID, reason, winnerID)
}

// stopTimers cancels any pending turn or AI timers.
// Assumes lock is held by caller.
func (g *PowerGame) stopTimers() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.aiTimer != nil {
		g.aiTimer.Stop()
		g.aiTimer = nil
	}
}

// logAction sends game action details to the historian via the Redis
// queue. Increments the internal action index for ordering.
// Assumes lock is held by caller.
func (g *PowerGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			log.Printf("Error: Game %s: failed publishing action %d (%s): %v", g.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}
