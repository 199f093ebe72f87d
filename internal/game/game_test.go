// internal/game/game_test.go
package game

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votecraft/powerplays/engine"
	"github.com/votecraft/powerplays/internal/models"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{playerEvents: make(map[uuid.UUID][]GameEvent)}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// setupTestGame builds a started game with the given mix of human and
// AI seats. Humans come first and all pick a bill lobby card; timers
// and AI delays are disabled so everything runs synchronously.
func setupTestGame(t *testing.T, humans, ais int, seed uint64) (*PowerGame, []*models.Player, *mockBroadcaster) {
	t.Helper()

	g := NewPowerGame()
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	g.HouseRules = HouseRules{
		TurnTimerSec:        0,
		AIThinkDelayMs:      0,
		MaxTurns:            500,
		Difficulty:          engine.DifficultyMedium,
		ForfeitOnDisconnect: true,
		Seed:                seed,
	}

	players := make([]*models.Player, humans)
	for i := 0; i < humans; i++ {
		p := &models.Player{
			ID:        uuid.New(),
			Connected: true,
			User:      &models.User{ID: uuid.New(), Username: "Player" + string(rune('A'+i))},
		}
		players[i] = p
		g.AddPlayer(p)
	}
	g.AddAIPlayers(humans + ais)

	g.Begin()
	require.NotNil(t, g.Engine, "engine should be initialized after Begin")

	for _, p := range players {
		g.HandlePlayerAction(p.ID, models.GameAction{
			ActionType: "action_choose_lobby",
			Payload:    map[string]interface{}{"lobbyType": "bill"},
		})
	}
	return g, players, mb
}

// giveHand replaces a seat's hand with the given cards.
func giveHand(g *PowerGame, seat uint8, cards ...engine.Card) {
	g.Engine.Players[seat].Hand = append([]engine.Card{}, cards...)
	g.Engine.Players[seat].HasCalledPower = false
}

// setTop pushes a card onto the play pile and makes its color active.
func setTop(g *PowerGame, c engine.Card) {
	g.Engine.PlayPile = append(g.Engine.PlayPile, c)
	g.Engine.ActiveColor = c.Color
}

func TestSetupAndStart(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 10)

	require.True(t, g.Started, "game should start once every seat picked a lobby card")
	assert.NotNil(t, mb.findEventByType(EventGameStart))
	assert.NotNil(t, mb.findEventByType(EventGamePlayerTurn))
	for _, p := range players {
		assert.NotNil(t, mb.findPlayerEventByType(p.ID, EventLobbyChoice),
			"each human should be prompted for a lobby card")
		assert.NotNil(t, mb.findPlayerEventByType(p.ID, EventPrivateSyncState))
	}
	assert.Equal(t, uint8(0), g.Engine.CurrentPlayerIndex)
}

func TestStartWaitsForLobbyChoices(t *testing.T) {
	g := NewPowerGame()
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	g.HouseRules.Seed = 11
	g.HouseRules.TurnTimerSec = 0
	g.HouseRules.AIThinkDelayMs = 0

	a := &models.Player{ID: uuid.New(), Connected: true, User: &models.User{Username: "A"}}
	b := &models.Player{ID: uuid.New(), Connected: true, User: &models.User{Username: "B"}}
	g.AddPlayer(a)
	g.AddPlayer(b)
	g.Begin()

	require.False(t, g.Started)
	g.HandlePlayerAction(a.ID, models.GameAction{
		ActionType: "action_choose_lobby",
		Payload:    map[string]interface{}{"lobbyType": "bill"},
	})
	assert.False(t, g.Started, "one outstanding choice should hold the start")

	// Play actions are refused during setup.
	g.HandlePlayerAction(a.ID, models.GameAction{ActionType: "action_draw"})
	assert.NotNil(t, mb.findPlayerEventByType(a.ID, EventPrivateFail))

	g.HandlePlayerAction(b.ID, models.GameAction{
		ActionType: "action_choose_lobby",
		Payload:    map[string]interface{}{"lobbyType": "court_case"},
	})
	assert.True(t, g.Started)
}

func TestPlayCardAdvancesTurn(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 20)
	mb.clear()

	// Yellow triggers no lobby card, so the turn resolves fully.
	setTop(g, engine.Card{ID: 200, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 5})
	giveHand(g, 0,
		engine.Card{ID: 201, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 7},
		engine.Card{ID: 202, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})

	ev := mb.findEventByType(EventPlayerPlayCard)
	require.NotNil(t, ev)
	assert.Equal(t, players[0].ID, ev.User.ID)
	assert.Equal(t, "yellow", ev.Card.Color)
	assert.Equal(t, 7, ev.Card.Value)
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex, "turn should pass to seat 1")
	assert.Len(t, g.Engine.Players[0].Hand, 1)
}

func TestWrongTurnRejectedWithoutMutation(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 21)
	mb.clear()

	handBefore := len(g.Engine.Players[1].Hand)
	g.HandlePlayerAction(players[1].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})

	assert.NotNil(t, mb.findPlayerEventByType(players[1].ID, EventPrivateFail))
	assert.Nil(t, mb.findEventByType(EventPlayerPlayCard))
	assert.Equal(t, handBefore, len(g.Engine.Players[1].Hand))
	assert.Equal(t, uint8(0), g.Engine.CurrentPlayerIndex)
}

func TestDrawEndsTurn(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 22)
	mb.clear()

	handBefore := len(g.Engine.Players[0].Hand)
	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_draw"})

	ev := mb.findEventByType(EventPlayerDraw)
	require.NotNil(t, ev)
	assert.Equal(t, 1, ev.Payload["count"])
	assert.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventPrivateDraw),
		"drawer should privately learn the card")
	assert.Equal(t, handBefore+1, len(g.Engine.Players[0].Hand))
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex)
}

func TestVoteFlowViaActions(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 23)
	mb.clear()

	giveHand(g, 0,
		engine.Card{ID: 210, Color: engine.ColorNone, Type: engine.TypeVote},
		engine.Card{ID: 211, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 4})
	giveHand(g, 1,
		engine.Card{ID: 212, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 7},
		engine.Card{ID: 213, Color: engine.ColorGreen, Type: engine.TypeNumber, Value: 3})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0), "voteColor": "red"},
	})
	require.NotNil(t, mb.findEventByType(EventVoteStarted))
	require.Equal(t, engine.PhaseVoting, g.Engine.Phase)

	// Other turn actions are refused mid-vote.
	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_draw"})
	assert.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventPrivateFail))

	// Seat 0 has no red card left and declines; seat 1 submits the red 7.
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_vote", Payload: map[string]interface{}{"idx": float64(-1)},
	})
	g.HandlePlayerAction(players[1].ID, models.GameAction{
		ActionType: "action_vote", Payload: map[string]interface{}{"idx": float64(0)},
	})

	resolved := mb.findEventByType(EventVoteResolved)
	require.NotNil(t, resolved)
	assert.Equal(t, players[1].ID.String(), resolved.Payload["winner"])
	assert.Equal(t, "bill", resolved.Payload["rewardedLobby"],
		"winner held a bill, so the reward is another bill")
	assert.Len(t, g.Engine.Players[1].LobbyCards, 2)
	assert.Equal(t, engine.PhasePlaying, g.Engine.Phase)
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex, "turn should move on after the vote")
}

func TestPowerCallAndChallenge(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 24)
	mb.clear()

	giveHand(g, 0, engine.Card{ID: 220, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 1})
	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_call_power"})
	require.NotNil(t, mb.findEventByType(EventPlayerPowerCall))
	require.True(t, g.Engine.Players[0].HasCalledPower)

	// Challenging a declared call fails.
	g.HandlePlayerAction(players[1].ID, models.GameAction{
		ActionType: "action_challenge", Payload: map[string]interface{}{"target": float64(0)},
	})
	ev := mb.findEventByType(EventPlayerChallenge)
	require.NotNil(t, ev)
	assert.Equal(t, false, ev.Payload["caught"])
	assert.Len(t, g.Engine.Players[0].Hand, 1)

	// Seat 1 sits on one card without calling: a challenge lands.
	mb.clear()
	giveHand(g, 1, engine.Card{ID: 221, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 9})
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_challenge", Payload: map[string]interface{}{"target": float64(1)},
	})
	ev = mb.findEventByType(EventPlayerChallenge)
	require.NotNil(t, ev)
	assert.Equal(t, true, ev.Payload["caught"])
	penalty := int(g.Engine.Rules.ChallengePenalty)
	assert.Len(t, g.Engine.Players[1].Hand, 1+penalty)
	assert.NotNil(t, mb.findPlayerEventByType(players[1].ID, EventPrivateDraw))
}

func TestWinEndsGame(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 25)
	mb.clear()

	var endedWinner uuid.UUID
	ended := false
	g.OnGameEnd = func(lobbyID, winner uuid.UUID, standings map[uuid.UUID]int) {
		ended = true
		endedWinner = winner
	}

	setTop(g, engine.Card{ID: 230, Color: engine.ColorGreen, Type: engine.TypeNumber, Value: 5})
	giveHand(g, 0, engine.Card{ID: 231, Color: engine.ColorGreen, Type: engine.TypeNumber, Value: 8})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})

	require.True(t, g.GameOver)
	require.True(t, ended, "OnGameEnd callback should fire")
	assert.Equal(t, players[0].ID, endedWinner)
	ev := mb.findEventByType(EventGameEnd)
	require.NotNil(t, ev)
	assert.Equal(t, "win", ev.Payload["reason"])
	assert.Equal(t, players[0].ID.String(), ev.Payload["winner"])

	// Nothing further is accepted.
	mb.clear()
	g.HandlePlayerAction(players[1].ID, models.GameAction{ActionType: "action_draw"})
	assert.Nil(t, mb.findEventByType(EventPlayerDraw))
}

func TestLobbyOfferFlow(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 26)
	mb.clear()

	// Blue triggers the bill every human picked during setup.
	setTop(g, engine.Card{ID: 240, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 3})
	giveHand(g, 0,
		engine.Card{ID: 241, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 6},
		engine.Card{ID: 242, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})
	require.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventLobbyOffer))
	assert.Equal(t, uint8(0), g.Engine.CurrentPlayerIndex,
		"turn holds while the offer is open")

	// Other actions are refused while the offer is open.
	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_draw"})
	assert.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventPrivateFail))

	handBefore := len(g.Engine.Players[0].Hand)
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_activate_lobby",
		Payload:    map[string]interface{}{"accept": true},
	})

	require.NotNil(t, mb.findEventByType(EventLobbyActivated))
	assert.Equal(t, handBefore+1, len(g.Engine.Players[0].Hand), "bill grants one card")
	assert.True(t, g.Engine.Players[0].LobbyCards[0].Used)
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex, "turn resumes after the answer")
}

func TestLobbyOfferDeclined(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 27)
	mb.clear()

	setTop(g, engine.Card{ID: 250, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 3})
	giveHand(g, 0,
		engine.Card{ID: 251, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 6},
		engine.Card{ID: 252, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})
	require.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventLobbyOffer))

	handBefore := len(g.Engine.Players[0].Hand)
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_activate_lobby",
		Payload:    map[string]interface{}{"accept": false},
	})

	assert.Equal(t, handBefore, len(g.Engine.Players[0].Hand))
	assert.False(t, g.Engine.Players[0].LobbyCards[0].Used)
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex)
}

func TestDisconnectDeclinesPendingLobbyOffer(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 28)
	mb.clear()

	setTop(g, engine.Card{ID: 170, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 3})
	giveHand(g, 0,
		engine.Card{ID: 171, Color: engine.ColorBlue, Type: engine.TypeNumber, Value: 6},
		engine.Card{ID: 172, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0)},
	})
	require.NotNil(t, mb.findPlayerEventByType(players[0].ID, EventLobbyOffer))
	handBefore := len(g.Engine.Players[0].Hand)

	g.HandleDisconnect(players[0].ID)

	require.False(t, g.GameOver, "another human remains, game continues")
	assert.Equal(t, handBefore, len(g.Engine.Players[0].Hand),
		"no autopilot second play while their offer was open")
	assert.False(t, g.Engine.Players[0].LobbyCards[0].Used, "the open offer is declined, not taken")
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex, "turn moves on")
}

func TestPowerCallRidesPlayPayload(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 29)
	mb.clear()

	setTop(g, engine.Card{ID: 160, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 5})
	giveHand(g, 0,
		engine.Card{ID: 161, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 7},
		engine.Card{ID: 162, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})

	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0), "callPower": true},
	})

	require.True(t, g.Engine.Players[0].HasCalledPower)
	ev := mb.findEventByType(EventPlayerPowerCall)
	require.NotNil(t, ev)
	assert.Equal(t, players[0].ID, ev.User.ID)
	assert.Equal(t, uint8(1), g.Engine.CurrentPlayerIndex)
}

func TestRiddenPowerCallBlocksChallengeWindow(t *testing.T) {
	g, players, mb := setupTestGame(t, 1, 1, 35)
	mb.clear()

	setTop(g, engine.Card{ID: 150, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 5})
	giveHand(g, 0,
		engine.Card{ID: 151, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 7},
		engine.Card{ID: 152, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2})
	giveHand(g, 1,
		engine.Card{ID: 153, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 1},
		engine.Card{ID: 154, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 8})

	// The declaration lands with the play, before the AI's challenge
	// window on the following turn.
	g.HandlePlayerAction(players[0].ID, models.GameAction{
		ActionType: "action_play_card",
		Payload:    map[string]interface{}{"idx": float64(0), "callPower": true},
	})

	assert.Nil(t, mb.findEventByType(EventPlayerChallenge), "declared call cannot be challenged")
	assert.True(t, g.Engine.Players[0].HasCalledPower)
	assert.Len(t, g.Engine.Players[0].Hand, 1, "no challenge penalty landed")
}

func TestAIOpponentTakesItsTurn(t *testing.T) {
	g, players, mb := setupTestGame(t, 1, 1, 30)
	mb.clear()

	// Give the AI a forced line: one playable yellow pair, so it plays
	// the higher number and then declares Power! on its last card.
	setTop(g, engine.Card{ID: 180, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 5})
	giveHand(g, 1,
		engine.Card{ID: 181, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 2},
		engine.Card{ID: 182, Color: engine.ColorYellow, Type: engine.TypeNumber, Value: 9})
	giveHand(g, 0,
		engine.Card{ID: 183, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 1},
		engine.Card{ID: 184, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 2},
		engine.Card{ID: 185, Color: engine.ColorRed, Type: engine.TypeNumber, Value: 3})

	g.HandlePlayerAction(players[0].ID, models.GameAction{ActionType: "action_draw"})

	ev := mb.findEventByType(EventPlayerPlayCard)
	require.NotNil(t, ev, "the AI should have moved synchronously")
	assert.Equal(t, 9, ev.Card.Value)
	assert.Len(t, g.Engine.Players[1].Hand, 1)
	assert.NotNil(t, mb.findEventByType(EventPlayerPowerCall),
		"medium AI always declares on its last card")
	assert.Equal(t, uint8(0), g.Engine.CurrentPlayerIndex, "turn should be back with the human")
}

func TestAllAIGameRunsToCompletion(t *testing.T) {
	g := NewPowerGame()
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn
	g.HouseRules = HouseRules{
		TurnTimerSec:   0,
		AIThinkDelayMs: 0,
		MaxTurns:       500,
		Difficulty:     engine.DifficultyHard,
		Seed:           31,
	}
	g.AddAIPlayers(3)
	g.Begin()

	require.True(t, g.GameOver, "an all-AI game should run to completion synchronously")
	ev := mb.findEventByType(EventGameEnd)
	require.NotNil(t, ev)
}

func TestDisconnectForfeitsWhenNoHumansRemain(t *testing.T) {
	g, players, mb := setupTestGame(t, 1, 1, 32)
	mb.clear()

	g.HandleDisconnect(players[0].ID)

	require.True(t, g.GameOver)
	ev := mb.findEventByType(EventGameEnd)
	require.NotNil(t, ev)
	assert.Equal(t, "forfeit", ev.Payload["reason"])
	assert.Equal(t, uuid.Nil.String(), ev.Payload["winner"])
}

func TestReconnectGetsSyncState(t *testing.T) {
	g, players, mb := setupTestGame(t, 2, 0, 33)
	mb.clear()

	g.HandleDisconnect(players[1].ID)
	require.False(t, g.GameOver, "another human remains, game continues")

	g.HandleReconnect(players[1].ID, nil)
	p := g.getPlayerByID(players[1].ID)
	require.True(t, p.Connected)
	assert.NotNil(t, mb.findPlayerEventByType(players[1].ID, EventPrivateSyncState))
}

func TestObfuscatedStateHidesOpponentHands(t *testing.T) {
	g, players, _ := setupTestGame(t, 2, 0, 34)

	state := g.ObfuscatedStateFor(players[0].ID)
	require.Len(t, state.Players, 2)
	self, opp := state.Players[0], state.Players[1]
	assert.NotEmpty(t, self.RevealedHand, "own hand is revealed")
	assert.Empty(t, opp.RevealedHand, "opponent hand stays hidden")
	assert.Equal(t, len(g.Engine.Players[1].Hand), opp.HandSize)
	assert.NotNil(t, state.TopCard)
	assert.Equal(t, players[0].ID, state.CurrentPlayerID)
	for _, lc := range self.LobbyCards {
		assert.Equal(t, "bill", lc.Type)
	}
}
