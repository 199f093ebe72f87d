// internal/game/actions.go — Player action routing and effect handling.
package game

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/votecraft/powerplays/engine"
	"github.com/votecraft/powerplays/internal/models"
)

// cardEvent builds an EventCard revealing full details.
func cardEvent(c engine.Card, idx *int) *EventCard {
	return &EventCard{
		Known: true,
		Color: c.Color.String(),
		Type:  c.Type.String(),
		Value: int(c.Value),
		Idx:   idx,
	}
}

// colorFromString parses the client's color choice for a vote card.
func colorFromString(s string) engine.Color {
	switch s {
	case "blue":
		return engine.ColorBlue
	case "yellow":
		return engine.ColorYellow
	case "red":
		return engine.ColorRed
	case "green":
		return engine.ColorGreen
	}
	return engine.ColorNone
}

// lobbyTypeFromString parses the client's setup lobby card choice.
func lobbyTypeFromString(s string) (engine.LobbyType, bool) {
	switch s {
	case "bill":
		return engine.LobbyBill, true
	case "court_case":
		return engine.LobbyCourtCase, true
	}
	return engine.LobbyBill, false
}

// payloadInt extracts an integer field from a JSON-decoded payload.
func payloadInt(payload map[string]interface{}, key string, fallback int) int {
	if payload == nil {
		return fallback
	}
	if f, ok := payload[key].(float64); ok {
		return int(f)
	}
	return fallback
}

// HandlePlayerAction routes incoming player actions. Validates state and
// payload before executing the corresponding handler.
// Assumes lock is held by the caller.
func (g *PowerGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	if g.GameOver {
		return
	}
	if g.Engine == nil {
		log.Printf("Game %s: Action %s from %s ignored (game not dealt).", g.ID, action.ActionType, playerID)
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		log.Printf("Game %s: Action %s from non-existent/disconnected player %s ignored.", g.ID, action.ActionType, playerID)
		return
	}
	seat, ok := g.PlayerToEngine[playerID]
	if !ok {
		return
	}
	g.lastSeen[playerID] = time.Now()

	// Setup phase accepts only the lobby card selection.
	if !g.Started {
		if action.ActionType != "action_choose_lobby" {
			g.failAction(playerID, "The game has not started yet.")
			return
		}
		g.handleChooseLobby(playerID, seat, action.Payload)
		return
	}

	switch action.ActionType {
	case "action_play_card":
		g.handlePlayCard(playerID, seat, action.Payload)
	case "action_draw":
		g.handleDraw(playerID, seat)
	case "action_call_power":
		g.handleCallPower(playerID, seat)
	case "action_challenge":
		g.handleChallenge(playerID, seat, action.Payload)
	case "action_activate_lobby":
		g.handleActivateLobby(playerID, seat, action.Payload)
	case "action_vote":
		g.handleVote(playerID, seat, action.Payload)
	default:
		log.Printf("Game %s: Unknown action type %q from player %s.", g.ID, action.ActionType, playerID)
		g.failAction(playerID, "Unknown action type.")
	}
}

// handleChooseLobby records a human's setup lobby card selection.
// Assumes lock is held by caller.
func (g *PowerGame) handleChooseLobby(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	name, _ := payload["lobbyType"].(string)
	t, ok := lobbyTypeFromString(name)
	if !ok {
		g.failAction(playerID, "Lobby choice must be bill or court_case.")
		return
	}
	if len(g.Engine.Players[seat].LobbyCards) > 0 {
		g.failAction(playerID, "You already chose a lobby card.")
		return
	}
	g.assignLobby(seat, t)
	g.maybeStart()
}

// handlePlayCard plays the card at payload idx, with any swap target or
// vote color riding along. Assumes lock is held by caller.
func (g *PowerGame) handlePlayCard(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	if g.pendingLobby != nil && g.pendingLobby.Player == seat {
		g.failAction(playerID, "Answer the lobby offer first.")
		return
	}
	cardIdx := payloadInt(payload, "idx", -1)
	target := engine.TargetInfo{SwapTarget: int8(payloadInt(payload, "swapTarget", -1))}
	if colorName, ok := payload["voteColor"].(string); ok {
		target.VoteColor = colorFromString(colorName)
	}

	eff, err := g.Engine.PlayCard(seat, cardIdx, &target)
	if err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.stallPasses = 0
	g.broadcastPlay(playerID, seat, eff)

	// A Power! declaration may ride the play payload, landing before the
	// challenge window of the next turn opens.
	if wantsPower, _ := payload["callPower"].(bool); wantsPower &&
		!eff.GameOver && g.Engine.Phase == engine.PhasePlaying {
		if cerr := g.Engine.CallPower(seat); cerr == nil {
			g.fireEvent(GameEvent{Type: EventPlayerPowerCall, User: &EventUser{ID: playerID}})
			g.logAction(playerID, string(EventPlayerPowerCall), nil)
		}
	}

	g.resolveEffect(seat, eff, false)
}

// broadcastPlay emits the public play event plus the private draw-two
// delivery, and logs the action. Assumes lock is held by caller.
func (g *PowerGame) broadcastPlay(playerID uuid.UUID, seat uint8, eff *engine.Effect) {
	played := g.Engine.TopCard()
	payload := map[string]interface{}{
		"activeColor": g.Engine.ActiveColor.String(),
	}
	if eff.Cancelled {
		payload["cancelled"] = true
	}
	if eff.Blocked != engine.TypeNumber {
		payload["blocked"] = eff.Blocked.String()
	}
	if eff.Target >= 0 {
		payload["target"] = g.EngineToPlayer[eff.Target].String()
	}
	if len(eff.CardsDrawn) > 0 {
		payload["drawn"] = len(eff.CardsDrawn)
	}
	if eff.VoteStarted {
		payload["voteStarted"] = true
	}
	g.fireEvent(GameEvent{
		Type:    EventPlayerPlayCard,
		User:    &EventUser{ID: playerID},
		Card:    cardEvent(played, nil),
		Payload: payload,
	})
	g.logAction(playerID, string(EventPlayerPlayCard), map[string]interface{}{
		"card": played.String(), "effect": payload,
	})

	// Draw-two victim learns exactly what landed in their hand.
	if len(eff.CardsDrawn) > 0 && eff.Target >= 0 {
		victimID := g.EngineToPlayer[eff.Target]
		cards := make([]interface{}, len(eff.CardsDrawn))
		for i, c := range eff.CardsDrawn {
			cards[i] = cardEvent(c, nil)
		}
		g.fireEventToPlayer(victimID, GameEvent{
			Type:    EventPrivateDraw,
			Payload: map[string]interface{}{"cards": cards, "source": "draw2"},
		})
	}
}

// resolveEffect drives the rest of the turn after a successful play:
// game end, vote collection, lobby windows, then turn advancement.
// isAI selects inline policy decisions over client round-trips.
// Assumes lock is held by caller.
func (g *PowerGame) resolveEffect(seat uint8, eff *engine.Effect, isAI bool) {
	if eff.GameOver {
		g.endGame(eff.Winner, "win")
		return
	}

	if eff.VoteStarted {
		g.announceVote()
		g.collectAIVotes()
		if g.Engine.AllVotesIn() {
			g.finishVote()
			return
		}
		g.scheduleTurnTimer() // Humans get the timer window to vote.
		return
	}

	if eff.LobbyOffer != nil {
		if isAI {
			if g.Engine.AIShouldActivateLobby(seat, eff.LobbyOffer.Type) {
				g.activateLobbyFor(seat, eff.LobbyOffer.Type)
			}
		} else {
			g.pendingLobby = eff.LobbyOffer
			g.fireEventToPlayer(g.EngineToPlayer[seat], GameEvent{
				Type:    EventLobbyOffer,
				Payload: map[string]interface{}{"lobbyType": eff.LobbyOffer.Type.String()},
			})
			g.scheduleTurnTimer()
			return
		}
	}

	g.advanceAfterPlay()
}

// activateLobbyFor performs a lobby activation for a seat, choosing the
// court case target with the AI policy when none is given.
// Assumes lock is held by caller.
func (g *PowerGame) activateLobbyFor(seat uint8, t engine.LobbyType) {
	targetIdx := int8(-1)
	if t == engine.LobbyCourtCase {
		targetIdx = int8(g.Engine.AIChooseCourtCaseTarget(seat))
	}
	g.applyLobbyActivation(seat, targetIdx)
}

// applyLobbyActivation runs engine.ActivateLobby and broadcasts the
// outcome. Returns false when the engine rejected it.
// Assumes lock is held by caller.
func (g *PowerGame) applyLobbyActivation(seat uint8, targetIdx int8) bool {
	res, err := g.Engine.ActivateLobby(seat, targetIdx)
	if err != nil {
		g.failAction(g.EngineToPlayer[seat], err.Error())
		return false
	}
	playerID := g.EngineToPlayer[seat]
	payload := map[string]interface{}{"lobbyType": res.Type.String()}
	switch res.Type {
	case engine.LobbyBill:
		payload["drawn"] = len(res.Drawn)
		if len(res.Drawn) > 0 {
			g.fireEventToPlayer(playerID, GameEvent{
				Type:    EventPrivateDraw,
				Payload: map[string]interface{}{"cards": []interface{}{cardEvent(res.Drawn[0], nil)}, "source": "bill"},
			})
		}
	case engine.LobbyCourtCase:
		if res.Target >= 0 {
			payload["target"] = g.EngineToPlayer[res.Target].String()
		}
		if res.Discarded != nil {
			payload["discarded"] = res.Discarded.String()
		}
	}
	g.fireEvent(GameEvent{Type: EventLobbyActivated, User: &EventUser{ID: playerID}, Payload: payload})
	g.logAction(playerID, string(EventLobbyActivated), payload)
	return true
}

// handleActivateLobby answers a pending lobby offer, or performs an
// unprompted activation when the active color allows one.
// Assumes lock is held by caller.
func (g *PowerGame) handleActivateLobby(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	accept := true
	if v, ok := payload["accept"].(bool); ok {
		accept = v
	}
	targetIdx := int8(payloadInt(payload, "target", -1))
	// 2-player court cases have only one possible target.
	if targetIdx < 0 && len(g.Players) == 2 {
		targetIdx = int8(1 - seat)
	}

	if g.pendingLobby != nil && g.pendingLobby.Player == seat {
		offer := g.pendingLobby
		g.pendingLobby = nil
		if accept {
			if offer.Type == engine.LobbyCourtCase && targetIdx < 0 {
				g.pendingLobby = offer
				g.failAction(playerID, "Court case requires a target player.")
				return
			}
			g.applyLobbyActivation(seat, targetIdx)
		}
		g.advanceAfterPlay()
		return
	}

	// Unprompted: legal on your own turn when the active color triggers
	// an unused lobby card. The turn continues afterwards.
	if !accept {
		return
	}
	g.applyLobbyActivation(seat, targetIdx)
}

// handleDraw draws one card for the player and ends their turn.
// Assumes lock is held by caller.
func (g *PowerGame) handleDraw(playerID uuid.UUID, seat uint8) {
	if g.pendingLobby != nil && g.pendingLobby.Player == seat {
		g.failAction(playerID, "Answer the lobby offer first.")
		return
	}
	drawn, err := g.Engine.DrawCard(seat)
	if err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.broadcastDraw(playerID, drawn)
	g.advanceAfterPlay()
}

// broadcastDraw emits the public and private draw events and maintains
// the stall counter. Assumes lock is held by caller.
func (g *PowerGame) broadcastDraw(playerID uuid.UUID, drawn *engine.Card) {
	count := 0
	if drawn != nil {
		count = 1
		g.stallPasses = 0
		g.fireEventToPlayer(playerID, GameEvent{
			Type:    EventPrivateDraw,
			Payload: map[string]interface{}{"cards": []interface{}{cardEvent(*drawn, nil)}, "source": "draw"},
		})
	} else {
		g.stallPasses++
	}
	g.fireEvent(GameEvent{
		Type:    EventPlayerDraw,
		User:    &EventUser{ID: playerID},
		Payload: map[string]interface{}{"count": count},
	})
	g.logAction(playerID, string(EventPlayerDraw), map[string]interface{}{"count": count})
}

// handleCallPower declares Power! for the player.
// Assumes lock is held by caller.
func (g *PowerGame) handleCallPower(playerID uuid.UUID, seat uint8) {
	if err := g.Engine.CallPower(seat); err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.fireEvent(GameEvent{Type: EventPlayerPowerCall, User: &EventUser{ID: playerID}})
	g.logAction(playerID, string(EventPlayerPowerCall), nil)
}

// handleChallenge resolves a Power! challenge against a target seat.
// Assumes lock is held by caller.
func (g *PowerGame) handleChallenge(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	targetSeat := payloadInt(payload, "target", -1)
	if targetSeat < 0 || targetSeat >= len(g.Players) {
		g.failAction(playerID, "Challenge requires a target player.")
		return
	}
	res, err := g.Engine.ChallengePower(seat, uint8(targetSeat))
	if err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.broadcastChallenge(playerID, uint8(targetSeat), res)
}

// broadcastChallenge emits the challenge outcome events.
// Assumes lock is held by caller.
func (g *PowerGame) broadcastChallenge(challengerID uuid.UUID, targetSeat uint8, res *engine.ChallengeResult) {
	targetID := g.EngineToPlayer[targetSeat]
	payload := map[string]interface{}{
		"target":  targetID.String(),
		"caught":  res.Caught,
		"penalty": len(res.CardsDrawn),
	}
	g.fireEvent(GameEvent{Type: EventPlayerChallenge, User: &EventUser{ID: challengerID}, Payload: payload})
	g.logAction(challengerID, string(EventPlayerChallenge), payload)
	if len(res.CardsDrawn) > 0 {
		cards := make([]interface{}, len(res.CardsDrawn))
		for i, c := range res.CardsDrawn {
			cards[i] = cardEvent(c, nil)
		}
		g.fireEventToPlayer(targetID, GameEvent{
			Type:    EventPrivateDraw,
			Payload: map[string]interface{}{"cards": cards, "source": "challenge_penalty"},
		})
	}
}

// announceVote broadcasts the opening of a vote.
// Assumes lock is held by caller.
func (g *PowerGame) announceVote() {
	v := g.Engine.ActiveVote
	if v == nil {
		return
	}
	payload := map[string]interface{}{
		"color":     v.Color.String(),
		"initiator": g.EngineToPlayer[v.Initiator].String(),
	}
	g.fireEvent(GameEvent{Type: EventVoteStarted, Payload: payload})
	g.logAction(g.EngineToPlayer[v.Initiator], string(EventVoteStarted), payload)
}

// collectAIVotes submits a ballot for every AI seat.
// Assumes lock is held by caller.
func (g *PowerGame) collectAIVotes() {
	v := g.Engine.ActiveVote
	if v == nil {
		return
	}
	color := v.Color
	for i, p := range g.Players {
		if !p.IsAI {
			continue
		}
		seat := uint8(i)
		if v.Ballots[seat].Submitted {
			continue
		}
		cardIdx := g.Engine.AIChooseVoteCard(seat, color)
		if err := g.Engine.SubmitVote(seat, cardIdx); err != nil {
			log.Printf("Game %s: AI seat %d vote rejected: %v", g.ID, seat, err)
			continue
		}
		g.broadcastVoteSubmitted(p.ID, cardIdx < 0)
	}
}

// broadcastVoteSubmitted announces a seat's ballot without revealing it.
// Assumes lock is held by caller.
func (g *PowerGame) broadcastVoteSubmitted(playerID uuid.UUID, declined bool) {
	payload := map[string]interface{}{"declined": declined}
	g.fireEvent(GameEvent{Type: EventVoteSubmitted, User: &EventUser{ID: playerID}, Payload: payload})
	g.logAction(playerID, string(EventVoteSubmitted), payload)
}

// handleVote accepts a human's ballot: payload idx is the hand index, or
// -1 to decline. Assumes lock is held by caller.
func (g *PowerGame) handleVote(playerID uuid.UUID, seat uint8, payload map[string]interface{}) {
	cardIdx := payloadInt(payload, "idx", -1)
	if err := g.Engine.SubmitVote(seat, cardIdx); err != nil {
		g.failAction(playerID, err.Error())
		return
	}
	g.broadcastVoteSubmitted(playerID, cardIdx < 0)
	if g.Engine.AllVotesIn() {
		g.finishVote()
	}
}

// finishVote resolves the vote, reveals the ballots and moves play on.
// Assumes lock is held by caller.
func (g *PowerGame) finishVote() {
	v := g.Engine.ActiveVote
	if v == nil {
		return
	}
	// Capture ballots before EndVote folds them back into the pile.
	revealed := make([]interface{}, 0, len(v.Ballots))
	for seat, b := range v.Ballots {
		entry := map[string]interface{}{
			"player":   g.EngineToPlayer[seat].String(),
			"declined": b.Card == nil,
		}
		if b.Card != nil {
			entry["card"] = cardEvent(*b.Card, nil)
		}
		revealed = append(revealed, entry)
	}

	res, err := g.Engine.EndVote()
	if err != nil {
		log.Printf("Game %s: EndVote failed: %v", g.ID, err)
		return
	}
	payload := map[string]interface{}{
		"ballots": revealed,
		"reason":  string(res.Reason),
	}
	if res.Winner >= 0 {
		payload["winner"] = g.EngineToPlayer[res.Winner].String()
	}
	if res.RewardedLobby != nil {
		payload["rewardedLobby"] = res.RewardedLobby.String()
	}
	g.fireEvent(GameEvent{Type: EventVoteResolved, Payload: payload})
	g.logAction(uuid.Nil, string(EventVoteResolved), payload)

	g.advanceAfterPlay()
}
