// internal/game/ai.go — Turn advancement, timers, and the AI turn driver.
package game

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/votecraft/powerplays/engine"
)

// advanceAfterPlay moves the turn pointer once the current player's
// action has fully resolved. Assumes lock is held by caller.
func (g *PowerGame) advanceAfterPlay() {
	if g.GameOver {
		return
	}
	if g.stallPasses >= 2*len(g.Players) {
		g.endGameByStall()
		return
	}
	if g.HouseRules.MaxTurns > 0 && g.TurnID >= g.HouseRules.MaxTurns {
		g.endGameByStall()
		return
	}
	if err := g.Engine.AdvanceTurn(); err != nil {
		log.Printf("Game %s: AdvanceTurn failed: %v", g.ID, err)
		return
	}
	g.onTurnAdvanced()
}

// onTurnAdvanced broadcasts the new turn, runs the challenge window and
// hands control to the next actor. Assumes lock is held by caller.
func (g *PowerGame) onTurnAdvanced() {
	g.TurnID++
	if g.GameOver || !g.Started {
		return
	}

	g.broadcastSyncStateToAll()
	g.runAIChallenges()

	currentSeat := g.Engine.CurrentPlayerIndex
	currentID := g.EngineToPlayer[currentSeat]
	g.fireEvent(GameEvent{
		Type:    EventGamePlayerTurn,
		User:    &EventUser{ID: currentID},
		Payload: map[string]interface{}{"turn": g.TurnID},
	})
	g.logAction(currentID, string(EventGamePlayerTurn), map[string]interface{}{"turn": g.TurnID})

	current := g.getPlayerByID(currentID)
	if current != nil && (current.IsAI || !current.Connected) {
		g.scheduleAITurn(currentSeat)
	} else {
		g.scheduleTurnTimer()
	}
}

// runAIChallenges lets each AI consider challenging any seat sitting on
// one card without a Power! call. Assumes lock is held by caller.
func (g *PowerGame) runAIChallenges() {
	for i, p := range g.Players {
		if !p.IsAI {
			continue
		}
		challenger := uint8(i)
		for j := range g.Players {
			target := uint8(j)
			if target == challenger {
				continue
			}
			tp := g.Engine.Players[target]
			if len(tp.Hand) != 1 || tp.HasCalledPower {
				continue
			}
			if !g.Engine.AIShouldChallenge(challenger, target) {
				continue
			}
			res, err := g.Engine.ChallengePower(challenger, target)
			if err != nil {
				continue
			}
			g.broadcastChallenge(p.ID, target, res)
			break // One challenge per AI per window.
		}
	}
}

// scheduleTurnTimer restarts the turn timer for the current player.
// Assumes lock is held by caller.
func (g *PowerGame) scheduleTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.TurnDuration <= 0 || g.GameOver || !g.Started {
		return
	}
	expectedTurn := g.TurnID
	capturedID := g.currentPlayerID()
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || !g.Started || g.TurnID != expectedTurn {
			return
		}
		log.Printf("Game %s, turn %d: timer fired for player %s.", g.ID, g.TurnID, capturedID)
		g.handleTimeout(capturedID)
	})
}

// handleTimeout acts for a player who ran out of time.
// Assumes lock is held by caller.
func (g *PowerGame) handleTimeout(playerID uuid.UUID) {
	g.logAction(playerID, "player_timeout", map[string]interface{}{"turn": g.TurnID})

	// An open vote collects declines from everyone still outstanding.
	if g.Engine.Phase == engine.PhaseVoting {
		v := g.Engine.ActiveVote
		if v == nil {
			return
		}
		for seat := range v.Ballots {
			if v.Ballots[seat].Submitted {
				continue
			}
			if err := g.Engine.SubmitVote(uint8(seat), -1); err != nil {
				log.Printf("Game %s: timeout decline for seat %d failed: %v", g.ID, seat, err)
				continue
			}
			g.broadcastVoteSubmitted(g.EngineToPlayer[seat], true)
		}
		if g.Engine.AllVotesIn() {
			g.finishVote()
		}
		return
	}

	// An unanswered lobby offer is declined.
	if g.pendingLobby != nil {
		g.pendingLobby = nil
		g.advanceAfterPlay()
		return
	}

	seat, ok := g.PlayerToEngine[playerID]
	if !ok || seat != g.Engine.CurrentPlayerIndex {
		return
	}
	g.runAutoTurn(seat)
}

// scheduleAITurn queues the AI's move after the think delay, or runs it
// immediately when the delay is zero. Assumes lock is held by caller.
func (g *PowerGame) scheduleAITurn(seat uint8) {
	delay := time.Duration(g.HouseRules.AIThinkDelayMs) * time.Millisecond
	if delay <= 0 {
		g.runAITurn(seat)
		return
	}
	if g.aiTimer != nil {
		g.aiTimer.Stop()
	}
	expectedTurn := g.TurnID
	g.aiTimer = time.AfterFunc(delay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || !g.Started || g.TurnID != expectedTurn {
			return
		}
		g.runAITurn(seat)
	})
}

// runAITurn plays one full AI turn: optional lobby activation, the best
// play or a draw, a Power! call when down to one card, then effect
// resolution. Assumes lock is held by caller.
func (g *PowerGame) runAITurn(seat uint8) {
	if g.GameOver || g.Engine.Phase != engine.PhasePlaying {
		return
	}
	playerID := g.EngineToPlayer[seat]
	p := g.Engine.Players[seat]

	// Activation window from the color already in effect.
	if t, ok := engine.LobbyTrigger(g.Engine.ActiveColor); ok && !p.UsedLobbyThisTurn {
		if p.UnusedLobby(t) >= 0 && g.Engine.AIShouldActivateLobby(seat, t) {
			g.activateLobbyFor(seat, t)
		}
	}

	cardIdx := g.Engine.AIChoosePlay(seat)
	if cardIdx < 0 {
		drawn, err := g.Engine.DrawCard(seat)
		if err != nil {
			log.Printf("Game %s: AI seat %d draw failed: %v", g.ID, seat, err)
			return
		}
		g.broadcastDraw(playerID, drawn)
		g.advanceAfterPlay()
		return
	}

	card := p.Hand[cardIdx]
	target := engine.TargetInfo{SwapTarget: -1}
	switch card.Type {
	case engine.TypeSwap:
		target.SwapTarget = int8(g.Engine.AIChooseSwapTarget(seat))
	case engine.TypeVote:
		target.VoteColor = g.Engine.AIChooseVoteColor(seat)
	}

	eff, err := g.Engine.PlayCard(seat, cardIdx, &target)
	if err != nil {
		// The policy should only pick legal cards; fall back to a draw.
		log.Printf("Game %s: AI seat %d play rejected (%v), drawing instead.", g.ID, seat, err)
		drawn, derr := g.Engine.DrawCard(seat)
		if derr != nil {
			return
		}
		g.broadcastDraw(playerID, drawn)
		g.advanceAfterPlay()
		return
	}
	g.stallPasses = 0
	g.broadcastPlay(playerID, seat, eff)

	if !eff.GameOver && g.Engine.Phase == engine.PhasePlaying &&
		len(p.Hand) == 1 && g.Engine.AIShouldCallPower(seat) {
		if cerr := g.Engine.CallPower(seat); cerr == nil {
			g.fireEvent(GameEvent{Type: EventPlayerPowerCall, User: &EventUser{ID: playerID}})
			g.logAction(playerID, string(EventPlayerPowerCall), nil)
		}
	}

	g.resolveEffect(seat, eff, true)
}

// runAutoTurn plays a turn for an absent human using the AI policy,
// without the Power! call or pre-play lobby extras.
// Assumes lock is held by caller.
func (g *PowerGame) runAutoTurn(seat uint8) {
	if g.GameOver || g.Engine.Phase != engine.PhasePlaying {
		return
	}
	playerID := g.EngineToPlayer[seat]

	cardIdx := g.Engine.AIChoosePlay(seat)
	if cardIdx < 0 {
		drawn, err := g.Engine.DrawCard(seat)
		if err != nil {
			return
		}
		g.broadcastDraw(playerID, drawn)
		g.advanceAfterPlay()
		return
	}

	card := g.Engine.Players[seat].Hand[cardIdx]
	target := engine.TargetInfo{SwapTarget: -1}
	switch card.Type {
	case engine.TypeSwap:
		target.SwapTarget = int8(g.Engine.AIChooseSwapTarget(seat))
	case engine.TypeVote:
		target.VoteColor = g.Engine.AIChooseVoteColor(seat)
	}
	eff, err := g.Engine.PlayCard(seat, cardIdx, &target)
	if err != nil {
		return
	}
	g.stallPasses = 0
	g.broadcastPlay(playerID, seat, eff)
	g.resolveEffect(seat, eff, true)
}

// endGameByStall ends a game nobody can finish: both piles are spent
// and a full round passed without a play. Fewest cards wins; a tie for
// fewest means no winner. Assumes lock is held by caller.
func (g *PowerGame) endGameByStall() {
	winner := int8(-1)
	best := -1
	tied := false
	for i := range g.Players {
		n := len(g.Engine.Players[i].Hand)
		if best < 0 || n < best {
			best = n
			winner = int8(i)
			tied = false
		} else if n == best {
			tied = true
		}
	}
	if tied {
		winner = -1
	}
	g.endGame(winner, "stalemate")
}
