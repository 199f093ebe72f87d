package engine

// PlayCard validates and resolves playing the card at cardIdx from the
// acting player's hand. target carries the explicit choices a swap (target
// seat) or vote (declared color) requires. On any rule violation an
// *InvalidPlayError is returned and nothing is mutated.
func (g *GameState) PlayCard(playerIdx uint8, cardIdx int, target *TargetInfo) (*Effect, error) {
	if g.Phase != PhasePlaying {
		return nil, invalid("cannot play while phase is %s", g.Phase)
	}
	if playerIdx != g.CurrentPlayerIndex {
		return nil, invalid("not player %d's turn", playerIdx)
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return nil, err
	}
	if cardIdx < 0 || cardIdx >= len(p.Hand) {
		return nil, invalid("card index %d out of range", cardIdx)
	}
	card := p.Hand[cardIdx]
	if !card.CanPlayOn(g.TopCard(), g.ActiveColor) {
		return nil, invalid("%s does not match top %s or active color %s", card, g.TopCard(), g.ActiveColor)
	}

	// Validate required targets before touching any state.
	var swapWith uint8
	if card.Type == TypeSwap {
		if target == nil || target.SwapTarget < 0 || int(target.SwapTarget) >= len(g.Players) {
			return nil, invalid("swap requires a target player")
		}
		if uint8(target.SwapTarget) == playerIdx {
			return nil, invalid("cannot swap hands with yourself")
		}
		swapWith = uint8(target.SwapTarget)
	}
	var voteColor Color
	if card.Type == TypeVote {
		if target == nil || target.VoteColor == ColorNone || target.VoteColor > ColorGreen {
			return nil, invalid("vote requires a color choice")
		}
		voteColor = target.VoteColor
	}

	p.RemoveCard(cardIdx)
	g.PlayPile = append(g.PlayPile, card)
	if !card.IsWild() {
		g.ActiveColor = card.Color
	}

	eff := &Effect{Type: card.Type, Target: -1, Winner: -1}

	// Win check the instant a hand empties. The card still lands on the
	// pile but its effect does not resolve in a finished game.
	if len(p.Hand) == 0 {
		g.Phase = PhaseGameOver
		g.LastAction = &LastAction{Player: playerIdx, Card: card, Target: -1}
		eff.GameOver = true
		eff.Winner = int8(playerIdx)
		g.record(playerIdx, "play", &card, "game_over")
		return eff, nil
	}

	prev := g.LastAction
	g.LastAction = &LastAction{Player: playerIdx, Card: card, Target: -1}

	switch card.Type {
	case TypeNumber:
		// No effect beyond landing on the pile.

	case TypeSkip:
		g.SkipNext = true

	case TypeReverse:
		g.Direction = -g.Direction
		// With two players a direction flip is a no-op, so reverse
		// doubles as a skip.
		if len(g.Players) == 2 {
			g.SkipNext = true
		}

	case TypeDrawTwo:
		victim := g.Players[g.NextPlayerIndex()]
		drawn := g.popDraw(int(g.Rules.DrawTwoCount))
		victim.AddCards(drawn...)
		g.SkipNext = true
		eff.CardsDrawn = drawn
		eff.Target = int8(victim.Index)

	case TypeSwap:
		other := g.Players[swapWith]
		p.Hand, other.Hand = other.Hand, p.Hand
		p.HasCalledPower = false
		other.HasCalledPower = false
		g.LastAction.Target = int8(swapWith)
		eff.Target = int8(swapWith)

	case TypeBlock:
		g.resolveBlock(prev, eff)

	case TypeVote:
		g.ActiveColor = voteColor
		g.startVote(playerIdx, voteColor)
		eff.VoteStarted = true
	}

	// A colored play can open a lobby activation window for its player.
	if g.Phase == PhasePlaying && !card.IsWild() {
		if t, ok := LobbyTrigger(card.Color); ok && !p.UsedLobbyThisTurn {
			if li := p.UnusedLobby(t); li >= 0 {
				eff.LobbyOffer = &LobbyOffer{Player: playerIdx, Type: t, LobbyIdx: li}
			}
		}
	}

	detail := ""
	if eff.Cancelled {
		detail = "nothing_to_block"
	} else if eff.Blocked != TypeNumber {
		detail = "blocked_" + eff.Blocked.String()
	}
	g.record(playerIdx, "play", &card, detail)
	return eff, nil
}

// resolveBlock undoes the immediately preceding action when it is one of
// skip, draw-two, reverse or swap; otherwise the block lands as a no-op.
// A blocked draw-two cannot claw back cards already drawn — only the
// attached skip is cancelled. That asymmetry is deliberate.
func (g *GameState) resolveBlock(prev *LastAction, eff *Effect) {
	if prev == nil || prev.Cancelled {
		eff.Cancelled = true
		return
	}
	switch prev.Card.Type {
	case TypeSkip:
		g.SkipNext = false
	case TypeDrawTwo:
		g.SkipNext = false
	case TypeReverse:
		g.Direction = -g.Direction
		if len(g.Players) == 2 {
			g.SkipNext = false
		}
	case TypeSwap:
		if prev.Target >= 0 && int(prev.Target) < len(g.Players) {
			a := g.Players[prev.Player]
			b := g.Players[prev.Target]
			a.Hand, b.Hand = b.Hand, a.Hand
			a.HasCalledPower = false
			b.HasCalledPower = false
		}
	default:
		eff.Cancelled = true
		return
	}
	prev.Cancelled = true
	eff.Blocked = prev.Card.Type
}

// DrawCard draws one card for the acting player, reshuffling the play pile
// if needed. When both piles are exhausted it returns (nil, nil): the deck
// never fabricates cards.
func (g *GameState) DrawCard(playerIdx uint8) (*Card, error) {
	if g.Phase != PhasePlaying {
		return nil, invalid("cannot draw while phase is %s", g.Phase)
	}
	if playerIdx != g.CurrentPlayerIndex {
		return nil, invalid("not player %d's turn", playerIdx)
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return nil, err
	}
	drawn := g.popDraw(1)
	if len(drawn) == 0 {
		g.record(playerIdx, "draw", nil, "empty_deck")
		return nil, nil
	}
	p.AddCards(drawn[0])
	g.record(playerIdx, "draw", nil, "")
	return &drawn[0], nil
}

// AdvanceTurn applies any pending skip and rotates the turn pointer one
// seat in the current direction. The new current player's per-turn lobby
// flag resets here.
func (g *GameState) AdvanceTurn() error {
	if g.Phase != PhasePlaying {
		return invalid("cannot advance turn while phase is %s", g.Phase)
	}
	steps := 1
	if g.SkipNext {
		steps = 2
		g.SkipNext = false
	}
	g.CurrentPlayerIndex = g.seatAfter(g.CurrentPlayerIndex, steps)
	g.TurnNumber++
	g.Players[g.CurrentPlayerIndex].UsedLobbyThisTurn = false
	return nil
}

// CallPower declares "Power!". Only legal while holding exactly one card.
func (g *GameState) CallPower(playerIdx uint8) error {
	if g.Phase != PhasePlaying {
		return invalid("cannot call power while phase is %s", g.Phase)
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return err
	}
	if len(p.Hand) != 1 {
		return invalid("power can only be called with exactly one card, player %d holds %d", playerIdx, len(p.Hand))
	}
	p.HasCalledPower = true
	g.record(playerIdx, "call_power", nil, "")
	return nil
}

// ChallengePower accuses a player of sitting on one card without calling
// Power!. A justified challenge makes the target draw the penalty; an
// unjustified one simply fails.
func (g *GameState) ChallengePower(challengerIdx, targetIdx uint8) (*ChallengeResult, error) {
	if g.Phase != PhasePlaying {
		return nil, invalid("cannot challenge while phase is %s", g.Phase)
	}
	if challengerIdx == targetIdx {
		return nil, invalid("cannot challenge yourself")
	}
	if _, err := g.player(challengerIdx); err != nil {
		return nil, err
	}
	t, err := g.player(targetIdx)
	if err != nil {
		return nil, err
	}
	if len(t.Hand) != 1 || t.HasCalledPower {
		g.record(challengerIdx, "challenge_power", nil, "failed")
		return &ChallengeResult{Caught: false}, nil
	}
	drawn := g.popDraw(int(g.Rules.ChallengePenalty))
	t.AddCards(drawn...)
	g.record(challengerIdx, "challenge_power", nil, "caught")
	return &ChallengeResult{Caught: true, CardsDrawn: drawn}, nil
}

// ActivateLobby spends the lobby card the active color's trigger points
// at. Bill grants the activator one extra card; Court Case knocks one
// random card out of the chosen opponent's hand. One activation per player
// per turn.
func (g *GameState) ActivateLobby(playerIdx uint8, targetIdx int8) (*LobbyResult, error) {
	if g.Phase != PhasePlaying {
		return nil, invalid("cannot activate lobby while phase is %s", g.Phase)
	}
	if playerIdx != g.CurrentPlayerIndex {
		return nil, invalid("not player %d's turn", playerIdx)
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return nil, err
	}
	if p.UsedLobbyThisTurn {
		return nil, invalid("player %d already used a lobby card this turn", playerIdx)
	}
	t, ok := LobbyTrigger(g.ActiveColor)
	if !ok {
		return nil, invalid("active color %s triggers no lobby card", g.ActiveColor)
	}
	li := p.UnusedLobby(t)
	if li < 0 {
		return nil, invalid("player %d holds no unused %s lobby card", playerIdx, t)
	}

	res := &LobbyResult{Type: t, Target: -1}
	switch t {
	case LobbyBill:
		drawn := g.popDraw(1)
		p.AddCards(drawn...)
		res.Drawn = drawn

	case LobbyCourtCase:
		if targetIdx < 0 || int(targetIdx) >= len(g.Players) || uint8(targetIdx) == playerIdx {
			return nil, invalid("court case requires an opponent target")
		}
		victim := g.Players[targetIdx]
		if len(victim.Hand) > 0 {
			di := int(g.randN(uint64(len(victim.Hand))))
			c, _ := victim.RemoveCard(di)
			g.buryInPlayPile(c)
			res.Discarded = &c
		}
		res.Target = targetIdx
	}

	p.LobbyCards[li].Used = true
	p.UsedLobbyThisTurn = true
	g.record(playerIdx, "lobby_"+t.String(), nil, "")
	return res, nil
}
