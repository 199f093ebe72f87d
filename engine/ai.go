package engine

// AI decision policies. All randomness flows through the game's own RNG so
// a seeded game replays identically, AI turns included. Difficulty comes
// from GameState.AIDifficulty.

// AIChoosePlay picks the hand index the AI player should play, or -1 when
// nothing is legal and the player must draw.
func (g *GameState) AIChoosePlay(playerIdx uint8) int {
	p, err := g.player(playerIdx)
	if err != nil {
		return -1
	}
	legal := p.PlayableCards(g.TopCard(), g.ActiveColor)
	if len(legal) == 0 {
		return -1
	}

	// Easy plays on vibes half the time.
	if g.AIDifficulty == DifficultyEasy && g.chance(50) {
		return legal[g.randN(uint64(len(legal)))]
	}

	bestIdx, secondIdx := legal[0], legal[0]
	bestScore, secondScore := g.scorePlay(p, legal[0]), int(-1<<30)
	for _, ci := range legal[1:] {
		s := g.scorePlay(p, ci)
		if s > bestScore {
			secondIdx, secondScore = bestIdx, bestScore
			bestIdx, bestScore = ci, s
		} else if s > secondScore {
			secondIdx, secondScore = ci, s
		}
	}

	// Hard occasionally takes the second-best line to stay unpredictable.
	if g.AIDifficulty == DifficultyHard && len(legal) > 1 && g.chance(10) {
		return secondIdx
	}
	return bestIdx
}

// scorePlay is the greedy card evaluation shared by the medium and hard
// tiers (and by easy when it bothers to think).
func (g *GameState) scorePlay(p *Player, cardIdx int) int {
	c := p.Hand[cardIdx]
	next := g.Players[g.NextPlayerIndex()]
	score := 0

	switch c.Type {
	case TypeNumber:
		score += int(c.Value) // shed high numbers first
	case TypeDrawTwo:
		score += 20
		if len(next.Hand) <= 2 {
			score += 15
		}
	case TypeSkip, TypeReverse:
		score += 10
		if len(next.Hand) <= 3 {
			score += 10
		}
	case TypeSwap:
		if len(p.Hand) > g.smallestOpponentHand(p.Index)+2 {
			score += 25
		} else {
			score -= 10
		}
	case TypeBlock:
		score -= 5 // hoard for defense
	case TypeVote:
		score -= 5
		if g.strongVoteHolding(p) {
			score += 15
		}
	}

	if !c.IsWild() && p.colorCount(c.Color) > 2 {
		score += 5
	}
	if g.AIDifficulty == DifficultyHard && !c.IsWild() && p.colorCount(c.Color) == 1 {
		score -= 3 // keep at least one card per color around
	}
	return score
}

// strongVoteHolding reports whether the player holds at least two number
// cards valued 7+ in their dominant color — a vote worth saving for.
func (g *GameState) strongVoteHolding(p *Player) bool {
	dom := p.dominantColor()
	if dom == ColorNone {
		return false
	}
	n := 0
	for _, c := range p.Hand {
		if c.Color == dom && c.Type == TypeNumber && c.Value >= 7 {
			n++
		}
	}
	return n >= 2
}

// smallestOpponentHand returns the smallest hand size among all seats
// other than self.
func (g *GameState) smallestOpponentHand(self uint8) int {
	best := -1
	for _, o := range g.Players {
		if o.Index == self {
			continue
		}
		if best < 0 || len(o.Hand) < best {
			best = len(o.Hand)
		}
	}
	return best
}

// AIChooseSwapTarget picks the opponent with the fewest cards.
func (g *GameState) AIChooseSwapTarget(playerIdx uint8) uint8 {
	best := playerIdx
	bestLen := -1
	for _, o := range g.Players {
		if o.Index == playerIdx {
			continue
		}
		if bestLen < 0 || len(o.Hand) < bestLen {
			best = o.Index
			bestLen = len(o.Hand)
		}
	}
	return best
}

// AIChooseCourtCaseTarget picks the opponent with the most cards.
func (g *GameState) AIChooseCourtCaseTarget(playerIdx uint8) uint8 {
	best := playerIdx
	bestLen := -1
	for _, o := range g.Players {
		if o.Index == playerIdx {
			continue
		}
		if len(o.Hand) > bestLen {
			best = o.Index
			bestLen = len(o.Hand)
		}
	}
	return best
}

// AIShouldCallPower decides whether to declare Power! on reaching one
// card. Easy forgets 30% of the time.
func (g *GameState) AIShouldCallPower(playerIdx uint8) bool {
	if g.AIDifficulty == DifficultyEasy {
		return g.chance(70)
	}
	return true
}

// AIShouldChallenge decides whether to call out a missed Power!. Only ever
// worth attempting against a one-card hand that has not called.
func (g *GameState) AIShouldChallenge(challengerIdx, targetIdx uint8) bool {
	t, err := g.player(targetIdx)
	if err != nil || len(t.Hand) != 1 || t.HasCalledPower {
		return false
	}
	switch g.AIDifficulty {
	case DifficultyEasy:
		return g.chance(20)
	case DifficultyMedium:
		return g.chance(50)
	default:
		return g.chance(90)
	}
}

// AIShouldActivateLobby decides whether to take an offered lobby
// activation. Hard is rule-based rather than random.
func (g *GameState) AIShouldActivateLobby(playerIdx uint8, t LobbyType) bool {
	p, err := g.player(playerIdx)
	if err != nil {
		return false
	}
	switch g.AIDifficulty {
	case DifficultyEasy:
		return g.chance(50)
	case DifficultyMedium:
		return g.chance(80)
	default:
		if t == LobbyBill {
			return len(p.Hand) <= 3
		}
		for _, o := range g.Players {
			if o.Index != playerIdx && len(o.Hand) <= 2 {
				return true
			}
		}
		return false
	}
}

// AIChooseVoteColor picks the color of the player's highest numeric card,
// falling back to the dominant color for a numberless hand.
func (g *GameState) AIChooseVoteColor(playerIdx uint8) Color {
	p, err := g.player(playerIdx)
	if err != nil {
		return ColorBlue
	}
	best := ColorNone
	bestVal := int8(-1)
	for _, c := range p.Hand {
		if c.Type == TypeNumber && c.Value > bestVal {
			best = c.Color
			bestVal = c.Value
		}
	}
	if best != ColorNone {
		return best
	}
	if dom := p.dominantColor(); dom != ColorNone {
		return dom
	}
	return ColorBlue
}

// AIChooseVoteCard picks the hand index to submit for a vote in the given
// color, or -1 to decline (always declines only when holding no card of
// the color). Hard sandbags a weak holding.
func (g *GameState) AIChooseVoteCard(playerIdx uint8, color Color) int {
	p, err := g.player(playerIdx)
	if err != nil {
		return -1
	}
	candidates := p.CardsOfColor(color)
	if len(candidates) == 0 {
		return -1
	}

	switch g.AIDifficulty {
	case DifficultyEasy:
		return candidates[g.randN(uint64(len(candidates)))]

	case DifficultyMedium:
		return pickByVoteValue(p, candidates, true)

	default:
		best := pickByVoteValue(p, candidates, true)
		if p.Hand[best].VoteValue() < 5 && len(candidates) >= 2 {
			return pickByVoteValue(p, candidates, false)
		}
		return best
	}
}

// pickByVoteValue returns the candidate index with the highest (or lowest)
// vote value, first match winning ties.
func pickByVoteValue(p *Player, candidates []int, highest bool) int {
	best := candidates[0]
	for _, ci := range candidates[1:] {
		v, bv := p.Hand[ci].VoteValue(), p.Hand[best].VoteValue()
		if (highest && v > bv) || (!highest && v < bv) {
			best = ci
		}
	}
	return best
}
