package engine

// VoteReason explains how a vote resolved. NoParticipants and CompleteTie
// are valid no-winner outcomes, not failures.
type VoteReason string

const (
	VoteReasonHighestValue   VoteReason = "highest_value"
	VoteReasonFewerCards     VoteReason = "fewer_cards"
	VoteReasonNoParticipants VoteReason = "no_participants"
	VoteReasonCompleteTie    VoteReason = "complete_tie"
)

// Ballot is one player's vote slot. Submitted distinguishes "declined"
// (Submitted true, Card nil) from "not asked yet".
type Ballot struct {
	Card      *Card `json:"card,omitempty"`
	Submitted bool  `json:"submitted"`
}

// Vote is the transient state of the vote sub-game. It exists only while
// Phase == PhaseVoting; EndVote consumes it.
type Vote struct {
	Initiator uint8      `json:"initiator"`
	Color     Color      `json:"color"`
	Ballots   []Ballot   `json:"ballots"` // indexed by seat
	Resolved  bool       `json:"resolved"`
	Winner    int8       `json:"winner"` // -1 until resolved with a winner
	Reason    VoteReason `json:"reason,omitempty"`
}

// VoteResult is what EndVote hands back to the orchestrator.
type VoteResult struct {
	Winner        int8       `json:"winner"` // -1 for no winner
	Reason        VoteReason `json:"reason"`
	RewardedLobby *LobbyType `json:"rewardedLobby,omitempty"`
}

// startVote opens vote slots for every seat, the initiator included, and
// moves the game into PhaseVoting.
func (g *GameState) startVote(initiator uint8, color Color) {
	g.ActiveVote = &Vote{
		Initiator: initiator,
		Color:     color,
		Ballots:   make([]Ballot, len(g.Players)),
		Winner:    -1,
	}
	g.Phase = PhaseVoting
	g.record(initiator, "vote_start", nil, color.String())
}

// SubmitVote records a player's vote. cardIdx < 0 declines; otherwise the
// hand card at cardIdx must carry the vote's color and moves out of the
// hand into the ballot.
func (g *GameState) SubmitVote(playerIdx uint8, cardIdx int) error {
	if g.Phase != PhaseVoting || g.ActiveVote == nil {
		return invalid("no vote in progress")
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return err
	}
	if g.ActiveVote.Ballots[playerIdx].Submitted {
		return invalid("player %d already voted", playerIdx)
	}
	if cardIdx < 0 {
		g.ActiveVote.Ballots[playerIdx] = Ballot{Submitted: true}
		g.record(playerIdx, "vote_decline", nil, "")
		return nil
	}
	if cardIdx >= len(p.Hand) {
		return invalid("card index %d out of range", cardIdx)
	}
	if p.Hand[cardIdx].Color != g.ActiveVote.Color {
		return invalid("vote card must be %s, got %s", g.ActiveVote.Color, p.Hand[cardIdx])
	}
	c, _ := p.RemoveCard(cardIdx)
	g.ActiveVote.Ballots[playerIdx] = Ballot{Card: &c, Submitted: true}
	g.record(playerIdx, "vote_submit", &c, "")
	return nil
}

// AllVotesIn reports whether every seat has submitted or declined.
func (g *GameState) AllVotesIn() bool {
	if g.ActiveVote == nil {
		return false
	}
	for _, b := range g.ActiveVote.Ballots {
		if !b.Submitted {
			return false
		}
	}
	return true
}

// ResolveVote is the pure resolution function over submitted ballots.
// handSizes are post-submission hand sizes by seat, used for the
// fewer-cards tie break. Action cards score 0.
func ResolveVote(ballots []Ballot, handSizes []int) (int8, VoteReason) {
	best := int8(-1)
	participants := 0
	for _, b := range ballots {
		if b.Card == nil {
			continue
		}
		participants++
		if v := b.Card.VoteValue(); v > best {
			best = v
		}
	}
	if participants == 0 {
		return -1, VoteReasonNoParticipants
	}

	var leaders []int
	for i, b := range ballots {
		if b.Card != nil && b.Card.VoteValue() == best {
			leaders = append(leaders, i)
		}
	}
	if len(leaders) == 1 {
		return int8(leaders[0]), VoteReasonHighestValue
	}

	// Tie at the top value: fewest cards left in hand wins, if unique.
	minSize := handSizes[leaders[0]]
	for _, i := range leaders[1:] {
		if handSizes[i] < minSize {
			minSize = handSizes[i]
		}
	}
	winner := -1
	for _, i := range leaders {
		if handSizes[i] == minSize {
			if winner >= 0 {
				return -1, VoteReasonCompleteTie
			}
			winner = i
		}
	}
	return int8(winner), VoteReasonFewerCards
}

// EndVote resolves the vote once every ballot is in, pays the reward,
// folds the submitted cards back under the play-pile top and returns the
// game to PhasePlaying.
func (g *GameState) EndVote() (*VoteResult, error) {
	if g.Phase != PhaseVoting || g.ActiveVote == nil {
		return nil, invalid("no vote in progress")
	}
	if !g.AllVotesIn() {
		return nil, invalid("vote still collecting ballots")
	}

	handSizes := make([]int, len(g.Players))
	for i, p := range g.Players {
		handSizes[i] = len(p.Hand)
	}
	winner, reason := ResolveVote(g.ActiveVote.Ballots, handSizes)
	g.ActiveVote.Resolved = true
	g.ActiveVote.Winner = winner
	g.ActiveVote.Reason = reason

	res := &VoteResult{Winner: winner, Reason: reason}

	// Reward: a winner already holding a lobby card gains one more of
	// that same type. A winner with none gets nothing — preserved as-is.
	if winner >= 0 {
		w := g.Players[winner]
		if len(w.LobbyCards) > 0 {
			t := w.LobbyCards[0].Type
			w.LobbyCards = append(w.LobbyCards, LobbyCard{Type: t})
			res.RewardedLobby = &t
		}
	}

	// Submitted cards join the play pile beneath the vote card on top.
	for i := range g.ActiveVote.Ballots {
		if c := g.ActiveVote.Ballots[i].Card; c != nil {
			g.buryInPlayPile(*c)
		}
	}

	detail := string(reason)
	g.record(g.ActiveVote.Initiator, "vote_end", nil, detail)
	g.ActiveVote = nil
	g.Phase = PhasePlaying
	return res, nil
}
