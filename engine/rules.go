package engine

// Rules holds configurable game rule settings.
type Rules struct {
	NumPlayers       uint8 // 2–8; 0 treated as 2
	HandSize         uint8 // cards dealt to each player
	CopiesPerNumber  uint8 // copies of each 0–9 per color
	CopiesPerAction  uint8 // copies of each colored action type per color
	VoteCards        uint8 // wild vote cards in the deck
	DrawTwoCount     uint8 // cards the draw-two target receives
	ChallengePenalty uint8 // cards drawn when caught missing a Power! call
}

// DefaultRules returns the standard Power Plays composition:
// 4 colors x 10 numbers + 4 colors x 5 actions + 4 wild votes = 64 cards.
func DefaultRules() Rules {
	return Rules{
		NumPlayers:       2,
		HandSize:         7,
		CopiesPerNumber:  1,
		CopiesPerAction:  1,
		VoteCards:        4,
		DrawTwoCount:     2,
		ChallengePenalty: 2,
	}
}

// DeckSize is the fixed number of cards this composition yields. Deck
// conservation is always checked against it: no card is created or
// destroyed after setup.
func (r Rules) DeckSize() int {
	return NumColors*10*int(r.CopiesPerNumber) +
		NumColors*NumActionTypes*int(r.CopiesPerAction) +
		int(r.VoteCards)
}

// numPlayers returns the effective number of players, treating 0 as 2.
func (r *Rules) numPlayers() uint8 {
	if r.NumPlayers == 0 {
		return 2
	}
	return r.NumPlayers
}
