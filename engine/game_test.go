package engine

import "testing"

// startedGame builds a dealt, started game for tests.
func startedGame(t *testing.T, seed uint64, players uint8) *GameState {
	t.Helper()
	rules := DefaultRules()
	rules.NumPlayers = players
	g, err := NewGame(seed, rules, ModeSinglePlayer, 0, DifficultyMedium)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if err := g.Deal(); err != nil {
		t.Fatalf("Deal: %v", err)
	}
	for i := uint8(0); i < players; i++ {
		lt := LobbyBill
		if i%2 == 1 {
			lt = LobbyCourtCase
		}
		if err := g.AssignLobbyCard(i, lt); err != nil {
			t.Fatalf("AssignLobbyCard(%d): %v", i, err)
		}
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

// checkConservation asserts the deck-conservation invariant.
func checkConservation(t *testing.T, g *GameState) {
	t.Helper()
	if got, want := g.CardsInPlay(), g.Rules.DeckSize(); got != want {
		t.Fatalf("cards in play = %d, want %d", got, want)
	}
}

// TestDeckComposition verifies the standard composition: 40 numbers, 20
// colored actions, 4 wild votes, all IDs unique.
func TestDeckComposition(t *testing.T) {
	rules := DefaultRules()
	deck := buildStandardDeck(rules)

	if len(deck) != rules.DeckSize() {
		t.Fatalf("deck size = %d, want %d", len(deck), rules.DeckSize())
	}
	if rules.DeckSize() != 64 {
		t.Fatalf("default DeckSize = %d, want 64", rules.DeckSize())
	}

	numbers, actions, votes := 0, 0, 0
	seen := make(map[uint8]bool)
	for _, c := range deck {
		if seen[c.ID] {
			t.Errorf("duplicate card ID %d", c.ID)
		}
		seen[c.ID] = true
		switch {
		case c.Type == TypeNumber:
			numbers++
		case c.Type == TypeVote:
			votes++
			if !c.IsWild() {
				t.Errorf("vote card %s has a color", c)
			}
		default:
			actions++
			if c.IsWild() {
				t.Errorf("colored action card %s is wild", c)
			}
		}
	}
	if numbers != 40 {
		t.Errorf("numbers = %d, want 40", numbers)
	}
	if actions != 20 {
		t.Errorf("colored actions = %d, want 20", actions)
	}
	if votes != int(rules.VoteCards) {
		t.Errorf("votes = %d, want %d", votes, rules.VoteCards)
	}
}

// TestDealCounts verifies hand sizes, starter card and conservation after
// dealing.
func TestDealCounts(t *testing.T) {
	g := startedGame(t, 42, 3)

	for _, p := range g.Players {
		if len(p.Hand) != int(g.Rules.HandSize) {
			t.Errorf("player %d hand = %d cards, want %d", p.Index, len(p.Hand), g.Rules.HandSize)
		}
	}
	if len(g.PlayPile) != 1 {
		t.Errorf("play pile = %d cards, want 1", len(g.PlayPile))
	}
	if g.TopCard().Type != TypeNumber {
		t.Errorf("starter card %s is not a number card", g.TopCard())
	}
	if g.ActiveColor != g.TopCard().Color {
		t.Errorf("active color %s does not match starter %s", g.ActiveColor, g.TopCard())
	}
	checkConservation(t, g)
}

// TestDealSortsHands verifies dealt hands come out display-sorted.
func TestDealSortsHands(t *testing.T) {
	g := startedGame(t, 77, 3)
	for _, p := range g.Players {
		for i := 1; i < len(p.Hand); i++ {
			if handLess(p.Hand[i], p.Hand[i-1]) {
				t.Errorf("player %d hand unsorted at %d: %s before %s",
					p.Index, i, p.Hand[i-1], p.Hand[i])
			}
		}
	}
}

// TestDealDeterministic verifies the same seed deals identical games.
func TestDealDeterministic(t *testing.T) {
	g1 := startedGame(t, 99, 2)
	g2 := startedGame(t, 99, 2)

	if g1.TopCard() != g2.TopCard() {
		t.Errorf("starter: %s vs %s", g1.TopCard(), g2.TopCard())
	}
	for i := range g1.Players {
		for j := range g1.Players[i].Hand {
			if g1.Players[i].Hand[j] != g2.Players[i].Hand[j] {
				t.Fatalf("player %d card %d: %s vs %s", i, j, g1.Players[i].Hand[j], g2.Players[i].Hand[j])
			}
		}
	}
}

// TestDealDifferentSeeds verifies different seeds shuffle differently.
func TestDealDifferentSeeds(t *testing.T) {
	g1 := startedGame(t, 1, 2)
	g2 := startedGame(t, 2, 2)

	same := true
	for i := range g1.Players[0].Hand {
		if g1.Players[0].Hand[i] != g2.Players[0].Hand[i] {
			same = false
			break
		}
	}
	if same && g1.TopCard() == g2.TopCard() {
		t.Error("seeds 1 and 2 produced identical deals (extremely unlikely)")
	}
}

// TestSeedZeroCorrected verifies seed 0 is corrected so xorshift works.
func TestSeedZeroCorrected(t *testing.T) {
	g, err := NewGame(0, DefaultRules(), ModeSinglePlayer, 0, DifficultyEasy)
	if err != nil {
		t.Fatal(err)
	}
	if g.RNG == 0 {
		t.Error("RNG left at 0 for seed 0")
	}
}

// TestShuffleIsPermutation verifies shuffling preserves the multiset.
func TestShuffleIsPermutation(t *testing.T) {
	g, _ := NewGame(7, DefaultRules(), ModeSinglePlayer, 0, DifficultyEasy)
	before := make(map[uint8]bool, len(g.DrawPile))
	for _, c := range g.DrawPile {
		before[c.ID] = true
	}
	g.shuffle(g.DrawPile)
	for _, c := range g.DrawPile {
		if !before[c.ID] {
			t.Fatalf("card ID %d appeared from nowhere", c.ID)
		}
		delete(before, c.ID)
	}
	if len(before) != 0 {
		t.Fatalf("%d cards vanished in shuffle", len(before))
	}
}

// TestShuffleMovesCards is a weak uniformity check: over many seeds the
// first card should not stay in place materially more often than 1/N.
func TestShuffleMovesCards(t *testing.T) {
	rules := DefaultRules()
	stayed := 0
	const trials = 1000
	for seed := uint64(1); seed <= trials; seed++ {
		g, _ := NewGame(seed, rules, ModeSinglePlayer, 0, DifficultyEasy)
		first := g.DrawPile[0]
		g.shuffle(g.DrawPile)
		if g.DrawPile[0] == first {
			stayed++
		}
	}
	// Expected ~ trials/64 ≈ 16; allow generous slack.
	if stayed > trials/10 {
		t.Errorf("first card stayed in place %d/%d times", stayed, trials)
	}
}

// TestReshuffleFromPlayPile reproduces the documented boundary: draw pile
// empty, play pile of 5 — the 4 under-cards reshuffle, the top stays, and
// a subsequent draw succeeds.
func TestReshuffleFromPlayPile(t *testing.T) {
	g := startedGame(t, 5, 2)

	// Force the boundary state: empty draw pile, 5-card play pile.
	under := make([]Card, 4)
	copy(under, g.DrawPile[:4])
	g.PlayPile = append(under, g.PlayPile...)
	g.DrawPile = nil
	top := g.TopCard()
	pileSize := len(g.PlayPile)

	drawn := g.popDraw(1)
	if len(drawn) != 1 {
		t.Fatalf("draw after reshuffle yielded %d cards, want 1", len(drawn))
	}
	if g.TopCard() != top {
		t.Errorf("top card changed across reshuffle: %s -> %s", top, g.TopCard())
	}
	if len(g.PlayPile) != 1 {
		t.Errorf("play pile = %d cards after reshuffle, want 1", len(g.PlayPile))
	}
	if len(g.DrawPile) != pileSize-1-1 {
		t.Errorf("draw pile = %d cards, want %d", len(g.DrawPile), pileSize-2)
	}
}

// TestReshuffleNoopWhenPlayPileSmall verifies no reshuffle happens with a
// single-card play pile: the draw yields nothing rather than erroring.
func TestReshuffleNoopWhenPlayPileSmall(t *testing.T) {
	g := startedGame(t, 5, 2)
	g.DrawPile = nil
	if len(g.PlayPile) != 1 {
		t.Fatalf("precondition: play pile = %d, want 1", len(g.PlayPile))
	}

	drawn := g.popDraw(2)
	if len(drawn) != 0 {
		t.Errorf("exhausted draw yielded %d cards, want 0", len(drawn))
	}
	if len(g.PlayPile) != 1 {
		t.Errorf("play pile disturbed: %d cards", len(g.PlayPile))
	}
}

// TestAdvanceTurnRotation verifies plain advancement moves exactly one
// seat in direction, wrapping at the bounds.
func TestAdvanceTurnRotation(t *testing.T) {
	g := startedGame(t, 11, 3)
	g.CurrentPlayerIndex = 2
	if err := g.AdvanceTurn(); err != nil {
		t.Fatal(err)
	}
	if g.CurrentPlayerIndex != 0 {
		t.Errorf("wrap forward: current = %d, want 0", g.CurrentPlayerIndex)
	}

	g.Direction = -1
	if err := g.AdvanceTurn(); err != nil {
		t.Fatal(err)
	}
	if g.CurrentPlayerIndex != 2 {
		t.Errorf("wrap backward: current = %d, want 2", g.CurrentPlayerIndex)
	}
}

// TestAdvanceTurnSkip verifies a pending skip consumes an extra seat and
// clears itself.
func TestAdvanceTurnSkip(t *testing.T) {
	g := startedGame(t, 11, 3)
	g.CurrentPlayerIndex = 0
	g.SkipNext = true
	if err := g.AdvanceTurn(); err != nil {
		t.Fatal(err)
	}
	if g.CurrentPlayerIndex != 2 {
		t.Errorf("current = %d after skip, want 2", g.CurrentPlayerIndex)
	}
	if g.SkipNext {
		t.Error("SkipNext not cleared after being applied")
	}
}

// TestStartRequiresLobbyCards verifies the setup→playing transition gates
// on every player holding a lobby card.
func TestStartRequiresLobbyCards(t *testing.T) {
	g, err := NewGame(3, DefaultRules(), ModeSinglePlayer, 0, DifficultyEasy)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Deal(); err != nil {
		t.Fatal(err)
	}
	if err := g.Start(); err == nil {
		t.Error("Start succeeded without lobby cards")
	}
	if g.Phase != PhaseSetup {
		t.Errorf("phase = %s after rejected Start, want setup", g.Phase)
	}
}

// TestBuryInPlayPile verifies burying keeps the visible top in place.
func TestBuryInPlayPile(t *testing.T) {
	g := startedGame(t, 13, 2)
	top := g.TopCard()
	buried := Card{ID: 200, Color: ColorGreen, Type: TypeNumber, Value: 1}
	g.buryInPlayPile(buried)
	if g.TopCard() != top {
		t.Errorf("top changed: %s -> %s", top, g.TopCard())
	}
	if g.PlayPile[len(g.PlayPile)-2] != buried {
		t.Error("buried card is not directly under the top")
	}
}
