// Package engine implements the Power Plays card game rules.
//
// The engine is a pure, seed-deterministic state machine: every mutation
// happens through a public operation invoked by a driving orchestrator, all
// rule violations come back as *InvalidPlayError values with no state
// changed, and the whole GameState round-trips losslessly through JSON.
package engine

import "fmt"

// MaxPlayers bounds the seat count a single game supports.
const MaxPlayers = 8

// LastAction records the most recent resolved play, for block targeting
// and observers.
type LastAction struct {
	Player    uint8 `json:"player"`
	Card      Card  `json:"card"`
	Target    int8  `json:"target"`              // swap target seat, -1 if n/a
	Cancelled bool  `json:"cancelled,omitempty"` // undone by a block
}

// TurnRecord is one entry of the replay/debug history.
type TurnRecord struct {
	Turn   uint16 `json:"turn"`
	Player uint8  `json:"player"`
	Action string `json:"action"`
	Card   *Card  `json:"card,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// GameState is the aggregate root. The draw pile and play pile are stacks:
// the last element is the top, drawable end. The union of both piles, every
// hand and every vote ballot always equals the standard deck composition.
type GameState struct {
	Mode         Mode       `json:"mode"`
	Phase        Phase      `json:"phase"`
	AIDifficulty Difficulty `json:"aiDifficulty"`

	Players            []*Player `json:"players"`
	CurrentPlayerIndex uint8     `json:"currentPlayerIndex"`
	Direction          int8      `json:"direction"` // +1 or -1

	DrawPile    []Card `json:"drawPile"`
	PlayPile    []Card `json:"playPile"`
	ActiveColor Color  `json:"activeColor"`
	SkipNext    bool   `json:"skipNext"`

	LastAction *LastAction `json:"lastAction,omitempty"`
	ActiveVote *Vote       `json:"activeVote,omitempty"`

	TurnHistory []TurnRecord `json:"turnHistory"`
	TurnNumber  uint16       `json:"turnNumber"`

	RNG   uint64 `json:"rng"`
	Rules Rules  `json:"rules"`
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// chance returns true with probability pct/100.
func (g *GameState) chance(pct uint64) bool {
	return g.randN(100) < pct
}

// ---------------------------------------------------------------------------
// NewGame and setup
// ---------------------------------------------------------------------------

// NewGame initializes a GameState in PhaseSetup with the full unshuffled
// deck on the draw pile and the requested seats created. humanSeat is the
// seat the human occupies in single-player mode; in local multiplayer every
// seat is human.
func NewGame(seed uint64, rules Rules, mode Mode, humanSeat uint8, difficulty Difficulty) (*GameState, error) {
	n := rules.numPlayers()
	if n < 2 || n > MaxPlayers {
		return nil, fmt.Errorf("player count %d out of range [2,%d]", n, MaxPlayers)
	}
	if mode == ModeSinglePlayer && humanSeat >= n {
		return nil, fmt.Errorf("human seat %d out of range for %d players", humanSeat, n)
	}

	g := &GameState{
		Mode:         mode,
		Phase:        PhaseSetup,
		AIDifficulty: difficulty,
		Direction:    1,
		RNG:          seed,
		Rules:        rules,
	}
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}

	for i := uint8(0); i < n; i++ {
		g.Players = append(g.Players, &Player{
			Index:   i,
			Name:    fmt.Sprintf("Player %d", i+1),
			IsHuman: mode == ModeLocalMultiplayer || i == humanSeat,
		})
	}

	g.DrawPile = buildStandardDeck(rules)
	return g, nil
}

// buildStandardDeck creates the configured composition in a fixed order:
// per color all numbers then all actions, wild votes last. Card IDs follow
// this order.
func buildStandardDeck(rules Rules) []Card {
	deck := make([]Card, 0, rules.DeckSize())
	id := uint8(0)
	actionTypes := [NumActionTypes]CardType{TypeSkip, TypeReverse, TypeDrawTwo, TypeSwap, TypeBlock}
	for _, color := range Colors {
		for v := int8(0); v <= 9; v++ {
			for c := uint8(0); c < rules.CopiesPerNumber; c++ {
				deck = append(deck, Card{ID: id, Color: color, Type: TypeNumber, Value: v})
				id++
			}
		}
		for _, t := range actionTypes {
			for c := uint8(0); c < rules.CopiesPerAction; c++ {
				deck = append(deck, Card{ID: id, Color: color, Type: t})
				id++
			}
		}
	}
	for c := uint8(0); c < rules.VoteCards; c++ {
		deck = append(deck, Card{ID: id, Color: ColorNone, Type: TypeVote})
		id++
	}
	return deck
}

// shuffle performs an in-place Fisher-Yates permutation of the given pile.
func (g *GameState) shuffle(pile []Card) {
	for i := len(pile) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		pile[i], pile[j] = pile[j], pile[i]
	}
}

// Deal shuffles the draw pile, deals HandSize cards to every player and
// flips the starter card. Only legal in PhaseSetup before any deal.
func (g *GameState) Deal() error {
	if g.Phase != PhaseSetup {
		return invalid("deal only allowed during setup, phase is %s", g.Phase)
	}
	if len(g.PlayPile) > 0 || len(g.Players[0].Hand) > 0 {
		return invalid("already dealt")
	}

	g.shuffle(g.DrawPile)

	for c := uint8(0); c < g.Rules.HandSize; c++ {
		for _, p := range g.Players {
			drawn := g.popDraw(1)
			p.Hand = append(p.Hand, drawn...)
		}
	}
	// Dealt hands are presented sorted; no card index has been handed out
	// yet, and order never affects legality.
	for _, p := range g.Players {
		p.SortHand()
	}
	g.setupPlayPile()
	return nil
}

// setupPlayPile flips cards from the draw pile until a number card
// surfaces; action cards drawn meanwhile are shuffled back in. The starter
// card sets the initial active color.
func (g *GameState) setupPlayPile() {
	for {
		drawn := g.popDraw(1)
		if len(drawn) == 0 {
			return
		}
		c := drawn[0]
		if c.Type == TypeNumber {
			g.PlayPile = append(g.PlayPile, c)
			g.ActiveColor = c.Color
			return
		}
		// Put the action card back anywhere and reshuffle.
		g.DrawPile = append(g.DrawPile, c)
		g.shuffle(g.DrawPile)
	}
}

// AssignLobbyCard gives a player their initial lobby card during setup.
// Each player holds exactly one at game start; more can only be earned as
// vote rewards.
func (g *GameState) AssignLobbyCard(playerIdx uint8, t LobbyType) error {
	if g.Phase != PhaseSetup {
		return invalid("lobby cards are assigned during setup, phase is %s", g.Phase)
	}
	p, err := g.player(playerIdx)
	if err != nil {
		return err
	}
	if len(p.LobbyCards) > 0 {
		return invalid("player %d already holds a lobby card", playerIdx)
	}
	p.LobbyCards = append(p.LobbyCards, LobbyCard{Type: t})
	return nil
}

// Start transitions setup → playing once dealing and lobby assignment are
// complete. Idempotent against repeat calls only by rejection.
func (g *GameState) Start() error {
	if g.Phase != PhaseSetup {
		return invalid("game already started, phase is %s", g.Phase)
	}
	if len(g.PlayPile) == 0 {
		return invalid("cannot start before dealing")
	}
	for _, p := range g.Players {
		if len(p.LobbyCards) == 0 {
			return invalid("player %d has no lobby card assigned", p.Index)
		}
	}
	g.Phase = PhasePlaying
	g.record(g.CurrentPlayerIndex, "game_start", nil, "")
	return nil
}

// ---------------------------------------------------------------------------
// Piles
// ---------------------------------------------------------------------------

// TopCard returns the top of the play pile. Only meaningful after Deal.
func (g *GameState) TopCard() Card {
	if len(g.PlayPile) == 0 {
		return Card{}
	}
	return g.PlayPile[len(g.PlayPile)-1]
}

// popDraw removes up to n cards from the top of the draw pile, reshuffling
// the play pile under its top card when the draw pile runs dry. May return
// fewer cards than requested when both piles are exhausted; that is a real
// boundary case, not an error.
func (g *GameState) popDraw(n int) []Card {
	out := make([]Card, 0, n)
	for len(out) < n {
		if len(g.DrawPile) == 0 {
			g.reshuffleFromPlayPile()
			if len(g.DrawPile) == 0 {
				break
			}
		}
		top := g.DrawPile[len(g.DrawPile)-1]
		g.DrawPile = g.DrawPile[:len(g.DrawPile)-1]
		out = append(out, top)
	}
	return out
}

// reshuffleFromPlayPile moves every play-pile card except the current top
// into the draw pile and shuffles. A play pile holding one card or fewer
// stays as it is.
func (g *GameState) reshuffleFromPlayPile() {
	if len(g.PlayPile) <= 1 {
		return
	}
	top := g.PlayPile[len(g.PlayPile)-1]
	g.DrawPile = append(g.DrawPile, g.PlayPile[:len(g.PlayPile)-1]...)
	g.PlayPile = g.PlayPile[:0]
	g.PlayPile = append(g.PlayPile, top)
	g.shuffle(g.DrawPile)
}

// buryInPlayPile slides a card under the play-pile top so the visible top
// card and active color are unaffected. Used for court-case discards and
// collected vote ballots.
func (g *GameState) buryInPlayPile(c Card) {
	if len(g.PlayPile) == 0 {
		g.PlayPile = append(g.PlayPile, c)
		return
	}
	top := g.PlayPile[len(g.PlayPile)-1]
	g.PlayPile[len(g.PlayPile)-1] = c
	g.PlayPile = append(g.PlayPile, top)
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// IsGameOver reports whether the game has reached its terminal phase.
func (g *GameState) IsGameOver() bool { return g.Phase == PhaseGameOver }

// NumPlayers returns the seat count.
func (g *GameState) NumPlayers() uint8 { return uint8(len(g.Players)) }

// player returns the seat or an InvalidPlayError for a bad index.
func (g *GameState) player(idx uint8) (*Player, error) {
	if int(idx) >= len(g.Players) {
		return nil, invalid("player index %d out of range", idx)
	}
	return g.Players[idx], nil
}

// seatAfter returns the seat `steps` positions from `from` in the current
// direction, wrapping at the bounds.
func (g *GameState) seatAfter(from uint8, steps int) uint8 {
	n := len(g.Players)
	i := (int(from) + steps*int(g.Direction)) % n
	if i < 0 {
		i += n
	}
	return uint8(i)
}

// NextPlayerIndex returns the seat that acts after the current player,
// ignoring any pending skip.
func (g *GameState) NextPlayerIndex() uint8 {
	return g.seatAfter(g.CurrentPlayerIndex, 1)
}

// PlayableCards returns the hand indices the given player could legally
// play right now.
func (g *GameState) PlayableCards(playerIdx uint8) []int {
	p, err := g.player(playerIdx)
	if err != nil {
		return nil
	}
	return p.PlayableCards(g.TopCard(), g.ActiveColor)
}

// CardsInPlay is the total number of cards across both piles, all hands
// and any pending vote ballots. Equals Rules.DeckSize() at all times after
// setup — the deck-conservation invariant.
func (g *GameState) CardsInPlay() int {
	total := len(g.DrawPile) + len(g.PlayPile)
	for _, p := range g.Players {
		total += len(p.Hand)
	}
	if g.ActiveVote != nil {
		for _, b := range g.ActiveVote.Ballots {
			if b.Card != nil {
				total++
			}
		}
	}
	return total
}

// record appends a turn-history entry.
func (g *GameState) record(player uint8, action string, card *Card, detail string) {
	var cc *Card
	if card != nil {
		copied := *card
		cc = &copied
	}
	g.TurnHistory = append(g.TurnHistory, TurnRecord{
		Turn:   g.TurnNumber,
		Player: player,
		Action: action,
		Card:   cc,
		Detail: detail,
	})
}
