package engine

// Player holds one participant's hand, lobby sub-state and per-turn flags.
// Index is the stable 0-based seat and never changes.
type Player struct {
	Index             uint8       `json:"index"`
	Name              string      `json:"name"`
	IsHuman           bool        `json:"isHuman"`
	Hand              []Card      `json:"hand"`
	HasCalledPower    bool        `json:"hasCalledPower"`
	LobbyCards        []LobbyCard `json:"lobbyCards"`
	UsedLobbyThisTurn bool        `json:"usedLobbyThisTurn"`
}

// AddCards appends cards to the hand. Gaining any card voids a standing
// Power! call: HasCalledPower may be true only while the hand holds exactly
// one card.
func (p *Player) AddCards(cards ...Card) {
	if len(cards) == 0 {
		return
	}
	p.Hand = append(p.Hand, cards...)
	p.HasCalledPower = false
}

// RemoveCard takes the card at idx out of the hand, preserving order.
// Returns false for an out-of-range index with the hand untouched.
func (p *Player) RemoveCard(idx int) (Card, bool) {
	if idx < 0 || idx >= len(p.Hand) {
		return Card{}, false
	}
	c := p.Hand[idx]
	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	p.HasCalledPower = false
	return c, true
}

// PlayableCards returns the hand indices legal to play on top with the
// given active color, in hand order.
func (p *Player) PlayableCards(top Card, active Color) []int {
	var out []int
	for i, c := range p.Hand {
		if c.CanPlayOn(top, active) {
			out = append(out, i)
		}
	}
	return out
}

// CardsOfColor returns the hand indices holding cards of the given color.
func (p *Player) CardsOfColor(color Color) []int {
	var out []int
	for i, c := range p.Hand {
		if c.Color == color {
			out = append(out, i)
		}
	}
	return out
}

// UnusedLobby returns the index of the first unused lobby card of type t,
// or -1 when none remains.
func (p *Player) UnusedLobby(t LobbyType) int {
	for i, lc := range p.LobbyCards {
		if lc.Type == t && !lc.Used {
			return i
		}
	}
	return -1
}

// colorCount returns how many hand cards carry the given color.
func (p *Player) colorCount(color Color) int {
	n := 0
	for _, c := range p.Hand {
		if c.Color == color {
			n++
		}
	}
	return n
}

// dominantColor returns the color the player holds the most cards of.
// Ties break in Colors order; a hand of only wilds reports ColorNone.
func (p *Player) dominantColor() Color {
	best := ColorNone
	bestCount := 0
	for _, color := range Colors {
		if n := p.colorCount(color); n > bestCount {
			best = color
			bestCount = n
		}
	}
	return best
}

// SortHand orders the hand by color then value then type, for display.
// Legality never depends on hand order.
func (p *Player) SortHand() {
	h := p.Hand
	for i := 1; i < len(h); i++ {
		for j := i; j > 0 && handLess(h[j], h[j-1]); j-- {
			h[j], h[j-1] = h[j-1], h[j]
		}
	}
}

func handLess(a, b Card) bool {
	if a.Color != b.Color {
		return a.Color < b.Color
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.Value < b.Value
}
