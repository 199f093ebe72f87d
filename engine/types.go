package engine

import "fmt"

// Color of a card. ColorNone marks wild cards.
type Color uint8

const (
	ColorNone Color = iota // 0 — wild
	ColorBlue
	ColorYellow
	ColorRed
	ColorGreen
)

// NumColors is the number of playable (non-wild) colors.
const NumColors = 4

// Colors lists the playable colors in deck-construction order.
var Colors = [NumColors]Color{ColorBlue, ColorYellow, ColorRed, ColorGreen}

func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "blue"
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	default:
		return "wild"
	}
}

// CardType identifies what a card does when played.
type CardType uint8

const (
	TypeNumber CardType = iota
	TypeSkip
	TypeReverse
	TypeDrawTwo
	TypeSwap
	TypeBlock
	TypeVote
)

// NumActionTypes is the number of colored action types (skip, reverse,
// draw-two, swap, block). Vote is wild-only and counted separately.
const NumActionTypes = 5

func (t CardType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeSkip:
		return "skip"
	case TypeReverse:
		return "reverse"
	case TypeDrawTwo:
		return "draw2"
	case TypeSwap:
		return "swap"
	case TypeBlock:
		return "block"
	case TypeVote:
		return "vote"
	default:
		return "unknown"
	}
}

// Card is an immutable value. ID is the card's position in the unshuffled
// standard deck and stays with the card for the whole game, so two cards of
// identical face are still distinguishable in history records.
//
// Value is meaningful only when Type == TypeNumber. Color is ColorNone only
// when Type == TypeVote (the sole wild card type).
type Card struct {
	ID    uint8    `json:"id"`
	Color Color    `json:"color"`
	Type  CardType `json:"type"`
	Value int8     `json:"value"`
}

// IsWild reports whether the card has no color of its own.
func (c Card) IsWild() bool { return c.Color == ColorNone }

// CanPlayOn reports whether the card may be placed on top while active is
// the color in effect. The four rules, in order:
//  1. Vote cards are wild and always legal.
//  2. The card's color matches the active color.
//  3. A non-number action card matching the top card's type.
//  4. Two number cards sharing the same value.
func (c Card) CanPlayOn(top Card, active Color) bool {
	if c.Type == TypeVote {
		return true
	}
	if c.Color == active {
		return true
	}
	if c.Type != TypeNumber && c.Type == top.Type {
		return true
	}
	if c.Type == TypeNumber && top.Type == TypeNumber && c.Value == top.Value {
		return true
	}
	return false
}

// VoteValue is the rank a card counts for when submitted in a vote:
// its number for number cards, 0 for every action card.
func (c Card) VoteValue() int8 {
	if c.Type == TypeNumber {
		return c.Value
	}
	return 0
}

func (c Card) String() string {
	if c.Type == TypeNumber {
		return fmt.Sprintf("%s-%d", c.Color, c.Value)
	}
	if c.IsWild() {
		return c.Type.String()
	}
	return fmt.Sprintf("%s-%s", c.Color, c.Type)
}

// LobbyType identifies one of the two lobby card kinds.
type LobbyType uint8

const (
	LobbyBill      LobbyType = iota // triggered by blue plays
	LobbyCourtCase                  // triggered by red plays
)

func (t LobbyType) String() string {
	if t == LobbyCourtCase {
		return "court_case"
	}
	return "bill"
}

// LobbyTrigger returns the lobby type a play of the given color can
// activate, or false when the color triggers nothing.
func LobbyTrigger(c Color) (LobbyType, bool) {
	switch c {
	case ColorBlue:
		return LobbyBill, true
	case ColorRed:
		return LobbyCourtCase, true
	default:
		return 0, false
	}
}

// LobbyCard is a per-player sub-resource. Used is monotonic: once spent a
// lobby card never becomes usable again.
type LobbyCard struct {
	Type LobbyType `json:"type"`
	Used bool      `json:"used"`
}

// Phase is the game's lifecycle state machine:
// setup → playing ⇄ voting → game_over.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseVoting
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlaying:
		return "playing"
	case PhaseVoting:
		return "voting"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Mode distinguishes a game with AI opponents from hot-seat play.
type Mode uint8

const (
	ModeSinglePlayer Mode = iota
	ModeLocalMultiplayer
)

// Difficulty selects the AI policy tier.
type Difficulty uint8

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// InvalidPlayError is returned for every expected rule violation: wrong
// turn, wrong phase, or a card that does not match. State is never mutated
// when one is returned.
type InvalidPlayError struct {
	Reason string
}

func (e *InvalidPlayError) Error() string { return "invalid play: " + e.Reason }

func invalid(format string, args ...any) error {
	return &InvalidPlayError{Reason: fmt.Sprintf(format, args...)}
}

// TargetInfo carries the explicit choices some plays need: the opponent
// for a swap, or the color a vote card declares.
type TargetInfo struct {
	SwapTarget int8  `json:"swapTarget"`
	VoteColor  Color `json:"voteColor"`
}

// LobbyOffer reports that the acting player may activate a lobby card as
// part of the effect just resolved. The driving layer answers via
// ActivateLobby or simply moves on.
type LobbyOffer struct {
	Player   uint8     `json:"player"`
	Type     LobbyType `json:"type"`
	LobbyIdx int       `json:"lobbyIdx"`
}

// Effect is the structured result of a successful PlayCard.
type Effect struct {
	Type        CardType    `json:"type"`
	Cancelled   bool        `json:"cancelled,omitempty"`  // block with nothing to block
	Blocked     CardType    `json:"blocked,omitempty"`    // the action a block undid
	Target      int8        `json:"target"`               // swap target seat, -1 if n/a
	CardsDrawn  []Card      `json:"cardsDrawn,omitempty"` // draw-two delivery
	VoteStarted bool        `json:"voteStarted,omitempty"`
	LobbyOffer  *LobbyOffer `json:"lobbyOffer,omitempty"`
	GameOver    bool        `json:"gameOver,omitempty"`
	Winner      int8        `json:"winner"` // -1 while the game is live
}

// ChallengeResult reports the outcome of a Power! challenge.
type ChallengeResult struct {
	Caught     bool   `json:"caught"`
	CardsDrawn []Card `json:"cardsDrawn,omitempty"`
}

// LobbyResult reports the outcome of a lobby card activation.
type LobbyResult struct {
	Type      LobbyType `json:"type"`
	Drawn     []Card    `json:"drawn,omitempty"`     // bill: card granted to the activator
	Target    int8      `json:"target"`              // court case: opponent hit, -1 for bill
	Discarded *Card     `json:"discarded,omitempty"` // court case: card knocked out
}
