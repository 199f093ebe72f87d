package engine

import "testing"

func ballotFor(c Card) Ballot { return Ballot{Card: &c, Submitted: true} }

// TestResolveVoteHighestValue verifies a unique highest number wins.
func TestResolveVoteHighestValue(t *testing.T) {
	ballots := []Ballot{
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 4}),
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 9}),
		{Submitted: true},
	}
	winner, reason := ResolveVote(ballots, []int{5, 5, 5})
	if winner != 1 || reason != VoteReasonHighestValue {
		t.Errorf("winner,reason = %d,%s, want 1,highest_value", winner, reason)
	}
}

// TestResolveVoteTieBreakFewerCards reproduces the documented scenario:
// Red-7 vs Red-7 vs Red-3, tie broken by hand sizes 4 vs 6.
func TestResolveVoteTieBreakFewerCards(t *testing.T) {
	ballots := []Ballot{
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 7}),
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 7}),
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 3}),
	}
	winner, reason := ResolveVote(ballots, []int{4, 6, 2})
	if winner != 0 || reason != VoteReasonFewerCards {
		t.Errorf("winner,reason = %d,%s, want 0,fewer_cards", winner, reason)
	}
}

// TestResolveVoteNoParticipants verifies all-decline yields no winner.
func TestResolveVoteNoParticipants(t *testing.T) {
	ballots := []Ballot{{Submitted: true}, {Submitted: true}}
	winner, reason := ResolveVote(ballots, []int{3, 3})
	if winner != -1 || reason != VoteReasonNoParticipants {
		t.Errorf("winner,reason = %d,%s, want -1,no_participants", winner, reason)
	}
}

// TestResolveVoteCompleteTie verifies equal values and equal hand sizes
// resolve to no winner.
func TestResolveVoteCompleteTie(t *testing.T) {
	ballots := []Ballot{
		ballotFor(Card{Color: ColorBlue, Type: TypeNumber, Value: 6}),
		ballotFor(Card{Color: ColorBlue, Type: TypeNumber, Value: 6}),
	}
	winner, reason := ResolveVote(ballots, []int{4, 4})
	if winner != -1 || reason != VoteReasonCompleteTie {
		t.Errorf("winner,reason = %d,%s, want -1,complete_tie", winner, reason)
	}
}

// TestResolveVoteActionCardsScoreZero verifies an action card submission
// counts zero, losing to any positive number.
func TestResolveVoteActionCardsScoreZero(t *testing.T) {
	ballots := []Ballot{
		ballotFor(Card{Color: ColorGreen, Type: TypeSkip}),
		ballotFor(Card{Color: ColorGreen, Type: TypeNumber, Value: 1}),
	}
	winner, reason := ResolveVote(ballots, []int{2, 9})
	if winner != 1 || reason != VoteReasonHighestValue {
		t.Errorf("winner,reason = %d,%s, want 1,highest_value", winner, reason)
	}
}

// TestResolveVoteDeterministic verifies repeated resolution of the same
// ballots always agrees.
func TestResolveVoteDeterministic(t *testing.T) {
	ballots := []Ballot{
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 7}),
		ballotFor(Card{Color: ColorRed, Type: TypeNumber, Value: 7}),
		{Submitted: true},
	}
	sizes := []int{3, 8, 1}
	w0, r0 := ResolveVote(ballots, sizes)
	for i := 0; i < 50; i++ {
		w, r := ResolveVote(ballots, sizes)
		if w != w0 || r != r0 {
			t.Fatalf("resolution changed on call %d: %d,%s vs %d,%s", i, w, r, w0, r0)
		}
	}
}

// TestVoteFlow drives a full vote through the engine: play the wild,
// collect ballots in seat order, resolve, reward, return to playing.
func TestVoteFlow(t *testing.T) {
	g := startedGame(t, 40, 3)
	g.CurrentPlayerIndex = 0
	giveHand(g, 0,
		Card{ID: 101, Color: ColorNone, Type: TypeVote},
		Card{ID: 102, Color: ColorRed, Type: TypeNumber, Value: 7})
	giveHand(g, 1,
		Card{ID: 103, Color: ColorRed, Type: TypeNumber, Value: 7},
		Card{ID: 104, Color: ColorBlue, Type: TypeNumber, Value: 2},
		Card{ID: 105, Color: ColorBlue, Type: TypeNumber, Value: 3})
	giveHand(g, 2,
		Card{ID: 106, Color: ColorRed, Type: TypeNumber, Value: 3},
		Card{ID: 107, Color: ColorGreen, Type: TypeNumber, Value: 5})

	if _, err := g.PlayCard(0, 0, &TargetInfo{VoteColor: ColorRed}); err != nil {
		t.Fatal(err)
	}

	if err := g.SubmitVote(0, 0); err != nil { // red-7, hand left empty
		t.Fatal(err)
	}
	if err := g.SubmitVote(1, 0); err != nil { // red-7, 2 cards left
		t.Fatal(err)
	}
	if err := g.SubmitVote(2, 0); err != nil { // red-3
		t.Fatal(err)
	}
	if !g.AllVotesIn() {
		t.Fatal("AllVotesIn false with every ballot submitted")
	}

	res, err := g.EndVote()
	if err != nil {
		t.Fatal(err)
	}
	// Two-way tie at 7; seat 0 has 0 cards left vs seat 1's 2.
	if res.Winner != 0 || res.Reason != VoteReasonFewerCards {
		t.Errorf("result = %+v, want winner 0 by fewer_cards", res)
	}
	// Seat 0 held a lobby card, so the win pays one more of the same type.
	if res.RewardedLobby == nil || *res.RewardedLobby != LobbyBill {
		t.Errorf("reward = %v, want bill", res.RewardedLobby)
	}
	if len(g.Players[0].LobbyCards) != 2 {
		t.Errorf("winner lobby cards = %d, want 2", len(g.Players[0].LobbyCards))
	}
	if g.Phase != PhasePlaying {
		t.Errorf("phase = %s after vote, want playing", g.Phase)
	}
	if g.ActiveVote != nil {
		t.Error("ActiveVote not cleared")
	}
	// The vote card stays on top; ballots are folded in beneath it.
	if g.TopCard().Type != TypeVote {
		t.Errorf("top = %s, want the vote card", g.TopCard())
	}
}

// TestVoteNoReward verifies a winner holding no lobby card gets nothing —
// preserved source behavior, not a gap.
func TestVoteNoReward(t *testing.T) {
	g := startedGame(t, 41, 2)
	g.CurrentPlayerIndex = 0
	giveHand(g, 0,
		Card{ID: 101, Color: ColorNone, Type: TypeVote},
		Card{ID: 102, Color: ColorGreen, Type: TypeNumber, Value: 8})
	giveHand(g, 1, Card{ID: 103, Color: ColorBlue, Type: TypeNumber, Value: 2})
	g.Players[0].LobbyCards = nil

	if _, err := g.PlayCard(0, 0, &TargetInfo{VoteColor: ColorGreen}); err != nil {
		t.Fatal(err)
	}
	if err := g.SubmitVote(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := g.SubmitVote(1, -1); err != nil { // no green card, declines
		t.Fatal(err)
	}
	res, err := g.EndVote()
	if err != nil {
		t.Fatal(err)
	}
	if res.Winner != 0 {
		t.Fatalf("winner = %d, want 0", res.Winner)
	}
	if res.RewardedLobby != nil {
		t.Error("winner with no lobby cards was rewarded")
	}
}

// TestSubmitVoteValidation verifies wrong-color and double submissions
// are rejected without mutation.
func TestSubmitVoteValidation(t *testing.T) {
	g := startedGame(t, 42, 2)
	g.CurrentPlayerIndex = 0
	giveHand(g, 0,
		Card{ID: 101, Color: ColorNone, Type: TypeVote},
		Card{ID: 102, Color: ColorRed, Type: TypeNumber, Value: 5})
	giveHand(g, 1,
		Card{ID: 103, Color: ColorBlue, Type: TypeNumber, Value: 4},
		Card{ID: 104, Color: ColorRed, Type: TypeNumber, Value: 6})

	if _, err := g.PlayCard(0, 0, &TargetInfo{VoteColor: ColorRed}); err != nil {
		t.Fatal(err)
	}
	if err := g.SubmitVote(1, 0); err == nil { // blue card into a red vote
		t.Error("wrong-color submission accepted")
	}
	if len(g.Players[1].Hand) != 2 {
		t.Error("rejected submission mutated the hand")
	}
	if err := g.SubmitVote(1, 1); err != nil {
		t.Fatal(err)
	}
	if err := g.SubmitVote(1, 0); err == nil {
		t.Error("double submission accepted")
	}
	if _, err := g.EndVote(); err == nil {
		t.Error("EndVote accepted with ballots outstanding")
	}
}
