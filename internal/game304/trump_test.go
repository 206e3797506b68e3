package game304

import (
	"errors"
	"testing"
)

func makeSelectionGame(t *testing.T, mode int) *Game {
	t.Helper()
	g := makeGame(t, mode)
	g.Phase = PhaseTrumpSelection
	g.TrumperSeat = 1
	bid := Bid{Seat: 1, Amount: 160}
	g.CurrentBid = &bid
	return g
}

func TestSelectTrump(t *testing.T) {
	g := makeSelectionGame(t, 4)
	p := g.PlayerBySeat(1)
	p.Hand = []Card{card(Jack, Hearts), card(Nine, Spades)}

	res, err := g.selectTrump(1, Hearts, card(Jack, Hearts))
	if err != nil {
		t.Fatalf("selectTrump: %v", err)
	}
	if !res.TrumpSelected {
		t.Fatal("expected TrumpSelected result")
	}
	if g.TrumpSuit != Hearts || g.TrumpCard == nil || *g.TrumpCard != card(Jack, Hearts) {
		t.Fatalf("trump state not recorded: %s %v", g.TrumpSuit, g.TrumpCard)
	}
	if len(p.Hand) != 1 {
		t.Fatal("trump card should leave the visible hand")
	}
	if g.Phase != PhasePlaying {
		t.Fatalf("4p should go straight to PLAYING, got %s", g.Phase)
	}
}

func TestSelectTrumpWrongSuit(t *testing.T) {
	g := makeSelectionGame(t, 4)
	g.PlayerBySeat(1).Hand = []Card{card(Jack, Spades)}
	_, err := g.selectTrump(1, Hearts, card(Jack, Spades))
	if !errors.Is(err, ErrInvalidTrumpCard) {
		t.Fatalf("expected ErrInvalidTrumpCard, got %v", err)
	}
}

func TestSelectTrumpCardNotHeld(t *testing.T) {
	g := makeSelectionGame(t, 4)
	g.PlayerBySeat(1).Hand = []Card{card(Nine, Spades)}
	_, err := g.selectTrump(1, Hearts, card(Jack, Hearts))
	if !errors.Is(err, ErrInvalidTrumpCard) {
		t.Fatalf("expected ErrInvalidTrumpCard, got %v", err)
	}
}

func TestSelectTrumpOnlyTrumper(t *testing.T) {
	g := makeSelectionGame(t, 4)
	g.PlayerBySeat(2).Hand = []Card{card(Jack, Hearts)}
	_, err := g.selectTrump(2, Hearts, card(Jack, Hearts))
	if !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
}

func TestThreePlayerGoesToExchange(t *testing.T) {
	g := makeSelectionGame(t, 3)
	g.PlayerBySeat(1).Hand = []Card{card(Jack, Hearts)}
	if _, err := g.selectTrump(1, Hearts, card(Jack, Hearts)); err != nil {
		t.Fatalf("selectTrump: %v", err)
	}
	if g.Phase != PhaseCardExchange {
		t.Fatalf("3p should enter CARD_EXCHANGE, got %s", g.Phase)
	}
}

func makeExchangeGame(t *testing.T) *Game {
	t.Helper()
	g := makeSelectionGame(t, 3)
	g.Phase = PhaseCardExchange
	g.PlayerBySeat(1).Hand = []Card{card(Seven, Clubs), card(Eight, Clubs), card(Nine, Clubs)}
	g.CenterPile = []Card{card(Ace, Diamonds), card(Ten, Diamonds), card(King, Diamonds), card(Queen, Diamonds)}
	return g
}

func TestExchangeCards(t *testing.T) {
	g := makeExchangeGame(t)
	res, err := g.exchangeCards(1, []Card{card(Seven, Clubs), card(Eight, Clubs)})
	if err != nil {
		t.Fatalf("exchangeCards: %v", err)
	}
	if !res.ExchangeDone {
		t.Fatal("expected ExchangeDone result")
	}
	p := g.PlayerBySeat(1)
	if len(p.Hand) != 3 {
		t.Fatalf("hand size should be unchanged, got %d", len(p.Hand))
	}
	if !holdsCard(p.Hand, card(Ace, Diamonds)) || !holdsCard(p.Hand, card(Ten, Diamonds)) {
		t.Fatalf("expected top pile cards in hand, got %v", p.Hand)
	}
	if len(g.CenterPile) != 4 {
		t.Fatalf("discards should return to the pile, got %d cards", len(g.CenterPile))
	}
	if g.Phase != PhasePlaying {
		t.Fatalf("expected PLAYING after exchange, got %s", g.Phase)
	}
}

func TestExchangeTooManyCards(t *testing.T) {
	g := makeExchangeGame(t)
	give := []Card{card(Seven, Clubs), card(Eight, Clubs), card(Nine, Clubs)}
	_, err := g.exchangeCards(1, give)
	if !errors.Is(err, ErrExchangeNotAllowed) {
		t.Fatalf("expected ErrExchangeNotAllowed, got %v", err)
	}
}

func TestExchangeWrongMode(t *testing.T) {
	g := makeSelectionGame(t, 4)
	g.PlayerBySeat(1).Hand = []Card{card(Jack, Hearts), card(Seven, Clubs)}
	if _, err := g.selectTrump(1, Hearts, card(Jack, Hearts)); err != nil {
		t.Fatalf("selectTrump: %v", err)
	}
	// 4p skips CARD_EXCHANGE entirely, so the action lands in PLAYING.
	_, err := g.exchangeCards(1, []Card{card(Seven, Clubs)})
	if !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
}

func TestSkipExchange(t *testing.T) {
	g := makeExchangeGame(t)
	if _, err := g.skipExchange(1); err != nil {
		t.Fatalf("skipExchange: %v", err)
	}
	if g.Phase != PhasePlaying {
		t.Fatalf("expected PLAYING, got %s", g.Phase)
	}
	if !g.ExchangeDone {
		t.Fatal("skip should mark the exchange resolved")
	}
}

func TestVoluntaryReveal(t *testing.T) {
	g := makePlayingGame(t, 4)
	tc := card(Jack, Hearts)
	g.TrumpCard = &tc

	res, err := g.voluntaryReveal(0)
	if err != nil {
		t.Fatalf("voluntaryReveal: %v", err)
	}
	if !res.TrumpRevealed || res.TrumpSuit != Hearts {
		t.Fatalf("expected reveal result, got %+v", res)
	}
	if !g.TrumpRevealed {
		t.Fatal("trump should be revealed")
	}
	if !holdsCard(g.PlayerBySeat(0).Hand, tc) {
		t.Fatal("face-down card should return to the trumper's hand")
	}
}

func TestVoluntaryRevealNonTrumper(t *testing.T) {
	g := makePlayingGame(t, 4)
	_, err := g.voluntaryReveal(1)
	if !errors.Is(err, ErrRevealNotAllowed) {
		t.Fatalf("expected ErrRevealNotAllowed, got %v", err)
	}
}

func TestAskTrumpWhenVoid(t *testing.T) {
	g := makePlayingGame(t, 4)
	tc := card(Jack, Hearts)
	g.TrumpCard = &tc
	g.CurrentTrick = []TrickCard{{Seat: 1, Card: card(Jack, Spades)}}
	g.TurnSeat = 2
	g.PlayerBySeat(2).Hand = []Card{card(Seven, Hearts), card(Ace, Clubs)}

	res, err := g.askTrump(2)
	if err != nil {
		t.Fatalf("askTrump: %v", err)
	}
	if !res.TrumpRevealed {
		t.Fatal("ask_trump should reveal")
	}
}

func TestAskTrumpWhileHoldingLeadSuit(t *testing.T) {
	g := makePlayingGame(t, 4)
	g.CurrentTrick = []TrickCard{{Seat: 1, Card: card(Jack, Spades)}}
	g.TurnSeat = 2
	g.PlayerBySeat(2).Hand = []Card{card(Seven, Spades), card(Ace, Clubs)}

	_, err := g.askTrump(2)
	if !errors.Is(err, ErrRevealNotAllowed) {
		t.Fatalf("expected ErrRevealNotAllowed, got %v", err)
	}
}

func TestAskTrumpNoTrickInFlight(t *testing.T) {
	g := makePlayingGame(t, 4)
	g.TurnSeat = 2
	g.PlayerBySeat(2).Hand = []Card{card(Ace, Clubs)}
	_, err := g.askTrump(2)
	if !errors.Is(err, ErrRevealNotAllowed) {
		t.Fatalf("expected ErrRevealNotAllowed, got %v", err)
	}
}

func TestAskTrumpByTrumper(t *testing.T) {
	g := makePlayingGame(t, 4)
	_, err := g.askTrump(0)
	if !errors.Is(err, ErrRevealNotAllowed) {
		t.Fatalf("expected ErrRevealNotAllowed, got %v", err)
	}
}

func TestAskTrumpOutOfTurn(t *testing.T) {
	g := makePlayingGame(t, 4)
	g.CurrentTrick = []TrickCard{{Seat: 1, Card: card(Jack, Spades)}}
	g.TurnSeat = 2
	g.PlayerBySeat(3).Hand = []Card{card(Ace, Clubs)}
	_, err := g.askTrump(3)
	if !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
}

func TestAskTrumpPolicyDisabled(t *testing.T) {
	g := makePlayingGame(t, 4)
	g.Rules.CutRequiresVoid = false
	tc := card(Jack, Hearts)
	g.TrumpCard = &tc
	g.CurrentTrick = []TrickCard{{Seat: 1, Card: card(Jack, Spades)}}
	g.TurnSeat = 2
	g.PlayerBySeat(2).Hand = []Card{card(Seven, Spades)}

	if _, err := g.askTrump(2); err != nil {
		t.Fatalf("relaxed policy should allow the ask: %v", err)
	}
}

func TestForcedFinalReveal(t *testing.T) {
	g := makePlayingGame(t, 4)
	tc := card(Jack, Hearts)
	g.TrumpCard = &tc
	// Trumper (seat 0) plays their last card this trick while others still
	// hold one more.
	setHands(g, map[int][]Card{
		1: {card(Jack, Spades), card(Seven, Clubs)},
		2: {card(Nine, Spades), card(Eight, Clubs)},
		3: {card(Seven, Spades), card(Queen, Clubs)},
		0: {card(Eight, Spades)},
	})
	mustPlay(t, g, 1, card(Jack, Spades))
	mustPlay(t, g, 2, card(Nine, Spades))
	mustPlay(t, g, 3, card(Seven, Spades))
	res := mustPlay(t, g, 0, card(Eight, Spades))

	if !res.TrumpRevealed {
		t.Fatal("reveal must be forced before the trumper would stall a trick")
	}
	if !holdsCard(g.PlayerBySeat(0).Hand, tc) {
		t.Fatal("face-down card should re-enter the trumper's hand")
	}
}

func TestTrumperLeadsOn304Bid(t *testing.T) {
	g := makeSelectionGame(t, 4)
	g.CurrentBid.Amount = 304
	g.PlayerBySeat(1).Hand = []Card{card(Jack, Hearts)}
	if _, err := g.selectTrump(1, Hearts, card(Jack, Hearts)); err != nil {
		t.Fatalf("selectTrump: %v", err)
	}
	if g.TurnSeat != 1 {
		t.Fatalf("trumper should lead on a 304 bid, got seat %d", g.TurnSeat)
	}
}
