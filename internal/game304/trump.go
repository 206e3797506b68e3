package game304

import "fmt"

// selectTrump stores the trumper's secret suit and face-down card. The card
// leaves the visible hand until reveal.
func (g *Game) selectTrump(seat int, suit Suit, card Card) (*Result, error) {
	if g.Phase != PhaseTrumpSelection {
		return nil, ErrInvalidPhase
	}
	if seat != g.TrumperSeat {
		return nil, ErrOutOfTurn
	}
	if card.Suit != suit {
		return nil, fmt.Errorf("%w: %s is not a %s card", ErrInvalidTrumpCard, card, suit)
	}
	p := g.PlayerBySeat(seat)
	if !removeCard(&p.Hand, card) {
		return nil, fmt.Errorf("%w: %s not in hand", ErrInvalidTrumpCard, card)
	}

	g.TrumpSuit = suit
	g.TrumpCard = &card
	g.TrumpRevealed = false

	if g.Mode == 3 {
		g.Phase = PhaseCardExchange
		return &Result{TrumpSelected: true}, nil
	}
	g.Phase = PhasePlaying
	g.setFirstLead()
	return &Result{TrumpSelected: true}, nil
}

// exchangeCards swaps up to two hand cards for the same number drawn off the
// top of the center pile (3p only). The discards go under the pile and score
// for the opposing side at hand end.
func (g *Game) exchangeCards(seat int, give []Card) (*Result, error) {
	if g.Phase != PhaseCardExchange {
		return nil, ErrInvalidPhase
	}
	if seat != g.TrumperSeat {
		return nil, ErrOutOfTurn
	}
	if len(give) < 1 || len(give) > 2 {
		return nil, fmt.Errorf("%w: exchange 1 or 2 cards", ErrExchangeNotAllowed)
	}
	p := g.PlayerBySeat(seat)
	for _, c := range give {
		if !holdsCard(p.Hand, c) {
			return nil, fmt.Errorf("%w: %s not in hand", ErrExchangeNotAllowed, c)
		}
	}

	for _, c := range give {
		removeCard(&p.Hand, c)
	}
	n := len(give)
	drawn := g.CenterPile[:n]
	p.Hand = append(p.Hand, drawn...)
	g.CenterPile = append(g.CenterPile[n:], give...)
	g.ExchangeDone = true

	g.Phase = PhasePlaying
	g.setFirstLead()
	return &Result{ExchangeDone: true}, nil
}

func (g *Game) skipExchange(seat int) (*Result, error) {
	if g.Phase != PhaseCardExchange {
		return nil, ErrInvalidPhase
	}
	if seat != g.TrumperSeat {
		return nil, ErrOutOfTurn
	}
	g.ExchangeDone = true
	g.Phase = PhasePlaying
	g.setFirstLead()
	return &Result{ExchangeDone: true}, nil
}

// revealTrump publishes the trump suit and returns the face-down card to the
// trumper's hand.
func (g *Game) revealTrump() {
	g.TrumpRevealed = true
	if g.TrumpCard != nil {
		trumper := g.PlayerBySeat(g.TrumperSeat)
		trumper.Hand = append(trumper.Hand, *g.TrumpCard)
	}
}

// voluntaryReveal is the trumper showing trump of their own accord.
func (g *Game) voluntaryReveal(seat int) (*Result, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if seat != g.TrumperSeat {
		return nil, fmt.Errorf("%w: only the trumper may reveal", ErrRevealNotAllowed)
	}
	if g.TrumpRevealed {
		return nil, fmt.Errorf("%w: trump is already revealed", ErrRevealNotAllowed)
	}
	g.revealTrump()
	return g.revealResult(), nil
}

// askTrump is a non-trumper's cut request. Reveal is mandatory once the
// request is legal: a trick in flight, the requester to act, and (by default
// policy) no card of the lead suit in their hand.
func (g *Game) askTrump(seat int) (*Result, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if seat == g.TrumperSeat {
		return nil, fmt.Errorf("%w: the trumper reveals, not asks", ErrRevealNotAllowed)
	}
	if g.TrumpRevealed {
		return nil, fmt.Errorf("%w: trump is already revealed", ErrRevealNotAllowed)
	}
	if g.TurnSeat != seat {
		return nil, ErrOutOfTurn
	}
	lead, ok := g.leadSuit()
	if !ok {
		return nil, fmt.Errorf("%w: no trick in progress", ErrRevealNotAllowed)
	}
	if g.Rules.CutRequiresVoid {
		p := g.PlayerBySeat(seat)
		for _, c := range p.Hand {
			if c.Suit == lead {
				return nil, fmt.Errorf("%w: you can still follow suit", ErrRevealNotAllowed)
			}
		}
	}
	g.revealTrump()
	return g.revealResult(), nil
}

func (g *Game) revealResult() *Result {
	r := &Result{TrumpRevealed: true, TrumpSuit: g.TrumpSuit}
	if g.TrumpCard != nil {
		r.TrumpCard = g.TrumpCard
	}
	return r
}

// setFirstLead sets who leads the first trick: the trumper on a 304 bid,
// otherwise left of the dealer.
func (g *Game) setFirstLead() {
	if g.CurrentBid != nil && g.CurrentBid.Amount == MaxBid {
		g.TurnSeat = g.TrumperSeat
	} else {
		g.TurnSeat = g.NextSeat(g.DealerSeat)
	}
	g.LeadSeat = g.TurnSeat
	g.TrickNumber = 1
}

func holdsCard(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

func removeCard(hand *[]Card, card Card) bool {
	for i, c := range *hand {
		if c == card {
			*hand = append((*hand)[:i], (*hand)[i+1:]...)
			return true
		}
	}
	return false
}
