package game304

import (
	"fmt"
	"math/rand"
)

// leadSuit returns the suit of the first card in the trick in flight.
func (g *Game) leadSuit() (Suit, bool) {
	if len(g.CurrentTrick) == 0 {
		return "", false
	}
	return g.CurrentTrick[0].Card.Suit, true
}

// ValidCards returns the cards the seat can legally play right now. This is
// a derived projection, recomputed per call, never stored. Leading allows
// any card; following requires the lead suit when held.
func (g *Game) ValidCards(seat int) []Card {
	p := g.PlayerBySeat(seat)
	if p == nil || len(p.Hand) == 0 {
		return nil
	}
	lead, ok := g.leadSuit()
	if !ok {
		return append([]Card(nil), p.Hand...)
	}
	var same []Card
	for _, c := range p.Hand {
		if c.Suit == lead {
			same = append(same, c)
		}
	}
	if len(same) > 0 {
		return same
	}
	return append([]Card(nil), p.Hand...)
}

// playCard validates and commits a card into the current trick.
func (g *Game) playCard(seat int, card Card) (*Result, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if g.TurnSeat != seat {
		return nil, ErrOutOfTurn
	}
	p := g.PlayerBySeat(seat)
	if !holdsCard(p.Hand, card) {
		return nil, fmt.Errorf("%w: %s not in hand", ErrIllegalCard, card)
	}
	if !holdsCard(g.ValidCards(seat), card) {
		return nil, fmt.Errorf("%w: must follow suit", ErrIllegalCard)
	}

	removeCard(&p.Hand, card)

	isCut := false
	if lead, ok := g.leadSuit(); ok && card.Suit != lead {
		// Hidden trump confers no cut; the card plays as a plain discard.
		isCut = g.TrumpRevealed && card.Suit == g.TrumpSuit
	}
	g.CurrentTrick = append(g.CurrentTrick, TrickCard{Seat: seat, Card: card})

	res := &Result{CardPlayed: &card, Seat: &seat, IsCut: isCut}

	if len(g.CurrentTrick) == len(g.Players) {
		g.resolveTrick(res)
		return res, nil
	}
	g.TurnSeat = g.NextSeat(seat)
	next := g.TurnSeat
	res.NextTurn = &next
	return res, nil
}

// resolveTrick decides the completed trick, folds its cards into the
// winner's capture pile, and either opens the next trick or ends the hand.
func (g *Game) resolveTrick(res *Result) {
	lead := g.CurrentTrick[0].Card.Suit
	winner := g.CurrentTrick[0]
	for _, tc := range g.CurrentTrick[1:] {
		if tc.Card.Beats(winner.Card, g.TrumpSuit, g.TrumpRevealed, lead) {
			winner = tc
		}
	}

	points := 0
	for _, tc := range g.CurrentTrick {
		points += tc.Card.Points()
		g.TricksWon[winner.Seat] = append(g.TricksWon[winner.Seat], tc.Card)
	}
	g.CurrentTrick = nil
	g.TrickNumber++

	res.TrickWon = true
	res.WinnerSeat = &winner.Seat
	res.TrickPoints = &points

	if g.Mode == 2 && len(g.CenterPile) > 0 {
		res.Draws = g.drawAfterTrick(winner.Seat)
	}

	// The trumper runs one card short while trump is face-down. Before that
	// shortfall would stall a trick, the reveal becomes mandatory so the
	// hidden card re-enters play.
	if !g.TrumpRevealed && g.TrumperSeat != noSeat {
		trumper := g.PlayerBySeat(g.TrumperSeat)
		if len(trumper.Hand) == 0 && !g.allHandsEmpty() {
			g.revealTrump()
			res.TrumpRevealed = true
			res.TrumpSuit = g.TrumpSuit
			res.TrumpCard = g.TrumpCard
		}
	}

	if g.allHandsEmpty() {
		res.HandOver = true
		g.scoreHand(res)
		return
	}

	g.TurnSeat = winner.Seat
	g.LeadSeat = winner.Seat
	res.NextTurn = &winner.Seat
}

// drawAfterTrick refills 2p hands from the center pile, trick winner first.
func (g *Game) drawAfterTrick(winnerSeat int) []Draw {
	var draws []Draw
	for _, seat := range []int{winnerSeat, g.NextSeat(winnerSeat)} {
		if len(g.CenterPile) == 0 {
			break
		}
		card := g.CenterPile[0]
		g.CenterPile = g.CenterPile[1:]
		p := g.PlayerBySeat(seat)
		p.Hand = append(p.Hand, card)
		draws = append(draws, Draw{Seat: seat, Card: card})
	}
	return draws
}

func (g *Game) allHandsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// autoPlay plays a uniformly random valid card for a timed-out seat,
// avoiding an unforced hidden-trump discard when an alternative exists.
func (g *Game) autoPlay(seat int, rng *rand.Rand) (*Result, error) {
	valid := g.ValidCards(seat)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no valid cards", ErrIllegalCard)
	}
	card := valid[rng.Intn(len(valid))]

	if lead, ok := g.leadSuit(); ok && card.Suit != lead && !g.TrumpRevealed {
		var nonTrump []Card
		for _, c := range valid {
			if c.Suit != g.TrumpSuit {
				nonTrump = append(nonTrump, c)
			}
		}
		if len(nonTrump) > 0 {
			card = nonTrump[rng.Intn(len(nonTrump))]
		}
	}
	return g.playCard(seat, card)
}

// teamPoints tallies captured points for the trumper's side and the
// opposition. The 3p center pile (exchange discards included) counts for the
// opposition; an unplayed face-down trump card counts for the trumper.
func (g *Game) teamPoints() (trumper, opposing int) {
	for seat, cards := range g.TricksWon {
		pts := 0
		for _, c := range cards {
			pts += c.Points()
		}
		if g.onTrumperTeam(seat) {
			trumper += pts
		} else {
			opposing += pts
		}
	}
	if g.Mode == 3 {
		for _, c := range g.CenterPile {
			opposing += c.Points()
		}
	}
	if g.TrumpCard != nil && !g.TrumpRevealed {
		trumper += g.TrumpCard.Points()
	}
	return trumper, opposing
}

// spoiltTrump reports whether the trumper's team ended the hand holding all
// 8 cards of the trump suit, voiding the hand.
func (g *Game) spoiltTrump() bool {
	if g.TrumpSuit == "" {
		return false
	}
	count := 0
	for seat, cards := range g.TricksWon {
		if !g.onTrumperTeam(seat) {
			continue
		}
		for _, c := range cards {
			if c.Suit == g.TrumpSuit {
				count++
			}
		}
	}
	if g.TrumpCard != nil && !g.TrumpRevealed {
		count++
	}
	for _, seat := range g.TrumperTeamSeats() {
		if p := g.PlayerBySeat(seat); p != nil {
			for _, c := range p.Hand {
				if c.Suit == g.TrumpSuit {
					count++
				}
			}
		}
	}
	return count == 8
}
