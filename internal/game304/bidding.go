package game304

import "fmt"

const (
	MinBid          = 150
	MaxBid          = 304
	BidStep         = 10
	specialBidFloor = 200
)

// startBidding opens the bidding round. The seat left of the dealer acts
// first.
func (g *Game) startBidding() {
	g.Phase = PhaseBidding
	g.Bids = nil
	g.CurrentBid = nil
	g.BidTurnSeat = g.NextSeat(g.DealerSeat)
}

// PartnerSeat returns the partner's seat in 4p, or noSeat.
func (g *Game) PartnerSeat(seat int) int {
	if g.Mode != 4 {
		return noSeat
	}
	return (seat + 2) % 4
}

func (g *Game) hasBidOrPassed(seat int) bool {
	for _, b := range g.Bids {
		if b.Seat == seat {
			return true
		}
	}
	return false
}

func (g *Game) highestBid() int {
	high := 0
	for _, b := range g.Bids {
		if !b.Pass && b.Amount > high {
			high = b.Amount
		}
	}
	return high
}

func (g *Game) any200PlusBid() bool {
	for _, b := range g.Bids {
		if !b.Pass && b.Amount >= specialBidFloor {
			return true
		}
	}
	return false
}

func (g *Game) partnerBidAmount(seat int) (int, bool) {
	partner := g.PartnerSeat(seat)
	if partner == noSeat {
		return 0, false
	}
	for _, b := range g.Bids {
		if b.Seat == partner && !b.Pass {
			return b.Amount, true
		}
	}
	return 0, false
}

// validateBid checks a bid (pass=false) or a pass against the bidding rules.
func (g *Game) validateBid(seat, amount int, pass bool) error {
	if g.Phase != PhaseBidding {
		return ErrInvalidPhase
	}
	if g.BidTurnSeat != seat {
		return ErrOutOfTurn
	}
	if pass {
		return nil
	}

	if amount < MinBid {
		return fmt.Errorf("%w: minimum bid is %d", ErrInvalidBidAmount, MinBid)
	}
	if amount > MaxBid {
		return fmt.Errorf("%w: maximum bid is %d", ErrInvalidBidAmount, MaxBid)
	}
	if amount != MaxBid && amount%BidStep != 0 {
		return fmt.Errorf("%w: bid must be a multiple of %d", ErrInvalidBidAmount, BidStep)
	}
	if high := g.highestBid(); high > 0 && amount <= high {
		return fmt.Errorf("%w: must exceed current bid of %d", ErrInvalidBidAmount, high)
	}

	is200Plus := amount >= specialBidFloor
	openFor200 := is200Plus && !g.any200PlusBid()

	// A seat that already acted re-enters only with the first 200+ bid.
	if g.hasBidOrPassed(seat) && !openFor200 {
		return fmt.Errorf("%w: seat %d has already bid or passed", ErrBiddingClosed, seat)
	}

	// No raising your own standing bid unless someone overbid you.
	myHighest := 0
	for _, b := range g.Bids {
		if b.Seat == seat && !b.Pass && b.Amount > myHighest {
			myHighest = b.Amount
		}
	}
	if myHighest > 0 {
		overbid := false
		for _, b := range g.Bids {
			if b.Seat != seat && !b.Pass && b.Amount > myHighest {
				overbid = true
			}
		}
		if !overbid {
			return fmt.Errorf("%w: cannot raise your own bid", ErrInvalidBidAmount)
		}
	}

	// 4p: overbidding the partner needs an opponent overbid in between, or
	// the first 200+ bid.
	if pa, ok := g.partnerBidAmount(seat); ok && amount > pa {
		partner := g.PartnerSeat(seat)
		opponentOverbid := false
		for _, b := range g.Bids {
			if !b.Pass && b.Amount > pa && b.Seat != seat && b.Seat != partner {
				opponentOverbid = true
			}
		}
		if !opponentOverbid && !openFor200 {
			return fmt.Errorf("%w: cannot overbid your partner", ErrInvalidBidAmount)
		}
	}

	return nil
}

// placeBid records a validated bid or pass and advances the round.
func (g *Game) placeBid(seat, amount int, pass bool) *Result {
	bid := Bid{Seat: seat, Amount: amount, Pass: pass}
	g.Bids = append(g.Bids, bid)
	if !pass {
		g.CurrentBid = &bid
	}
	return g.advanceBidding()
}

func (g *Game) advanceBidding() *Result {
	current := g.BidTurnSeat
	for range g.Players {
		current = g.NextSeat(current)
		if g.hasBidOrPassed(current) {
			continue
		}
		g.BidTurnSeat = current
		return &Result{NextBidder: &current}
	}
	return g.concludeBidding()
}

func (g *Game) concludeBidding() *Result {
	if g.CurrentBid == nil {
		// Everyone passed: the dealer is forced to open at the minimum.
		forced := Bid{Seat: g.DealerSeat, Amount: MinBid}
		g.Bids = append(g.Bids, forced)
		g.CurrentBid = &forced
	}
	g.TrumperSeat = g.CurrentBid.Seat
	g.BidTurnSeat = noSeat
	g.Phase = PhaseTrumpSelection
	trumper, amount := g.TrumperSeat, g.CurrentBid.Amount
	return &Result{
		BiddingComplete: true,
		TrumperSeat:     &trumper,
		BidAmount:       &amount,
	}
}

// ScoringPoints returns the (win, lose) score payout for a bid amount.
func ScoringPoints(bid int) (win, lose int) {
	switch {
	case bid == MaxBid:
		return 10, 7
	case bid >= specialBidFloor:
		return 6, 5
	default:
		return 5, 3
	}
}
