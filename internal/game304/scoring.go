package game304

import "math/rand"

// scoreHand closes out a completed hand: a spoilt trump voids it and
// redeals, otherwise the bid tier decides the payout.
func (g *Game) scoreHand(res *Result) {
	g.Phase = PhaseScoring

	if g.spoiltTrump() {
		res.Spoilt = true
		return
	}

	trumperPts, opposingPts := g.teamPoints()
	bid := g.CurrentBid.Amount
	win, lose := ScoringPoints(bid)
	trumperWon := trumperPts >= bid

	awarded := lose
	awardedTo := g.OpposingTeamSeats()
	if trumperWon {
		awarded = win
		awardedTo = g.TrumperTeamSeats()
	}
	for _, seat := range awardedTo {
		g.Scores[seat] += awarded
	}
	g.GamesPlayed++

	res.TrumperWon = &trumperWon
	res.TrumperPoints = &trumperPts
	res.OpposingPoints = &opposingPts
	res.BidAmount = &bid
	res.PointsAwarded = &awarded
}

// AdjudicateIllegalPlay forfeits the hand after a committed illegal card:
// every seat opposing the offender receives the full tier payout plus two
// bonus tokens, and the hand ends without further tricks.
func (g *Game) AdjudicateIllegalPlay(offender int) (*Result, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	bid := g.CurrentBid.Amount
	win, _ := ScoringPoints(bid)

	offenderTeam := make(map[int]bool)
	for _, s := range g.TeamSeats(offender) {
		offenderTeam[s] = true
	}
	var winners []int
	for _, s := range g.seats() {
		if !offenderTeam[s] {
			winners = append(winners, s)
		}
	}
	for _, s := range winners {
		g.Scores[s] += win
		g.BonusTokens[s] += 2
	}
	g.Phase = PhaseScoring
	g.GamesPlayed++
	g.Seq++

	forfeited := true
	return &Result{
		HandOver:      true,
		Forfeited:     &forfeited,
		OffenderSeat:  &offender,
		PointsAwarded: &win,
	}, nil
}

// startHand deals a fresh hand and opens bidding. The dealer seat must
// already be set.
func (g *Game) startHand(rng *rand.Rand) {
	g.resetHand()
	g.Phase = PhaseDealing
	g.deal(rng)
	g.startBidding()
}

// nextHand rotates the dealer and starts the following hand. Used both for
// the normal SCORING -> DEALING loop and for spoilt-trump redeals.
func (g *Game) nextHand(rng *rand.Rand) {
	g.DealerSeat = g.NextSeat(g.DealerSeat)
	g.startHand(rng)
}

func (g *Game) resetHand() {
	g.Bids = nil
	g.CurrentBid = nil
	g.BidTurnSeat = noSeat
	g.TrumperSeat = noSeat
	g.TrumpSuit = ""
	g.TrumpCard = nil
	g.TrumpRevealed = false
	g.ExchangeDone = false
	g.CurrentTrick = nil
	g.TricksWon = make(map[int][]Card)
	g.TurnSeat = noSeat
	g.LeadSeat = noSeat
	g.TrickNumber = 0
	g.CenterPile = nil
}
