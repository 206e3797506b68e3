package game304

import "math/rand"

// Action is the closed set of inbound player actions. Each variant carries
// its own payload; Apply matches them exhaustively.
type Action interface {
	isAction()
}

// StartGame begins the first hand from WAITING, and the next hand from
// SCORING.
type StartGame struct{}

// PlaceBid bids an amount on the current bidding turn.
type PlaceBid struct {
	Amount int
}

// PassBid passes on the current bidding turn.
type PassBid struct{}

// SelectTrump is the trumper-elect's secret suit and face-down card choice.
type SelectTrump struct {
	Suit Suit
	Card Card
}

// ExchangeCards swaps hand cards with the center pile (3p only).
type ExchangeCards struct {
	Cards []Card
}

// SkipExchange declines the 3p card exchange.
type SkipExchange struct{}

// PlayCard plays a card into the trick in flight.
type PlayCard struct {
	Card Card
}

// AskTrump is a non-trumper's cut request forcing reveal.
type AskTrump struct{}

// RevealTrump is the trumper's voluntary reveal.
type RevealTrump struct{}

func (StartGame) isAction()     {}
func (PlaceBid) isAction()      {}
func (PassBid) isAction()       {}
func (SelectTrump) isAction()   {}
func (ExchangeCards) isAction() {}
func (SkipExchange) isAction()  {}
func (PlayCard) isAction()      {}
func (AskTrump) isAction()      {}
func (RevealTrump) isAction()   {}

// Draw is one card drawn from the 2p center pile after a trick.
type Draw struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Result describes what an accepted action did, for event broadcasting.
// Only the fields relevant to the action are set.
type Result struct {
	NextBidder      *int `json:"next_bidder,omitempty"`
	BiddingComplete bool `json:"bidding_complete,omitempty"`
	TrumperSeat     *int `json:"trumper_seat,omitempty"`
	BidAmount       *int `json:"bid,omitempty"`

	TrumpSelected bool  `json:"trump_selected,omitempty"`
	ExchangeDone  bool  `json:"exchange_done,omitempty"`
	TrumpRevealed bool  `json:"trump_revealed,omitempty"`
	TrumpSuit     Suit  `json:"suit,omitempty"`
	TrumpCard     *Card `json:"trump_card,omitempty"`

	CardPlayed  *Card  `json:"card_played,omitempty"`
	Seat        *int   `json:"seat,omitempty"`
	IsCut       bool   `json:"is_cut,omitempty"`
	TrickWon    bool   `json:"trick_won,omitempty"`
	WinnerSeat  *int   `json:"winner_seat,omitempty"`
	TrickPoints *int   `json:"trick_points,omitempty"`
	Draws       []Draw `json:"draws,omitempty"`
	NextTurn    *int   `json:"next_turn,omitempty"`

	HandOver       bool  `json:"hand_over,omitempty"`
	Spoilt         bool  `json:"spoilt,omitempty"`
	TrumperWon     *bool `json:"trumper_won,omitempty"`
	TrumperPoints  *int  `json:"trumper_points,omitempty"`
	OpposingPoints *int  `json:"opposing_points,omitempty"`
	PointsAwarded  *int  `json:"points_awarded,omitempty"`
	Forfeited      *bool `json:"forfeited,omitempty"`
	OffenderSeat   *int  `json:"offender_seat,omitempty"`

	Timeout  bool `json:"timeout,omitempty"`
	AutoPass bool `json:"auto_pass,omitempty"`
}

// Apply dispatches one action for the given seat. It is the only mutation
// entry point besides HandleTimeout and AdjudicateIllegalPlay: on success
// the sequence number advances and the result describes the transition; on
// error the state is untouched.
func (g *Game) Apply(seat int, action Action, rng *rand.Rand) (*Result, error) {
	var res *Result
	var err error

	switch a := action.(type) {
	case StartGame:
		res, err = g.applyStartGame(rng)
	case PlaceBid:
		if err = g.validateBid(seat, a.Amount, false); err == nil {
			res = g.placeBid(seat, a.Amount, false)
		}
	case PassBid:
		if err = g.validateBid(seat, 0, true); err == nil {
			res = g.placeBid(seat, 0, true)
		}
	case SelectTrump:
		res, err = g.selectTrump(seat, a.Suit, a.Card)
	case ExchangeCards:
		res, err = g.exchangeCards(seat, a.Cards)
	case SkipExchange:
		res, err = g.skipExchange(seat)
	case PlayCard:
		res, err = g.playCard(seat, a.Card)
	case AskTrump:
		res, err = g.askTrump(seat)
	case RevealTrump:
		res, err = g.voluntaryReveal(seat)
	}
	if err != nil {
		return nil, err
	}

	g.Seq++
	if res.Spoilt {
		// Spoilt trump voids the hand: no scores, immediate redeal with
		// the dealer rotated.
		g.nextHand(rng)
	}
	return res, nil
}

func (g *Game) applyStartGame(rng *rand.Rand) (*Result, error) {
	switch g.Phase {
	case PhaseWaiting:
		if !g.Full() {
			return nil, ErrInvalidPhase
		}
		seats := g.seats()
		g.DealerSeat = seats[rng.Intn(len(seats))]
		g.startHand(rng)
		return &Result{}, nil
	case PhaseScoring:
		g.nextHand(rng)
		return &Result{}, nil
	default:
		return nil, ErrInvalidPhase
	}
}

// ApplyAt applies an action tagged with the sequence number it was issued
// against. Re-delivery of an already-applied sequence number is rejected as
// stale and leaves the state untouched, making redelivery a no-op.
func (g *Game) ApplyAt(seq, seat int, action Action, rng *rand.Rand) (*Result, error) {
	if seq != g.Seq {
		return nil, ErrStaleAction
	}
	return g.Apply(seat, action, rng)
}

// HandleTimeout applies a fired turn timer. The armed seq guards against
// races with in-time human action: a mismatch means the turn already
// advanced and the signal is stale.
func (g *Game) HandleTimeout(seat, armedSeq int, rng *rand.Rand) (*Result, error) {
	if armedSeq != g.Seq {
		return nil, ErrStaleAction
	}

	switch g.Phase {
	case PhaseBidding:
		if g.BidTurnSeat != seat {
			return nil, ErrStaleAction
		}
		// Pass is the only safe default for a silent bidder.
		res := g.placeBid(seat, 0, true)
		g.Seq++
		res.Timeout = true
		res.AutoPass = true
		res.Seat = &seat
		return res, nil

	case PhasePlaying:
		if g.TurnSeat != seat {
			return nil, ErrStaleAction
		}
		res, err := g.autoPlay(seat, rng)
		if err != nil {
			return nil, err
		}
		g.Seq++
		if res.Spoilt {
			g.nextHand(rng)
		}
		res.Timeout = true
		res.Seat = &seat
		return res, nil

	default:
		return nil, ErrStaleAction
	}
}
