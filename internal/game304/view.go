package game304

// PublicPlayer is the seat info every viewer may see.
type PublicPlayer struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
}

// BidView is a bid as shown to viewers. Amount is nil for a pass.
type BidView struct {
	Seat   int  `json:"seat"`
	Amount *int `json:"amount"`
}

// View is the redacted state snapshot for one viewer. It is derived from
// the canonical state on every broadcast; there is no per-player stored
// copy to drift.
type View struct {
	GameCode   string         `json:"game_code"`
	Mode       int            `json:"mode"`
	Phase      Phase          `json:"phase"`
	Seq        int            `json:"seq"`
	Players    []PublicPlayer `json:"players"`
	DealerSeat int            `json:"dealer_seat"`
	YourSeat   int            `json:"your_seat"`
	YourHand   []string       `json:"your_hand"`

	Bids        []BidView `json:"bids"`
	CurrentBid  *BidView  `json:"current_bid"`
	BidTurnSeat *int      `json:"bid_turn_seat,omitempty"`

	TrumperSeat   *int   `json:"trumper_seat"`
	TrumpRevealed bool   `json:"trump_revealed"`
	TrumpSuit     Suit   `json:"trump_suit,omitempty"`
	TrumpCard     string `json:"trump_card,omitempty"`

	CurrentTrick []TrickCardView `json:"current_trick"`
	TurnSeat     *int            `json:"turn_seat"`
	TrickNumber  int             `json:"trick_number"`
	ValidCards   []string        `json:"valid_cards,omitempty"`

	Scores           map[int]int    `json:"scores"`
	BonusTokens      map[int]int    `json:"bonus_tokens"`
	GamesPlayed      int            `json:"games_played"`
	TeamTricksPoints map[string]int `json:"team_tricks_points"`
	CenterPileCount  *int           `json:"center_pile_count,omitempty"`
}

// TrickCardView is a played card as shown to viewers.
type TrickCardView struct {
	Seat int    `json:"seat"`
	Card string `json:"card"`
}

// View projects the canonical state for one viewer seat. Unrevealed trump
// is visible only to the trumper; other hands are reduced to counts via the
// trick and score fields.
func (g *Game) View(seat int) View {
	v := View{
		GameCode:      g.Code,
		Mode:          g.Mode,
		Phase:         g.Phase,
		Seq:           g.Seq,
		DealerSeat:    g.DealerSeat,
		YourSeat:      seat,
		YourHand:      []string{},
		Bids:          make([]BidView, 0, len(g.Bids)),
		TrumpRevealed: g.TrumpRevealed,
		CurrentTrick:  make([]TrickCardView, 0, len(g.CurrentTrick)),
		TrickNumber:   g.TrickNumber,
		Scores:        copyCounts(g.Scores),
		BonusTokens:   copyCounts(g.BonusTokens),
		GamesPlayed:   g.GamesPlayed,
	}

	for _, p := range g.Players {
		v.Players = append(v.Players, PublicPlayer{
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
		})
	}
	if p := g.PlayerBySeat(seat); p != nil {
		for _, c := range p.Hand {
			v.YourHand = append(v.YourHand, c.ID())
		}
	}

	for _, b := range g.Bids {
		v.Bids = append(v.Bids, bidView(b))
	}
	if g.CurrentBid != nil {
		bv := bidView(*g.CurrentBid)
		v.CurrentBid = &bv
	}
	if g.Phase == PhaseBidding && g.BidTurnSeat != noSeat {
		v.BidTurnSeat = intPtr(g.BidTurnSeat)
	}

	if g.TrumperSeat != noSeat {
		v.TrumperSeat = intPtr(g.TrumperSeat)
	}
	if g.TrumpRevealed || seat == g.TrumperSeat {
		v.TrumpSuit = g.TrumpSuit
		if g.TrumpCard != nil {
			v.TrumpCard = g.TrumpCard.ID()
		}
	}

	for _, tc := range g.CurrentTrick {
		v.CurrentTrick = append(v.CurrentTrick, TrickCardView{Seat: tc.Seat, Card: tc.Card.ID()})
	}
	if g.TurnSeat != noSeat {
		v.TurnSeat = intPtr(g.TurnSeat)
	}
	if g.Phase == PhasePlaying && g.TurnSeat == seat {
		for _, c := range g.ValidCards(seat) {
			v.ValidCards = append(v.ValidCards, c.ID())
		}
	}

	v.TeamTricksPoints = map[string]int{}
	for s, cards := range g.TricksWon {
		key := "opposing"
		if g.onTrumperTeam(s) {
			key = "trumper"
		}
		for _, c := range cards {
			v.TeamTricksPoints[key] += c.Points()
		}
	}

	if g.Mode == 2 || g.Mode == 3 {
		v.CenterPileCount = intPtr(len(g.CenterPile))
	}
	return v
}

func bidView(b Bid) BidView {
	bv := BidView{Seat: b.Seat}
	if !b.Pass {
		amount := b.Amount
		bv.Amount = &amount
	}
	return bv
}

func intPtr(i int) *int { return &i }

// copyCounts detaches a per-seat counter map from the canonical state so a
// view stays a snapshot while the game mutates underneath it.
func copyCounts(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for seat, n := range m {
		out[seat] = n
	}
	return out
}
