package game304

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
)

// Phase is the session lifecycle phase.
type Phase string

const (
	PhaseWaiting        Phase = "WAITING"
	PhaseDealing        Phase = "DEALING"
	PhaseBidding        Phase = "BIDDING"
	PhaseTrumpSelection Phase = "TRUMP_SELECTION"
	PhaseCardExchange   Phase = "CARD_EXCHANGE" // 3-player only
	PhasePlaying        Phase = "PLAYING"
	PhaseScoring        Phase = "SCORING"
)

const noSeat = -1

// Player is one seat in the game.
type Player struct {
	ID   string `json:"playerId"`
	Name string `json:"name"`
	Seat int    `json:"seat"`
	Hand []Card `json:"hand"`
}

// Bid is one entry in the bidding history. Pass marks a pass; Amount is
// meaningful only when Pass is false.
type Bid struct {
	Seat   int  `json:"seat"`
	Amount int  `json:"amount"`
	Pass   bool `json:"pass,omitempty"`
}

// TrickCard is one card played into the trick in flight.
type TrickCard struct {
	Seat int  `json:"seat"`
	Card Card `json:"card"`
}

// Rules holds the policy knobs the rules text leaves open.
type Rules struct {
	// CutRequiresVoid requires an ask_trump requester to hold no card of
	// the lead suit. The authoritative rules are unclear here; the original
	// table rule enforces the check.
	CutRequiresVoid bool `json:"cutRequiresVoid"`
}

// Game is the canonical session state. All mutation goes through Apply and
// HandleTimeout; callers serialize access externally (one session, one lock).
type Game struct {
	Code       string    `json:"code"`
	Mode       int       `json:"mode"`
	Phase      Phase     `json:"phase"`
	Players    []*Player `json:"players"`
	DealerSeat int       `json:"dealerSeat"`
	Rules      Rules     `json:"rules"`

	CenterPile []Card `json:"centerPile"`

	Bids        []Bid `json:"bids"`
	CurrentBid  *Bid  `json:"currentBid,omitempty"`
	BidTurnSeat int   `json:"bidTurnSeat"`

	TrumperSeat   int   `json:"trumperSeat"`
	TrumpSuit     Suit  `json:"trumpSuit,omitempty"`
	TrumpCard     *Card `json:"trumpCard,omitempty"`
	TrumpRevealed bool  `json:"trumpRevealed"`
	ExchangeDone  bool  `json:"exchangeDone"`

	CurrentTrick []TrickCard    `json:"currentTrick"`
	TricksWon    map[int][]Card `json:"tricksWon"`
	TurnSeat     int            `json:"turnSeat"`
	LeadSeat     int            `json:"leadSeat"`
	TrickNumber  int            `json:"trickNumber"`

	Scores      map[int]int `json:"scores"`
	BonusTokens map[int]int `json:"bonusTokens"`
	GamesPlayed int         `json:"gamesPlayed"`

	// Seq increments on every accepted mutation. Timeout callbacks carry
	// the seq they were armed with and are dropped when it no longer
	// matches.
	Seq int `json:"seq"`
}

// New creates an empty game in the waiting phase.
func New(code string, mode int) (*Game, error) {
	if mode < 2 || mode > 4 {
		return nil, ErrInvalidMode
	}
	g := &Game{
		Code:        code,
		Mode:        mode,
		Phase:       PhaseWaiting,
		Rules:       Rules{CutRequiresVoid: true},
		BidTurnSeat: noSeat,
		TrumperSeat: noSeat,
		TurnSeat:    noSeat,
		LeadSeat:    noSeat,
		TricksWon:   make(map[int][]Card),
		Scores:      make(map[int]int),
		BonusTokens: make(map[int]int),
	}
	for i := 0; i < mode; i++ {
		g.Scores[i] = 0
		g.BonusTokens[i] = 0
	}
	return g, nil
}

// AddPlayer seats a new player, assigning the lowest free seat.
func (g *Game) AddPlayer(name string) (*Player, error) {
	if g.Phase != PhaseWaiting {
		return nil, ErrInvalidPhase
	}
	if len(g.Players) >= g.Mode {
		return nil, ErrInvalidPhase
	}
	taken := make(map[int]bool)
	for _, p := range g.Players {
		taken[p.Seat] = true
	}
	seat := 0
	for taken[seat] {
		seat++
	}
	p := &Player{
		ID:   uuid.NewString(),
		Name: name,
		Seat: seat,
	}
	g.Players = append(g.Players, p)
	return p, nil
}

// PlayerBySeat returns the player in the given seat, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	for _, p := range g.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// PlayerByID returns the player with the given identity, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) seats() []int {
	seats := make([]int, 0, len(g.Players))
	for _, p := range g.Players {
		seats = append(seats, p.Seat)
	}
	sort.Ints(seats)
	return seats
}

// NextSeat returns the next occupied seat clockwise.
func (g *Game) NextSeat(seat int) int {
	seats := g.seats()
	for i, s := range seats {
		if s == seat {
			return seats[(i+1)%len(seats)]
		}
	}
	return seats[0]
}

// TeamSeats returns the seats on the same team as seat. Teams are fixed
// pairs in 4p, trumper-versus-rest in 3p, and singletons in 2p. Recomputed
// rather than stored so 3p teams track the current trumper.
func (g *Game) TeamSeats(seat int) []int {
	if g.Mode == 4 {
		return []int{seat, (seat + 2) % 4}
	}
	if g.Mode == 3 && g.TrumperSeat != noSeat && seat != g.TrumperSeat {
		team := make([]int, 0, 2)
		for s := 0; s < 3; s++ {
			if s != g.TrumperSeat {
				team = append(team, s)
			}
		}
		return team
	}
	return []int{seat}
}

// TrumperTeamSeats returns the trumper's team, or nil before bidding closes.
func (g *Game) TrumperTeamSeats() []int {
	if g.TrumperSeat == noSeat {
		return nil
	}
	return g.TeamSeats(g.TrumperSeat)
}

// OpposingTeamSeats returns the seats opposing the trumper.
func (g *Game) OpposingTeamSeats() []int {
	if g.TrumperSeat == noSeat {
		return nil
	}
	trumper := make(map[int]bool)
	for _, s := range g.TrumperTeamSeats() {
		trumper[s] = true
	}
	var out []int
	for _, s := range g.seats() {
		if !trumper[s] {
			out = append(out, s)
		}
	}
	return out
}

func (g *Game) onTrumperTeam(seat int) bool {
	for _, s := range g.TrumperTeamSeats() {
		if s == seat {
			return true
		}
	}
	return false
}

// Full reports whether every seat is taken.
func (g *Game) Full() bool { return len(g.Players) == g.Mode }

func (g *Game) MarshalJSON() ([]byte, error) {
	type alias Game
	return json.Marshal((*alias)(g))
}

func (g *Game) UnmarshalJSON(data []byte) error {
	type alias Game
	return json.Unmarshal(data, (*alias)(g))
}
