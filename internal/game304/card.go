package game304

import (
	"fmt"
	"strings"
)

// Suit is a card suit, stored in its wire form.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Rank is a card rank, stored in its wire form.
type Rank string

const (
	Seven Rank = "7"
	Eight Rank = "8"
	Queen Rank = "Q"
	King  Rank = "K"
	Ten   Rank = "10"
	Ace   Rank = "A"
	Nine  Rank = "9"
	Jack  Rank = "J"
)

var suits = []Suit{Hearts, Diamonds, Clubs, Spades}

var ranks = []Rank{Seven, Eight, Queen, King, Ten, Ace, Nine, Jack}

// rankPoints gives the scoring value of each rank. The full deck totals 304.
var rankPoints = map[Rank]int{
	Seven: 0,
	Eight: 0,
	Queen: 2,
	King:  3,
	Ten:   10,
	Ace:   11,
	Nine:  20,
	Jack:  30,
}

// rankStrength orders ranks for trick resolution. It agrees with point order
// except that 8 beats 7 (both worth zero).
var rankStrength = map[Rank]int{
	Seven: 0,
	Eight: 1,
	Queen: 2,
	King:  3,
	Ten:   4,
	Ace:   5,
	Nine:  6,
	Jack:  7,
}

// Card is an immutable card identity.
type Card struct {
	Rank Rank
	Suit Suit
}

// Points returns the card's scoring value.
func (c Card) Points() int { return rankPoints[c.Rank] }

func (c Card) strength() int { return rankStrength[c.Rank] }

// ID returns the wire identity, e.g. "J_hearts".
func (c Card) ID() string { return string(c.Rank) + "_" + string(c.Suit) }

func (c Card) String() string { return c.ID() }

// MarshalText encodes the card as its wire id, so hands and tricks
// serialize as plain string arrays.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}

func (c *Card) UnmarshalText(data []byte) error {
	parsed, err := ParseCard(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a wire id back into a Card.
func ParseCard(id string) (Card, error) {
	i := strings.LastIndex(id, "_")
	if i < 0 {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	rank, suit := Rank(id[:i]), Suit(id[i+1:])
	if _, ok := rankPoints[rank]; !ok {
		return Card{}, fmt.Errorf("unknown rank in card id %q", id)
	}
	switch suit {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, fmt.Errorf("unknown suit in card id %q", id)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a list of wire ids.
func ParseCards(ids []string) ([]Card, error) {
	cards := make([]Card, 0, len(ids))
	for _, id := range ids {
		c, err := ParseCard(id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Beats reports whether c wins over other given the trick context. Trump only
// participates once revealed; otherwise the lead suit decides.
func (c Card) Beats(other Card, trumpSuit Suit, trumpRevealed bool, leadSuit Suit) bool {
	if trumpRevealed && trumpSuit != "" {
		if c.Suit == trumpSuit && other.Suit != trumpSuit {
			return true
		}
		if c.Suit != trumpSuit && other.Suit == trumpSuit {
			return false
		}
	}
	if c.Suit == other.Suit {
		return c.strength() > other.strength()
	}
	if other.Suit == leadSuit {
		return false
	}
	return c.Suit == leadSuit
}
