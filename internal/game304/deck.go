package game304

import "math/rand"

// NewDeck returns the 32-card deck used by 304.
func NewDeck() []Card {
	deck := make([]Card, 0, 32)
	for _, s := range suits {
		for _, r := range ranks {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// Shuffle permutes the deck in place using the supplied source, so deals are
// reproducible under a seeded rng.
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// dealBatches gives the per-round batch sizes for each mode. 3p and 4p hands
// hold 8 cards; 2p hands hold 4 with the rest forming the draw pile.
var dealBatches = map[int][]int{
	2: {4},
	3: {4, 4},
	4: {4, 4},
}

// deal shuffles a fresh deck and distributes it for the current hand,
// starting left of the dealer. Whatever is not dealt becomes the center pile.
func (g *Game) deal(rng *rand.Rand) {
	deck := NewDeck()
	Shuffle(deck, rng)

	for _, p := range g.Players {
		p.Hand = nil
	}
	g.CenterPile = nil

	order := make([]int, 0, len(g.Players))
	seat := g.DealerSeat
	for range g.Players {
		seat = g.NextSeat(seat)
		order = append(order, seat)
	}

	idx := 0
	for _, batch := range dealBatches[g.Mode] {
		for _, s := range order {
			p := g.PlayerBySeat(s)
			p.Hand = append(p.Hand, deck[idx:idx+batch]...)
			idx += batch
		}
	}
	g.CenterPile = append(g.CenterPile, deck[idx:]...)
}
