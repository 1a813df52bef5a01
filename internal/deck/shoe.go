package deck

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/tomboybathwater/chaosBattleJack/internal/randutil"
)

// Observer receives shoe lifecycle notifications. The shoe never depends on
// the game-level event bus; the round host adapts these callbacks onto it.
type Observer interface {
	// ReshuffleNeeded fires when a deal finds the draw pile at or below the
	// reshuffle threshold, before the discard pile is folded back in.
	ReshuffleNeeded(remaining int)
	// Shuffled fires after any shuffle, including the automatic reshuffle.
	Shuffled(remaining int)
}

// Shoe is the live draw pile plus its discard pile for one table. It owns a
// seeded generator so that two shoes built with the same seed deal identical
// sequences; remote participants resynchronize from the seed alone rather
// than from a transmitted card list.
type Shoe struct {
	cards     []*Card
	discards  []*Card
	rng       *rand.Rand
	seed      int64
	numDecks  int
	numChaos  int
	threshold int
	total     int
	observers []Observer
}

// NewShoe builds an unshuffled shoe from numDecks standard 52-card sets
// followed by numChaos chaos cards, with a generator derived from seed.
// Callers shuffle explicitly before the first deal.
func NewShoe(seed int64, numDecks, numChaos, reshuffleThreshold int) *Shoe {
	s := &Shoe{
		rng:       randutil.New(seed),
		seed:      seed,
		numDecks:  numDecks,
		numChaos:  numChaos,
		threshold: reshuffleThreshold,
	}
	s.build()
	return s
}

// build composes the draw pile in fixed suit/rank enumeration order. No
// shuffling happens here; determinism of the composition is what lets two
// hosts agree on the pre-shuffle state.
func (s *Shoe) build() {
	s.cards = make([]*Card, 0, s.numDecks*52+s.numChaos)
	for d := 0; d < s.numDecks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	for i := 0; i < s.numChaos; i++ {
		s.cards = append(s.cards, NewChaosCard())
	}
	s.discards = s.discards[:0]
	s.total = len(s.cards)
}

// AddObserver registers an observer for shuffle notifications.
func (s *Shoe) AddObserver(o Observer) {
	s.observers = append(s.observers, o)
}

// Shuffle permutes the draw pile in place with Fisher–Yates using the shoe's
// own generator, then notifies observers.
func (s *Shoe) Shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	for _, o := range s.observers {
		o.Shuffled(len(s.cards))
	}
}

// Deal removes and returns the top card with its face state set. If the draw
// pile is at or below the reshuffle threshold the discard pile is folded back
// in and shuffled first. A shoe that is still empty after that reshuffle has
// lost cards somewhere, which breaks conservation; that is a defect, not a
// recoverable condition, so it panics.
func (s *Shoe) Deal(faceUp bool) *Card {
	if len(s.cards) <= s.threshold {
		s.reshuffle()
	}
	if len(s.cards) == 0 {
		panic(fmt.Sprintf("shoe empty after reshuffle: total=%d discarded=%d", s.total, len(s.discards)))
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	card.SetFaceUp(faceUp)
	return card
}

// reshuffle moves every discarded card back into the draw pile and shuffles.
func (s *Shoe) reshuffle() {
	for _, o := range s.observers {
		o.ReshuffleNeeded(len(s.cards))
	}
	s.cards = append(s.cards, s.discards...)
	s.discards = s.discards[:0]
	s.Shuffle()
}

// Discard appends a card to the discard pile.
func (s *Shoe) Discard(card *Card) {
	s.discards = append(s.discards, card)
}

// DiscardMany appends cards to the discard pile in order.
func (s *Shoe) DiscardMany(cards []*Card) {
	s.discards = append(s.discards, cards...)
}

// SetSeedAndRebuild re-derives the whole shoe from scratch: fresh generator,
// fresh composition, then a shuffle, so the permutation is fully determined
// by the new seed. This is the resync path for distributed participants.
func (s *Shoe) SetSeedAndRebuild(seed int64) {
	s.rng = randutil.New(seed)
	s.seed = seed
	s.build()
	s.Shuffle()
}

// Remaining returns the number of cards left in the draw pile.
func (s *Shoe) Remaining() int { return len(s.cards) }

// Discarded returns the number of cards in the discard pile.
func (s *Shoe) Discarded() int { return len(s.discards) }

// Total returns the card count fixed at build time. Remaining()+Discarded()
// equals Total() for every card currently conserved by the shoe; cards out in
// hands are owed back via Discard at round end.
func (s *Shoe) Total() int { return s.total }

// Seed returns the seed the current composition was derived from.
func (s *Shoe) Seed() int64 { return s.seed }

// NeedsReshuffle reports whether the next deal will trigger a reshuffle.
func (s *Shoe) NeedsReshuffle() bool { return len(s.cards) <= s.threshold }

// Cards exposes the draw pile for the authoritative host. Non-host consumers
// must use the public summary snapshot, which omits card contents.
func (s *Shoe) Cards() []*Card { return s.cards }

// DiscardPile exposes the discard pile for the authoritative host.
func (s *Shoe) DiscardPile() []*Card { return s.discards }

// ResetChaosValues zeroes the rolled value of every chaos card in the draw
// and discard piles. Part of the unconditional per-round sweep; it never
// touches the chaos meter.
func (s *Shoe) ResetChaosValues() {
	for _, c := range s.cards {
		c.ResetChaosValue()
	}
	for _, c := range s.discards {
		c.ResetChaosValue()
	}
}
