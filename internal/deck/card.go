package deck

import (
	"errors"
	"fmt"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Two:
		return "2"
	case Three:
		return "3"
	case Four:
		return "4"
	case Five:
		return "5"
	case Six:
		return "6"
	case Seven:
		return "7"
	case Eight:
		return "8"
	case Nine:
		return "9"
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return "?"
	}
}

// Kind distinguishes the two card variants. Modeling chaos cards as a tagged
// variant keeps invalid suit/rank combinations unrepresentable.
type Kind int

const (
	Standard Kind = iota
	Chaos
)

// ErrNotChaosCard is returned when a chaos-only operation is applied to a
// standard card. The operation is a no-op.
var ErrNotChaosCard = errors.New("card is not a chaos card")

// Card is a single card in the shoe. Identity (Kind, Suit, Rank) is fixed at
// creation; face orientation and the rolled chaos value are mutable, so cards
// are handled by pointer and moved between shoe, hand and discard collections
// rather than copied.
type Card struct {
	kind       Kind
	suit       Suit
	rank       Rank
	faceUp     bool
	chaosValue int
}

// NewCard creates a standard card, dealt face down by default.
func NewCard(suit Suit, rank Rank) *Card {
	return &Card{kind: Standard, suit: suit, rank: rank}
}

// NewChaosCard creates a chaos card. Chaos cards are always face up and carry
// a rolled value of 0 until the chaos engine rolls for them.
func NewChaosCard() *Card {
	return &Card{kind: Chaos, faceUp: true}
}

// Kind returns the card variant.
func (c *Card) Kind() Kind { return c.kind }

// Suit returns the suit of a standard card. Meaningless for chaos cards.
func (c *Card) Suit() Suit { return c.suit }

// Rank returns the rank of a standard card. Meaningless for chaos cards.
func (c *Card) Rank() Rank { return c.rank }

// IsChaos returns true if the card is a chaos card.
func (c *Card) IsChaos() bool { return c.kind == Chaos }

// FaceUp returns whether the card is currently face up.
func (c *Card) FaceUp() bool { return c.faceUp }

// FlipUp turns the card face up.
func (c *Card) FlipUp() { c.faceUp = true }

// FlipDown turns the card face down. Chaos cards are always visible, so
// flipping one down is a no-op.
func (c *Card) FlipDown() {
	if c.kind == Chaos {
		return
	}
	c.faceUp = false
}

// SetFaceUp sets the face orientation, honouring the chaos always-visible rule.
func (c *Card) SetFaceUp(up bool) {
	if up {
		c.FlipUp()
	} else {
		c.FlipDown()
	}
}

// Value returns the blackjack value of the card. Number cards score their
// rank, face cards score 10 and Aces score 11; the hand valuation decides
// whether an Ace collapses to 1. A chaos card scores its current rolled
// value, which is 0 until rolled.
func (c *Card) Value() int {
	if c.kind == Chaos {
		return c.chaosValue
	}
	switch {
	case c.rank == Ace:
		return 11
	case c.rank >= Ten:
		return 10
	default:
		return int(c.rank)
	}
}

// ChaosValue returns the current rolled value of a chaos card.
func (c *Card) ChaosValue() int { return c.chaosValue }

// SetChaosValue writes a rolled value onto a chaos card. Calling it on a
// standard card is recoverable misuse: the card is left untouched and
// ErrNotChaosCard is returned.
func (c *Card) SetChaosValue(v int) error {
	if c.kind != Chaos {
		return ErrNotChaosCard
	}
	c.chaosValue = v
	return nil
}

// ResetChaosValue zeroes the rolled value. No-op for standard cards; used by
// the per-round sweep that clears every chaos card in shoe, discard and hands.
func (c *Card) ResetChaosValue() {
	if c.kind == Chaos {
		c.chaosValue = 0
	}
}

// IsAce returns true if the card is a standard Ace.
func (c *Card) IsAce() bool {
	return c.kind == Standard && c.rank == Ace
}

// CanSplitWith reports whether two cards form a splittable pair: both must be
// standard cards of exactly matching rank. Face state and rolled values never
// participate in identity.
func (c *Card) CanSplitWith(other *Card) bool {
	if other == nil || c.kind == Chaos || other.kind == Chaos {
		return false
	}
	return c.rank == other.rank
}

// String returns a short representation, e.g. "A♠", "?" for a face-down card
// or "X3" for a chaos card rolled to 3.
func (c *Card) String() string {
	if !c.faceUp {
		return "?"
	}
	if c.kind == Chaos {
		return fmt.Sprintf("X%d", c.chaosValue)
	}
	return fmt.Sprintf("%s%s", c.rank, c.suit)
}
