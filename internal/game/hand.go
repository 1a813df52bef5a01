package game

import (
	"errors"
	"fmt"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// Status is the hand state machine. Active is the only non-terminal state;
// every other state is absorbing and disables auto-detection and actions.
type Status int

const (
	Active Status = iota
	Stood
	Busted
	Blackjack
	FiveCard
	TripleChaos
	Surrendered
)

// String returns the string representation of a status
func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Stood:
		return "stood"
	case Busted:
		return "busted"
	case Blackjack:
		return "blackjack"
	case FiveCard:
		return "five_card"
	case TripleChaos:
		return "triple_chaos"
	case Surrendered:
		return "surrendered"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool { return s != Active }

// ParseStatus converts a wire status name back into a Status.
func ParseStatus(name string) (Status, error) {
	for s := Active; s <= Surrendered; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return Active, fmt.Errorf("unknown hand status %q", name)
}

// Recoverable misuse errors. The offending operation is a no-op; the caller
// gets a diagnostic, never a hard failure.
var (
	ErrHandNotActive       = errors.New("hand is not active")
	ErrSurrenderDisabled   = errors.New("surrender is disabled by table rules")
	ErrInsuranceDisabled   = errors.New("insurance is disabled by table rules")
	ErrInsuranceTaken      = errors.New("insurance already taken")
	ErrInsuranceNotInitial = errors.New("insurance requires exactly two cards")
	ErrCannotSplit         = errors.New("hand cannot be split")
)

// Hand is an ordered card sequence owned by one participant slot, with its
// bet, optional insurance sub-bet and status state machine. Insertion order
// is significant: the first two cards are the initial cards.
type Hand struct {
	cards          []*deck.Card
	status         Status
	bet            int
	insuranceTaken bool
	insuranceBet   int
	splitDepth     int

	rules *rules.TableRules

	// onStatus, when set by the table host, observes every transition.
	onStatus func(old, new Status)
}

// NewHand creates an active hand with the given bet under the given rules.
func NewHand(t *rules.TableRules, bet int) *Hand {
	return &Hand{status: Active, bet: bet, rules: t}
}

// RestoreHand rebuilds a hand from snapshot state. No auto-detection runs;
// the transmitted status is authoritative.
func RestoreHand(t *rules.TableRules, cards []*deck.Card, status Status, bet int, insuranceTaken bool, insuranceBet, splitDepth int) *Hand {
	return &Hand{
		cards:          cards,
		status:         status,
		bet:            bet,
		insuranceTaken: insuranceTaken,
		insuranceBet:   insuranceBet,
		splitDepth:     splitDepth,
		rules:          t,
	}
}

// SetStatusObserver installs the transition callback used by the table host
// to publish StatusChangedEvents.
func (h *Hand) SetStatusObserver(fn func(old, new Status)) {
	h.onStatus = fn
}

func (h *Hand) transition(to Status) {
	old := h.status
	if old == to {
		return
	}
	h.status = to
	if h.onStatus != nil {
		h.onStatus(old, to)
	}
}

// AddCard appends a card and re-runs auto-detection. Cards can still be added
// to a terminal hand (the dealer keeps drawing after a player busts) but no
// further detection runs.
func (h *Hand) AddCard(c *deck.Card) {
	h.cards = append(h.cards, c)
	h.RefreshStatus()
}

// RefreshStatus re-runs terminal-state auto-detection. It runs after every
// card addition and after any chaos re-roll, in strict priority order with
// first match winning, and only while the hand is still active.
func (h *Hand) RefreshStatus() {
	if h.status != Active {
		return
	}
	switch {
	case h.Value() > 21:
		h.transition(Busted)
	case h.isBlackjack():
		h.transition(Blackjack)
	case len(h.cards) == 5 && h.rules.Features.FiveCard:
		h.transition(FiveCard)
	case h.ChaosCount() == 3 && h.rules.Features.TripleChaos:
		h.transition(TripleChaos)
	}
}

// Value computes the hand total: every Ace counts as 11, then collapses to 1
// one at a time while the total busts. The result is the minimal-bust
// representation.
func (h *Hand) Value() int {
	total := 0
	aces := 0
	for _, c := range h.cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsSoft reports whether the hand total relies on an Ace counted as 11. This
// is deliberately a single check against the raw all-aces-high sum rather
// than tracking soft aces through multiple reductions: a hand like {A,A,9}
// totals 21 but is not soft, because its raw sum already busts.
func (h *Hand) IsSoft() bool {
	total := 0
	hasAce := false
	for _, c := range h.cards {
		total += c.Value()
		if c.IsAce() {
			hasAce = true
		}
	}
	return hasAce && total <= 21
}

// isBlackjack checks a natural: exactly the two initial cards totalling 21
// with an Ace and a ten-valued card.
func (h *Hand) isBlackjack() bool {
	if len(h.cards) != 2 || h.Value() != 21 {
		return false
	}
	hasAce, hasTen := false, false
	for _, c := range h.cards {
		if c.IsAce() {
			hasAce = true
		} else if c.Value() == 10 {
			hasTen = true
		}
	}
	return hasAce && hasTen
}

// IsBlackjack reports whether the hand is a natural.
func (h *Hand) IsBlackjack() bool { return h.isBlackjack() }

// IsBusted reports whether the hand has busted.
func (h *Hand) IsBusted() bool { return h.status == Busted }

// ChaosCount returns the number of chaos cards in the hand.
func (h *Hand) ChaosCount() int {
	n := 0
	for _, c := range h.cards {
		if c.IsChaos() {
			n++
		}
	}
	return n
}

// Stand moves an active hand to Stood.
func (h *Hand) Stand() error {
	if h.status != Active {
		return ErrHandNotActive
	}
	h.transition(Stood)
	return nil
}

// Surrender moves an active hand to Surrendered when the feature is enabled.
func (h *Hand) Surrender() error {
	if !h.rules.Features.Surrender {
		return ErrSurrenderDisabled
	}
	if h.status != Active {
		return ErrHandNotActive
	}
	h.transition(Surrendered)
	return nil
}

// TakeInsurance places the insurance side bet at half the main bet, integer
// division. It requires an active hand holding exactly its two initial cards
// and has no effect on the state machine.
func (h *Hand) TakeInsurance() error {
	if !h.rules.Features.Insurance {
		return ErrInsuranceDisabled
	}
	if h.status != Active {
		return ErrHandNotActive
	}
	if len(h.cards) != 2 {
		return ErrInsuranceNotInitial
	}
	if h.insuranceTaken {
		return ErrInsuranceTaken
	}
	h.insuranceTaken = true
	h.insuranceBet = h.bet / 2
	return nil
}

// CanDoubleDown reports whether doubling is currently allowed: exactly two
// cards, active, and double-after-split honoured for split hands.
func (h *Hand) CanDoubleDown() bool {
	if h.status != Active || len(h.cards) != 2 {
		return false
	}
	if h.splitDepth > 0 && !h.rules.Features.DoubleAfterSplit {
		return false
	}
	return true
}

// DoubleBet doubles the stake as part of a double-down. The table host deals
// the single extra card and stands the hand.
func (h *Hand) DoubleBet() {
	h.bet *= 2
}

// CanSplit reports whether the hand may be split: exactly two matching-rank
// standard cards, active, and the split count under the table maximum.
func (h *Hand) CanSplit() bool {
	if h.status != Active || len(h.cards) != 2 {
		return false
	}
	if h.splitDepth >= h.rules.MaxSplits {
		return false
	}
	return h.cards[0].CanSplitWith(h.cards[1])
}

// Split moves the second initial card into a new hand carrying the same bet.
// Both hands record the incremented split depth.
func (h *Hand) Split() (*Hand, error) {
	if !h.CanSplit() {
		return nil, ErrCannotSplit
	}
	second := h.cards[1]
	h.cards = h.cards[:1]
	h.splitDepth++

	other := NewHand(h.rules, h.bet)
	other.splitDepth = h.splitDepth
	other.onStatus = h.onStatus
	other.cards = append(other.cards, second)
	return other, nil
}

// WinConditions returns the subset of bonus-eligible conditions that
// independently hold. A busted or surrendered hand qualifies for nothing.
// The members are not mutually exclusive even though the status machine
// recorded only the first match: a five-card hand can also hold three chaos
// cards.
func (h *Hand) WinConditions() []rules.Condition {
	if h.status == Busted || h.status == Surrendered || h.Value() > 21 {
		return nil
	}
	var conds []rules.Condition
	if h.isBlackjack() {
		conds = append(conds, rules.Blackjack)
	}
	if h.ChaosCount() == 3 && h.rules.Features.TripleChaos {
		conds = append(conds, rules.TripleChaos)
	}
	if len(h.cards) == 5 && h.rules.Features.FiveCard {
		conds = append(conds, rules.FiveCard)
	}
	return conds
}

// ExtractConditions splits the held conditions into the primary (highest
// priority: blackjack > triple_chaos > five_card, falling back to
// standard_win) and the remaining secondary bonuses.
func (h *Hand) ExtractConditions() (rules.Condition, []rules.Condition) {
	conds := h.WinConditions()
	if len(conds) == 0 {
		return rules.StandardWin, nil
	}
	// WinConditions already returns members in priority order.
	return conds[0], conds[1:]
}

// CompareTo orders two hands for settlement: -1 loss, 0 push, +1 win. A
// busted hand always loses, even against another busted hand, because its
// own bust is checked before the opponent's.
func (h *Hand) CompareTo(other *Hand) int {
	if h.Value() > 21 {
		return -1
	}
	if other.Value() > 21 {
		return 1
	}
	hv, ov := h.Value(), other.Value()
	switch {
	case hv > ov:
		return 1
	case hv < ov:
		return -1
	default:
		return 0
	}
}

// ResetChaosValues zeroes the rolled value of every chaos card in the hand.
func (h *Hand) ResetChaosValues() {
	for _, c := range h.cards {
		c.ResetChaosValue()
	}
}

// TakeCards removes and returns all cards, used by the host to sweep the hand
// into the discard pile at round end.
func (h *Hand) TakeCards() []*deck.Card {
	cards := h.cards
	h.cards = nil
	return cards
}

// Cards returns the hand's cards in insertion order.
func (h *Hand) Cards() []*deck.Card { return h.cards }

// Status returns the current state machine status.
func (h *Hand) Status() Status { return h.status }

// Bet returns the hand's stake.
func (h *Hand) Bet() int { return h.bet }

// InsuranceTaken reports whether the insurance side bet was placed.
func (h *Hand) InsuranceTaken() bool { return h.insuranceTaken }

// InsuranceBet returns the insurance stake, 0 when not taken.
func (h *Hand) InsuranceBet() int { return h.insuranceBet }

// SplitDepth returns how many splits produced this hand.
func (h *Hand) SplitDepth() int { return h.splitDepth }

// IsSplitHand reports whether the hand descends from a split.
func (h *Hand) IsSplitHand() bool { return h.splitDepth > 0 }
