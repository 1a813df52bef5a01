package game

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// Table host errors.
var (
	ErrRoundInProgress = errors.New("a round is already in progress")
	ErrNoRound         = errors.New("no round in progress")
	ErrNoSuchHand      = errors.New("no such hand")
	ErrBetOutOfBounds  = errors.New("bet outside table bounds")
	ErrCannotDouble    = errors.New("hand cannot double down")
)

// Settlement is one slot's net result for a round.
type Settlement struct {
	Slot         int
	Net          int // main-hand net chip delta
	InsuranceNet int // insurance side-bet net, settled independently
	Payout       int // total chips returned for the main hand
}

// Total returns the combined net delta for the slot.
func (s Settlement) Total() int { return s.Net + s.InsuranceNet }

// seat binds a hand to its participant slot. Split hands share a slot.
type seat struct {
	slot int
	hand *Hand
}

// Table is the single authoritative host instance of shoe, hands and chaos
// state for one table. All operations are synchronous and single-threaded;
// determinism comes from the two seeded generators and the ordered operation
// sequence alone.
type Table struct {
	rules   *rules.TableRules
	logger  *log.Logger
	bus     EventBus
	shoe    *deck.Shoe
	chaos   *ChaosEngine
	payouts *Calculator

	dealer  *Hand
	seats   []seat
	inRound bool
}

// shoeRelay adapts the shoe's observer callbacks onto the table event bus.
type shoeRelay struct {
	bus EventBus
}

func (r shoeRelay) ReshuffleNeeded(remaining int) {
	r.bus.Publish(NewReshuffleNeededEvent(remaining))
}

func (r shoeRelay) Shuffled(remaining int) {
	r.bus.Publish(NewReshuffledEvent(remaining))
}

// NewTable validates the rules, builds and shuffles the shoe and derives the
// two independent generators from the given seeds.
func NewTable(t *rules.TableRules, shoeSeed, diceSeed int64, logger *log.Logger) (*Table, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table rules: %w", err)
	}

	bus := NewEventBus()
	chaosCards := 0
	if t.Features.Chaos {
		chaosCards = t.ChaosCards
	}
	shoe := deck.NewShoe(shoeSeed, t.Decks, chaosCards, t.ReshuffleThreshold)
	shoe.AddObserver(shoeRelay{bus: bus})
	shoe.Shuffle()

	return &Table{
		rules:   t,
		logger:  logger.WithPrefix("table"),
		bus:     bus,
		shoe:    shoe,
		chaos:   NewChaosEngine(t, diceSeed, bus),
		payouts: NewCalculator(t),
	}, nil
}

// EventBus returns the bus orchestrating layers subscribe to.
func (t *Table) EventBus() EventBus { return t.bus }

// Shoe returns the table's shoe for host snapshots.
func (t *Table) Shoe() *deck.Shoe { return t.shoe }

// Chaos returns the table's chaos engine.
func (t *Table) Chaos() *ChaosEngine { return t.chaos }

// Payouts returns the table's payout calculator.
func (t *Table) Payouts() *Calculator { return t.payouts }

// BeginRound opens a round with one hand per bet, bets indexed by slot. Each
// player receives two face-up cards; the dealer receives an up-card and a
// hole card.
func (t *Table) BeginRound(bets []int) error {
	if t.inRound {
		return ErrRoundInProgress
	}
	if len(bets) == 0 {
		return errors.New("no bets placed")
	}
	for slot, bet := range bets {
		if bet < t.rules.MinBet || bet > t.rules.MaxBet {
			return fmt.Errorf("slot %d: %w: %d not in [%d,%d]", slot, ErrBetOutOfBounds, bet, t.rules.MinBet, t.rules.MaxBet)
		}
	}

	t.seats = make([]seat, 0, len(bets))
	for slot, bet := range bets {
		h := NewHand(t.rules, bet)
		t.watchStatus(slot, h)
		t.seats = append(t.seats, seat{slot: slot, hand: h})
	}
	t.dealer = NewHand(t.rules, 0)
	t.watchStatus(DealerSlot, t.dealer)
	t.inRound = true

	for i := range t.seats {
		t.dealTo(t.seats[i].hand, t.seats[i].slot, true, true)
	}
	t.dealTo(t.dealer, DealerSlot, true, false)
	for i := range t.seats {
		t.dealTo(t.seats[i].hand, t.seats[i].slot, true, true)
	}
	t.dealTo(t.dealer, DealerSlot, false, false)

	t.logger.Debug("round started", "hands", len(t.seats), "remaining", t.shoe.Remaining(), "meter", t.chaos.Meter())
	return nil
}

// DealerSlot identifies the dealer in events and settlements.
const DealerSlot = -1

func (t *Table) watchStatus(slot int, h *Hand) {
	h.SetStatusObserver(func(old, new Status) {
		t.bus.Publish(NewStatusChangedEvent(slot, old, new))
	})
}

// dealTo moves one card from the shoe into a hand. The hand re-evaluates its
// status on the append; a chaos card then rolls, feeds the meter and forces a
// second evaluation.
func (t *Table) dealTo(h *Hand, slot int, faceUp, playerSide bool) *deck.Card {
	card := t.shoe.Deal(faceUp)
	h.AddCard(card)
	t.bus.Publish(NewCardDealtEvent(slot, card))
	if card.IsChaos() {
		value, err := t.chaos.CardEntersHand(card, h, playerSide)
		if err != nil {
			t.logger.Error("chaos roll failed", "error", err, "slot", slot)
		} else {
			t.logger.Debug("chaos card rolled", "slot", slot, "value", value, "meter", t.chaos.Meter())
		}
	}
	return card
}

// HandCount returns the number of player hands in the current round,
// including hands produced by splits.
func (t *Table) HandCount() int { return len(t.seats) }

// Hand returns the player hand at index i.
func (t *Table) Hand(i int) (*Hand, error) {
	if !t.inRound {
		return nil, ErrNoRound
	}
	if i < 0 || i >= len(t.seats) {
		return nil, ErrNoSuchHand
	}
	return t.seats[i].hand, nil
}

// Dealer returns the dealer hand.
func (t *Table) Dealer() *Hand { return t.dealer }

// DealerUpCard returns the dealer's visible card, the data a decision policy
// consumes alongside the active hand and the meter value.
func (t *Table) DealerUpCard() *deck.Card {
	if t.dealer == nil || len(t.dealer.Cards()) == 0 {
		return nil
	}
	return t.dealer.Cards()[0]
}

// Hit deals one face-up card to hand i.
func (t *Table) Hit(i int) (*deck.Card, error) {
	h, err := t.Hand(i)
	if err != nil {
		return nil, err
	}
	if h.Status() != Active {
		return nil, ErrHandNotActive
	}
	return t.dealTo(h, t.seats[i].slot, true, true), nil
}

// Stand stands hand i.
func (t *Table) Stand(i int) error {
	h, err := t.Hand(i)
	if err != nil {
		return err
	}
	return h.Stand()
}

// Surrender surrenders hand i.
func (t *Table) Surrender(i int) error {
	h, err := t.Hand(i)
	if err != nil {
		return err
	}
	return h.Surrender()
}

// TakeInsurance places the insurance side bet for hand i.
func (t *Table) TakeInsurance(i int) error {
	h, err := t.Hand(i)
	if err != nil {
		return err
	}
	return h.TakeInsurance()
}

// DoubleDown doubles the stake of hand i, deals exactly one card and stands
// the hand if the card left it active.
func (t *Table) DoubleDown(i int) error {
	h, err := t.Hand(i)
	if err != nil {
		return err
	}
	if !h.CanDoubleDown() {
		return ErrCannotDouble
	}
	h.DoubleBet()
	t.dealTo(h, t.seats[i].slot, true, true)
	if h.Status() == Active {
		return h.Stand()
	}
	return nil
}

// Split splits hand i into two hands sharing the slot, each completed with a
// second card from the shoe. Returns the index of the new hand.
func (t *Table) Split(i int) (int, error) {
	h, err := t.Hand(i)
	if err != nil {
		return 0, err
	}
	other, err := h.Split()
	if err != nil {
		return 0, err
	}

	slot := t.seats[i].slot
	newIdx := i + 1
	t.seats = append(t.seats, seat{})
	copy(t.seats[newIdx+1:], t.seats[newIdx:])
	t.seats[newIdx] = seat{slot: slot, hand: other}

	t.dealTo(h, slot, true, true)
	t.dealTo(other, slot, true, true)
	return newIdx, nil
}

// PlayDealer reveals the hole card and draws until the dealer reaches the
// stand total or a terminal state.
func (t *Table) PlayDealer() error {
	if !t.inRound {
		return ErrNoRound
	}
	for _, c := range t.dealer.Cards() {
		c.FlipUp()
	}
	for t.dealer.Status() == Active && t.dealer.Value() < t.rules.DealerStandTotal {
		t.dealTo(t.dealer, DealerSlot, true, false)
	}
	if t.dealer.Status() == Active {
		return t.dealer.Stand()
	}
	return nil
}

// Settle compares every hand against the dealer and produces net chip deltas.
// A battle round that was active during the round amplifies winnings and is
// consumed once settlement completes.
func (t *Table) Settle() ([]Settlement, error) {
	if !t.inRound {
		return nil, ErrNoRound
	}

	dealerBlackjack := t.dealer.IsBlackjack()
	battle := t.chaos.BattleRoundActive()

	settlements := make([]Settlement, 0, len(t.seats))
	for _, s := range t.seats {
		st := Settlement{Slot: s.slot}
		h := s.hand

		if h.InsuranceTaken() {
			st.InsuranceNet = t.payouts.SettleInsurance(h.InsuranceBet(), dealerBlackjack)
		}

		switch {
		case h.Status() == Surrendered:
			st.Payout = t.payouts.SurrenderRefund(h.Bet())
			st.Net = st.Payout - h.Bet()

		case h.Status() == Busted:
			st.Net = -h.Bet()

		case dealerBlackjack:
			// A dealer natural beats everything except a player natural.
			if h.IsBlackjack() {
				st.Payout = t.payouts.Payout(h.Bet(), rules.Push, nil, battle)
				st.Net = st.Payout - h.Bet()
			} else {
				st.Net = -h.Bet()
			}

		case h.Status() == Blackjack, h.Status() == FiveCard, h.Status() == TripleChaos:
			// Completion states win outright against a non-natural dealer.
			primary, secondaries := h.ExtractConditions()
			st.Payout = t.payouts.Payout(h.Bet(), primary, secondaries, battle)
			st.Net = st.Payout - h.Bet()

		default:
			switch h.CompareTo(t.dealer) {
			case 1:
				primary, secondaries := h.ExtractConditions()
				st.Payout = t.payouts.Payout(h.Bet(), primary, secondaries, battle)
				st.Net = st.Payout - h.Bet()
			case 0:
				st.Payout = t.payouts.Payout(h.Bet(), rules.Push, nil, battle)
				st.Net = st.Payout - h.Bet()
			case -1:
				st.Net = -h.Bet()
			}
		}

		settlements = append(settlements, st)
	}

	t.bus.Publish(NewRoundSettledEvent(settlements))
	if battle {
		if err := t.chaos.CompleteBattleRound(); err != nil {
			t.logger.Error("completing battle round", "error", err)
		}
	}
	return settlements, nil
}

// EndRound sweeps every card back into the discard pile and zeroes all chaos
// card values. The meter carries over; only a completed battle round resets
// it.
func (t *Table) EndRound() error {
	if !t.inRound {
		return ErrNoRound
	}
	for _, s := range t.seats {
		t.shoe.DiscardMany(s.hand.TakeCards())
	}
	t.shoe.DiscardMany(t.dealer.TakeCards())
	t.shoe.ResetChaosValues()

	t.seats = nil
	t.dealer = nil
	t.inRound = false
	return nil
}

// InRound reports whether a round is open.
func (t *Table) InRound() bool { return t.inRound }
