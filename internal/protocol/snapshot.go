package protocol

import (
	"fmt"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/game"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// FromCard converts a card into its full wire form. Host use only; for
// spectator traffic use FromCardPublic, which redacts face-down identity.
func FromCard(c *deck.Card) Card {
	if c.IsChaos() {
		return Card{Kind: KindChaos, FaceUp: true, ChaosValue: c.ChaosValue()}
	}
	suit := int(c.Suit())
	rank := int(c.Rank())
	return Card{Kind: KindStandard, Suit: &suit, Rank: &rank, FaceUp: c.FaceUp()}
}

// FromCardPublic converts a card for spectator traffic. A face-down card
// keeps only its face state; its identity never leaves the host.
func FromCardPublic(c *deck.Card) Card {
	if !c.FaceUp() {
		return Card{Kind: KindStandard, FaceUp: false}
	}
	return FromCard(c)
}

// ToCard reconstructs a card from its wire form.
func ToCard(w Card) (*deck.Card, error) {
	switch w.Kind {
	case KindChaos:
		c := deck.NewChaosCard()
		if err := c.SetChaosValue(w.ChaosValue); err != nil {
			return nil, err
		}
		return c, nil
	case KindStandard:
		if w.Suit == nil || w.Rank == nil {
			return nil, fmt.Errorf("standard card missing suit or rank")
		}
		c := deck.NewCard(deck.Suit(*w.Suit), deck.Rank(*w.Rank))
		c.SetFaceUp(w.FaceUp)
		return c, nil
	default:
		return nil, fmt.Errorf("unknown card kind %q", w.Kind)
	}
}

// FromHand converts a hand into its wire form.
func FromHand(h *game.Hand) Hand {
	cards := make([]Card, 0, len(h.Cards()))
	for _, c := range h.Cards() {
		cards = append(cards, FromCard(c))
	}
	return Hand{
		Cards:        cards,
		Status:       h.Status().String(),
		Bet:          h.Bet(),
		HasInsurance: h.InsuranceTaken(),
		InsuranceBet: h.InsuranceBet(),
		IsSplitHand:  h.IsSplitHand(),
		SplitCount:   h.SplitDepth(),
	}
}

// ToHand reconstructs a hand under the given rules. The transmitted status is
// adopted as-is; no auto-detection re-runs.
func ToHand(w Hand, t *rules.TableRules) (*game.Hand, error) {
	status, err := game.ParseStatus(w.Status)
	if err != nil {
		return nil, err
	}
	cards := make([]*deck.Card, 0, len(w.Cards))
	for i, wc := range w.Cards {
		c, err := ToCard(wc)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		cards = append(cards, c)
	}
	return game.RestoreHand(t, cards, status, w.Bet, w.HasInsurance, w.InsuranceBet, w.SplitCount), nil
}

// SummarizeShoe builds the public shoe snapshot.
func SummarizeShoe(s *deck.Shoe) ShoeSummary {
	return ShoeSummary{
		Remaining:      s.Remaining(),
		Discarded:      s.Discarded(),
		Seed:           s.Seed(),
		NeedsReshuffle: s.NeedsReshuffle(),
	}
}

// FullShoe builds the authoritative host snapshot with every card in order.
func FullShoe(s *deck.Shoe) ShoeFull {
	full := ShoeFull{Seed: s.Seed()}
	for _, c := range s.Cards() {
		full.Cards = append(full.Cards, FromCard(c))
	}
	for _, c := range s.DiscardPile() {
		full.DiscardPile = append(full.DiscardPile, FromCard(c))
	}
	return full
}

// FromChaos builds the meter snapshot.
func FromChaos(e *game.ChaosEngine) ChaosMeterState {
	return ChaosMeterState{
		Meter:             e.Meter(),
		BattleRoundActive: e.BattleRoundActive(),
		Seed:              e.Seed(),
	}
}

// FromEvent converts a game event into a broadcastable message, or nil for
// event types the feed does not forward.
func FromEvent(event game.GameEvent) (*Message, error) {
	switch e := event.(type) {
	case game.CardDealtEvent:
		return NewMessage(TypeCardDealt, CardDealtData{Slot: e.Slot, Card: FromCardPublic(e.Card)})
	case game.StatusChangedEvent:
		return NewMessage(TypeStatusChanged, StatusChangedData{Slot: e.Slot, Old: e.Old.String(), New: e.New.String()})
	case game.MeterUpdatedEvent:
		return NewMessage(TypeMeterUpdated, MeterUpdatedData{Meter: e.Meter, Added: e.Added})
	case game.BattleStartedEvent:
		return NewMessage(TypeBattleStarted, BattleData{Meter: e.Meter, Active: true})
	case game.BattleCompletedEvent:
		return NewMessage(TypeBattleCompleted, BattleData{Active: false})
	case game.ReshuffleNeededEvent:
		return NewMessage(TypeReshuffleNeeded, ShuffleData{Remaining: e.Remaining})
	case game.ReshuffledEvent:
		return NewMessage(TypeReshuffled, ShuffleData{Remaining: e.Remaining})
	case game.RoundSettledEvent:
		data := RoundSettledData{Settlements: make([]SettlementData, 0, len(e.Settlements))}
		for _, s := range e.Settlements {
			data.Settlements = append(data.Settlements, SettlementData{
				Slot:         s.Slot,
				Net:          s.Net,
				InsuranceNet: s.InsuranceNet,
				Payout:       s.Payout,
			})
		}
		return NewMessage(TypeRoundSettled, data)
	default:
		return nil, nil
	}
}
