// Package protocol defines the versioned wire and snapshot schema for table
// state. Two snapshot tiers exist: public summaries that omit undealt card
// contents (transmitting them would leak future cards) and full forms
// reserved for the authoritative host.
package protocol

import (
	"encoding/json"
	"time"
)

// SchemaVersion is bumped on any incompatible change to the structs below so
// wire compatibility stays checkable.
const SchemaVersion = 1

// MessageType identifies the payload carried by a Message.
type MessageType string

const (
	// Snapshots
	TypeCard       MessageType = "card"
	TypeHand       MessageType = "hand"
	TypeShoe       MessageType = "shoe"
	TypeShoeFull   MessageType = "shoe_full"
	TypeChaosMeter MessageType = "chaos_meter"

	// Feed events
	TypeCardDealt       MessageType = "card_dealt"
	TypeStatusChanged   MessageType = "status_changed"
	TypeMeterUpdated    MessageType = "meter_updated"
	TypeBattleStarted   MessageType = "battle_started"
	TypeBattleCompleted MessageType = "battle_completed"
	TypeReshuffleNeeded MessageType = "reshuffle_needed"
	TypeReshuffled      MessageType = "reshuffled"
	TypeRoundSettled    MessageType = "round_settled"
)

// Message is the envelope every payload travels in.
type Message struct {
	Type      MessageType     `json:"type"`
	Version   int             `json:"version"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in a versioned envelope with the current
// timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Version:   SchemaVersion,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Card is the wire form of a single card. Suit and Rank are present only for
// standard cards.
type Card struct {
	Kind       string `json:"kind"`
	Suit       *int   `json:"suit,omitempty"`
	Rank       *int   `json:"rank,omitempty"`
	FaceUp     bool   `json:"face_up"`
	ChaosValue int    `json:"chaos_value"`
}

// Card kind tags.
const (
	KindStandard = "standard"
	KindChaos    = "chaos"
)

// Hand is the wire form of a participant hand.
type Hand struct {
	Cards        []Card `json:"cards"`
	Status       string `json:"status"`
	Bet          int    `json:"bet"`
	HasInsurance bool   `json:"has_insurance"`
	InsuranceBet int    `json:"insurance_bet"`
	IsSplitHand  bool   `json:"is_split_hand"`
	SplitCount   int    `json:"split_count"`
}

// ShoeSummary is the public shoe snapshot. It deliberately carries only
// counts and the seed, never card contents.
type ShoeSummary struct {
	Remaining      int   `json:"remaining"`
	Discarded      int   `json:"discarded"`
	Seed           int64 `json:"seed"`
	NeedsReshuffle bool  `json:"needs_reshuffle"`
}

// ShoeFull is the authoritative host's shoe snapshot including every card in
// draw and discard order.
type ShoeFull struct {
	Cards       []Card `json:"cards"`
	DiscardPile []Card `json:"discard_pile"`
	Seed        int64  `json:"seed"`
}

// ChaosMeterState is the wire form of the shared meter.
type ChaosMeterState struct {
	Meter             int   `json:"meter"`
	BattleRoundActive bool  `json:"battle_round_active"`
	Seed              int64 `json:"seed"`
}

// CardDealtData is broadcast when a card is dealt. Face-down cards are
// redacted to their face state.
type CardDealtData struct {
	Slot int  `json:"slot"`
	Card Card `json:"card"`
}

// StatusChangedData is broadcast when a hand transitions state.
type StatusChangedData struct {
	Slot int    `json:"slot"`
	Old  string `json:"old"`
	New  string `json:"new"`
}

// MeterUpdatedData is broadcast when the chaos meter moves.
type MeterUpdatedData struct {
	Meter int `json:"meter"`
	Added int `json:"added"`
}

// BattleData is broadcast when a battle round arms or completes.
type BattleData struct {
	Meter  int  `json:"meter"`
	Active bool `json:"active"`
}

// ShuffleData is broadcast on reshuffle-needed and reshuffled notifications.
type ShuffleData struct {
	Remaining int `json:"remaining"`
}

// SettlementData is one slot's result inside RoundSettledData.
type SettlementData struct {
	Slot         int `json:"slot"`
	Net          int `json:"net"`
	InsuranceNet int `json:"insurance_net"`
	Payout       int `json:"payout"`
}

// RoundSettledData is broadcast once per settled round.
type RoundSettledData struct {
	Settlements []SettlementData `json:"settlements"`
}
