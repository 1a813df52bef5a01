package game

import (
	"time"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for table domain events
const (
	EventTypeCardDealt       EventType = "card_dealt"
	EventTypeStatusChanged   EventType = "status_changed"
	EventTypeMeterUpdated    EventType = "meter_updated"
	EventTypeBattleStarted   EventType = "battle_started"
	EventTypeBattleCompleted EventType = "battle_completed"
	EventTypeReshuffleNeeded EventType = "reshuffle_needed"
	EventTypeReshuffled      EventType = "reshuffled"
	EventTypeRoundSettled    EventType = "round_settled"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs at the table. The core never
// requires ecosystem event infrastructure; orchestrating layers subscribe to
// the bus and drain events however they like.
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// CardDealtEvent is published when the shoe deals a card to a hand. For a
// face-down card subscribers see only the face state, never the identity.
type CardDealtEvent struct {
	Slot      int // -1 for the dealer
	Card      *deck.Card
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// NewCardDealtEvent creates a new card dealt event
func NewCardDealtEvent(slot int, card *deck.Card) CardDealtEvent {
	return CardDealtEvent{Slot: slot, Card: card, timestamp: time.Now()}
}

// StatusChangedEvent is published when a hand transitions state.
type StatusChangedEvent struct {
	Slot      int
	Old       Status
	New       Status
	timestamp time.Time
}

func (e StatusChangedEvent) EventType() EventType { return EventTypeStatusChanged }
func (e StatusChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewStatusChangedEvent creates a new status changed event
func NewStatusChangedEvent(slot int, old, new Status) StatusChangedEvent {
	return StatusChangedEvent{Slot: slot, Old: old, New: new, timestamp: time.Now()}
}

// MeterUpdatedEvent is published when a chaos roll feeds the shared meter.
type MeterUpdatedEvent struct {
	Meter     int
	Added     int
	timestamp time.Time
}

func (e MeterUpdatedEvent) EventType() EventType { return EventTypeMeterUpdated }
func (e MeterUpdatedEvent) Timestamp() time.Time { return e.timestamp }

// NewMeterUpdatedEvent creates a new meter updated event
func NewMeterUpdatedEvent(meter, added int) MeterUpdatedEvent {
	return MeterUpdatedEvent{Meter: meter, Added: added, timestamp: time.Now()}
}

// BattleStartedEvent is published when the meter crosses the battle threshold.
type BattleStartedEvent struct {
	Meter     int
	timestamp time.Time
}

func (e BattleStartedEvent) EventType() EventType { return EventTypeBattleStarted }
func (e BattleStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewBattleStartedEvent creates a new battle started event
func NewBattleStartedEvent(meter int) BattleStartedEvent {
	return BattleStartedEvent{Meter: meter, timestamp: time.Now()}
}

// BattleCompletedEvent is published when the host completes a battle round
// and the meter resets.
type BattleCompletedEvent struct {
	timestamp time.Time
}

func (e BattleCompletedEvent) EventType() EventType { return EventTypeBattleCompleted }
func (e BattleCompletedEvent) Timestamp() time.Time { return e.timestamp }

// NewBattleCompletedEvent creates a new battle completed event
func NewBattleCompletedEvent() BattleCompletedEvent {
	return BattleCompletedEvent{timestamp: time.Now()}
}

// ReshuffleNeededEvent is published when the draw pile hits the reshuffle
// threshold, before the discard pile folds back in.
type ReshuffleNeededEvent struct {
	Remaining int
	timestamp time.Time
}

func (e ReshuffleNeededEvent) EventType() EventType { return EventTypeReshuffleNeeded }
func (e ReshuffleNeededEvent) Timestamp() time.Time { return e.timestamp }

// NewReshuffleNeededEvent creates a new reshuffle needed event
func NewReshuffleNeededEvent(remaining int) ReshuffleNeededEvent {
	return ReshuffleNeededEvent{Remaining: remaining, timestamp: time.Now()}
}

// ReshuffledEvent is published after any shuffle of the shoe.
type ReshuffledEvent struct {
	Remaining int
	timestamp time.Time
}

func (e ReshuffledEvent) EventType() EventType { return EventTypeReshuffled }
func (e ReshuffledEvent) Timestamp() time.Time { return e.timestamp }

// NewReshuffledEvent creates a new reshuffled event
func NewReshuffledEvent(remaining int) ReshuffledEvent {
	return ReshuffledEvent{Remaining: remaining, timestamp: time.Now()}
}

// RoundSettledEvent is published once per round with every slot's net result.
type RoundSettledEvent struct {
	Settlements []Settlement
	timestamp   time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundSettledEvent creates a new round settled event
func NewRoundSettledEvent(settlements []Settlement) RoundSettledEvent {
	s := make([]Settlement, len(settlements))
	copy(s, settlements)
	return RoundSettledEvent{Settlements: s, timestamp: time.Now()}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
