package game

import (
	"errors"
	rand "math/rand/v2"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/randutil"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// Recoverable chaos misuse errors.
var (
	ErrNoBattleRound = errors.New("no battle round is active")
	ErrChaosDisabled = errors.New("chaos feature is disabled by table rules")
)

// ChaosEngine owns the dice generator, the shared meter and the battle-round
// flag. Its generator is distinct from the shoe's and independently seedable,
// so replaying a round reproduces the exact dice sequence regardless of how
// many cards were dealt.
//
// The meter persists across rounds; only CompleteBattleRound resets it. The
// per-round zeroing of chaos card values is a separate sweep and never
// touches the meter.
type ChaosEngine struct {
	rng          *rand.Rand
	seed         int64
	rules        *rules.TableRules
	meter        int
	battleActive bool
	bus          EventBus
}

// NewChaosEngine creates a chaos engine with its own generator derived from
// seed. The bus may be nil when no observer cares about meter events.
func NewChaosEngine(t *rules.TableRules, seed int64, bus EventBus) *ChaosEngine {
	return &ChaosEngine{
		rng:   randutil.New(seed),
		seed:  seed,
		rules: t,
		bus:   bus,
	}
}

// Roll draws one value from the caller's six-entry dice table. The draw is
// uniform over table positions, not distinct values, so repeated entries make
// some values more likely.
func (e *ChaosEngine) Roll(playerSide bool) int {
	table := e.rules.HouseDice
	if playerSide {
		table = e.rules.PlayerDice
	}
	return table[e.rng.IntN(len(table))]
}

// CardEntersHand handles a chaos card joining a hand: rolls the appropriate
// table, writes the value onto the card, feeds the meter and re-runs the
// hand's auto-detection, since a roll can bust a borderline total or complete
// triple-chaos. Calling it with a standard card is recoverable misuse: the
// card, meter and hand are untouched and a diagnostic is returned.
func (e *ChaosEngine) CardEntersHand(card *deck.Card, hand *Hand, playerSide bool) (int, error) {
	if !e.rules.Features.Chaos {
		return 0, ErrChaosDisabled
	}
	if !card.IsChaos() {
		return 0, deck.ErrNotChaosCard
	}
	value := e.Roll(playerSide)
	if err := card.SetChaosValue(value); err != nil {
		return 0, err
	}
	e.addToMeter(value * e.rules.PointsPerValue)
	if hand != nil {
		hand.RefreshStatus()
	}
	return value, nil
}

// addToMeter accumulates points and arms the battle round when the threshold
// is crossed. Re-crossing while already armed has no further effect.
func (e *ChaosEngine) addToMeter(points int) {
	e.meter += points
	if e.bus != nil {
		e.bus.Publish(NewMeterUpdatedEvent(e.meter, points))
	}
	if e.meter >= e.rules.BattleThreshold && !e.battleActive {
		e.battleActive = true
		if e.bus != nil {
			e.bus.Publish(NewBattleStartedEvent(e.meter))
		}
	}
}

// CompleteBattleRound clears the flag and resets the meter to 0. This is the
// only path that resets the meter. Completing while no battle round is
// active is recoverable misuse.
func (e *ChaosEngine) CompleteBattleRound() error {
	if !e.battleActive {
		return ErrNoBattleRound
	}
	e.battleActive = false
	e.meter = 0
	if e.bus != nil {
		e.bus.Publish(NewBattleCompletedEvent())
	}
	return nil
}

// Meter returns the current accumulated meter value.
func (e *ChaosEngine) Meter() int { return e.meter }

// BattleRoundActive reports whether a battle round is armed.
func (e *ChaosEngine) BattleRoundActive() bool { return e.battleActive }

// Seed returns the seed the dice generator was derived from.
func (e *ChaosEngine) Seed() int64 { return e.seed }

// SetSeed re-derives the dice generator for synchronized replay. Meter and
// battle state are left alone; they are transmitted in the meter snapshot.
func (e *ChaosEngine) SetSeed(seed int64) {
	e.rng = randutil.New(seed)
	e.seed = seed
}

// RestoreMeter installs meter state received in a snapshot, used by replaying
// participants to adopt the host's authoritative values.
func (e *ChaosEngine) RestoreMeter(meter int, battleActive bool) {
	e.meter = meter
	e.battleActive = battleActive
}
