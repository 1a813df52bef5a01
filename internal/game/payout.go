package game

import (
	"math"

	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// Calculator computes chip payouts from hand outcomes under the table rules.
// It is pure: no state beyond the immutable rules snapshot.
type Calculator struct {
	rules *rules.TableRules
}

// NewCalculator creates a payout calculator over the given rules.
func NewCalculator(t *rules.TableRules) *Calculator {
	return &Calculator{rules: t}
}

// Payout returns the total chips handed back to a winning (or pushing) hand:
// the stake, plus the primary condition's principal scaled by the hand's own
// bet, plus each secondary condition's bonus scaled by the table minimum.
// Scaling bonuses by the minimum keeps bonus stacking bounded regardless of
// stake size. During a battle round only the winnings are multiplied; the
// stake is never touched by the multiplier.
func (c *Calculator) Payout(bet int, primary rules.Condition, secondaries []rules.Condition, battleActive bool) int {
	total := bet
	total += int(math.Floor(float64(bet) * c.rules.PrincipalRatio(primary)))
	for _, s := range secondaries {
		total += int(math.Floor(float64(c.rules.MinBet) * c.rules.BonusRatio(s)))
	}
	if battleActive && c.rules.Features.Chaos {
		winnings := total - bet
		total = bet + int(math.Floor(float64(winnings)*c.rules.BattleMultiplier))
	}
	return total
}

// SurrenderRefund returns the chips handed back on surrender: half the stake,
// integer division. The other half is the net loss.
func (c *Calculator) SurrenderRefund(bet int) int {
	return bet / 2
}

// SettleInsurance returns the net chip delta of the insurance side bet,
// settled independently of the main comparison. A dealer blackjack pays the
// bet times (1 + insurance_ratio); otherwise the bet is forfeited.
func (c *Calculator) SettleInsurance(insuranceBet int, dealerBlackjack bool) int {
	if insuranceBet <= 0 {
		return 0
	}
	if dealerBlackjack {
		paid := int(math.Floor(float64(insuranceBet) * (1 + c.rules.InsuranceRatio)))
		return paid - insuranceBet
	}
	return -insuranceBet
}
