package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValidate(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestShoeSize(t *testing.T) {
	t.Parallel()
	r := Default()
	assert.Equal(t, 6*52+8, r.ShoeSize())

	r.Features.Chaos = false
	assert.Equal(t, 6*52, r.ShoeSize(), "chaos cards should not count when the feature is off")
}

func TestPayoutLookups(t *testing.T) {
	t.Parallel()
	r := Default()

	rule, ok := r.Rule(Blackjack)
	require.True(t, ok)
	assert.Equal(t, 1.5, rule.PrincipalRatio)
	assert.Equal(t, 3.0, rule.BonusRatio)

	assert.Equal(t, 1.0, r.PrincipalRatio(StandardWin))
	assert.Equal(t, 2.0, r.BonusRatio(FiveCard))

	_, ok = r.Rule(Condition("martingale"))
	assert.False(t, ok)
	assert.Equal(t, 0.0, r.PrincipalRatio(Condition("martingale")))
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	t.Parallel()
	r := Default()
	r.Decks = 0
	r.MinBet = 0
	r.MaxBet = -5
	r.ChaosCards = -1
	r.PlayerDice = []int{1, 2, 3}

	err := r.Validate()
	require.Error(t, err)
	for _, want := range []string{"decks", "min_bet", "max_bet", "chaos_cards", "player_dice"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateCases(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*TableRules)
		wantErr string
	}{
		{
			name:    "max bet below min bet",
			mutate:  func(r *TableRules) { r.MinBet = 100; r.MaxBet = 50 },
			wantErr: "max_bet",
		},
		{
			name:    "too many chaos cards",
			mutate:  func(r *TableRules) { r.Decks = 1; r.ChaosCards = 60 },
			wantErr: "chaos_cards",
		},
		{
			name:    "negative reshuffle threshold",
			mutate:  func(r *TableRules) { r.ReshuffleThreshold = -1 },
			wantErr: "reshuffle_threshold",
		},
		{
			name:    "reshuffle threshold swallows the shoe",
			mutate:  func(r *TableRules) { r.ReshuffleThreshold = 6*52 + 8 },
			wantErr: "reshuffle_threshold",
		},
		{
			name:    "house dice wrong length",
			mutate:  func(r *TableRules) { r.HouseDice = []int{0, 1} },
			wantErr: "house_dice",
		},
		{
			name: "dice unchecked when chaos off",
			mutate: func(r *TableRules) {
				r.Features.Chaos = false
				r.PlayerDice = nil
				r.HouseDice = nil
			},
		},
		{
			name: "unrecognized payout condition",
			mutate: func(r *TableRules) {
				r.Payouts = append(r.Payouts, PayoutRule{Condition: "seven_card", PrincipalRatio: 9.0})
			},
			wantErr: "unrecognized",
		},
		{
			name: "duplicate payout condition",
			mutate: func(r *TableRules) {
				r.Payouts = append(r.Payouts, PayoutRule{Condition: string(Push), PrincipalRatio: 0.5})
			},
			wantErr: "duplicate",
		},
		{
			name: "missing required payout rules",
			mutate: func(r *TableRules) {
				r.Payouts = []PayoutRule{{Condition: string(FiveCard), PrincipalRatio: 1.5}}
			},
			wantErr: "missing required payout rule",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := Default()
			tc.mutate(r)
			err := r.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantErr), "error %q should mention %q", err, tc.wantErr)
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	r, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), r)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()
	content := `
table {
  decks               = 2
  chaos_cards         = 4
  reshuffle_threshold = 15
  min_bet             = 25
  max_bet             = 500
  battle_threshold    = 200

  features {
    chaos       = true
    five_card   = true
    surrender   = false
  }

  payout "blackjack" {
    principal_ratio = 1.2
    bonus_ratio     = 2.0
  }
  payout "standard_win" {
    principal_ratio = 1.0
  }
  payout "push" {
    principal_ratio = 0.0
  }
}
`
	path := filepath.Join(t.TempDir(), "table.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, r.Decks)
	assert.Equal(t, 4, r.ChaosCards)
	assert.Equal(t, 15, r.ReshuffleThreshold)
	assert.Equal(t, 25, r.MinBet)
	assert.Equal(t, 500, r.MaxBet)
	assert.Equal(t, 200, r.BattleThreshold)
	assert.True(t, r.Features.Chaos)
	assert.False(t, r.Features.Surrender)

	// Omitted knobs pick up the built-in defaults.
	assert.Equal(t, 17, r.DealerStandTotal)
	assert.Equal(t, Default().PlayerDice, r.PlayerDice)
	assert.Equal(t, 3.0, r.BattleMultiplier)

	assert.Equal(t, 1.2, r.PrincipalRatio(Blackjack))
	assert.NoError(t, r.Validate())
}

func TestLoadRejectsBadHCL(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("table {"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
