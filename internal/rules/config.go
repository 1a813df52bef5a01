package rules

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Condition names the closed set of win conditions the payout table is keyed
// by.
type Condition string

const (
	Blackjack   Condition = "blackjack"
	StandardWin Condition = "standard_win"
	FiveCard    Condition = "five_card"
	TripleChaos Condition = "triple_chaos"
	Push        Condition = "push"
)

// knownConditions is the recognized name set for config validation.
var knownConditions = map[Condition]bool{
	Blackjack:   true,
	StandardWin: true,
	FiveCard:    true,
	TripleChaos: true,
	Push:        true,
}

// Config is the top-level rules file structure.
type Config struct {
	Table TableRules `hcl:"table,block"`
}

// TableRules is the immutable snapshot of all tunable table parameters. Every
// other component consumes it read-only; it is decoded once before play and
// never mutated afterwards.
type TableRules struct {
	Decks              int     `hcl:"decks,optional"`
	ChaosCards         int     `hcl:"chaos_cards,optional"`
	ReshuffleThreshold int     `hcl:"reshuffle_threshold,optional"`
	MinBet             int     `hcl:"min_bet,optional"`
	MaxBet             int     `hcl:"max_bet,optional"`
	MaxSplits          int     `hcl:"max_splits,optional"`
	InsuranceRatio     float64 `hcl:"insurance_ratio,optional"`
	DealerStandTotal   int     `hcl:"dealer_stand_total,optional"`

	// Chaos subsystem knobs. The dice tables are position-uniform: repeated
	// entries express non-uniform value distributions, e.g. [0,0,1,1,2,2].
	PlayerDice       []int   `hcl:"player_dice,optional"`
	HouseDice        []int   `hcl:"house_dice,optional"`
	PointsPerValue   int     `hcl:"points_per_value,optional"`
	BattleThreshold  int     `hcl:"battle_threshold,optional"`
	BattleMultiplier float64 `hcl:"battle_multiplier,optional"`

	Features FeatureToggles `hcl:"features,block"`
	Payouts  []PayoutRule   `hcl:"payout,block"`
}

// FeatureToggles enables or disables optional table mechanics.
type FeatureToggles struct {
	Chaos            bool `hcl:"chaos,optional"`
	FiveCard         bool `hcl:"five_card,optional"`
	TripleChaos      bool `hcl:"triple_chaos,optional"`
	Insurance        bool `hcl:"insurance,optional"`
	Surrender        bool `hcl:"surrender,optional"`
	DoubleAfterSplit bool `hcl:"double_after_split,optional"`
}

// PayoutRule maps one win condition to its payout ratios. PrincipalRatio
// scales the hand's own bet when the condition is primary; BonusRatio scales
// the table minimum when the condition pays as a secondary bonus.
type PayoutRule struct {
	Condition      string  `hcl:"condition,label"`
	PrincipalRatio float64 `hcl:"principal_ratio"`
	BonusRatio     float64 `hcl:"bonus_ratio,optional"`
}

// Default returns the built-in table rules used when no config file exists.
func Default() *TableRules {
	return &TableRules{
		Decks:              6,
		ChaosCards:         8,
		ReshuffleThreshold: 20,
		MinBet:             10,
		MaxBet:             1000,
		MaxSplits:          3,
		InsuranceRatio:     2.0,
		DealerStandTotal:   17,
		PlayerDice:         []int{1, 2, 3, 4, 5, 6},
		HouseDice:          []int{0, 0, 1, 1, 2, 2},
		PointsPerValue:     10,
		BattleThreshold:    300,
		BattleMultiplier:   3.0,
		Features: FeatureToggles{
			Chaos:            true,
			FiveCard:         true,
			TripleChaos:      true,
			Insurance:        true,
			Surrender:        true,
			DoubleAfterSplit: true,
		},
		Payouts: []PayoutRule{
			{Condition: string(Blackjack), PrincipalRatio: 1.5, BonusRatio: 3.0},
			{Condition: string(StandardWin), PrincipalRatio: 1.0},
			{Condition: string(FiveCard), PrincipalRatio: 1.5, BonusRatio: 2.0},
			{Condition: string(TripleChaos), PrincipalRatio: 2.0, BonusRatio: 2.5},
			{Condition: string(Push), PrincipalRatio: 0.0},
		},
	}
}

// Load reads table rules from an HCL file. A missing file yields the
// defaults, matching how the server treats its own config.
func Load(filename string) (*TableRules, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&config.Table)
	return &config.Table, nil
}

func applyDefaults(t *TableRules) {
	def := Default()
	if t.Decks == 0 {
		t.Decks = def.Decks
	}
	if t.MinBet == 0 {
		t.MinBet = def.MinBet
	}
	if t.MaxBet == 0 {
		t.MaxBet = def.MaxBet
	}
	if t.MaxSplits == 0 {
		t.MaxSplits = def.MaxSplits
	}
	if t.InsuranceRatio == 0 {
		t.InsuranceRatio = def.InsuranceRatio
	}
	if t.DealerStandTotal == 0 {
		t.DealerStandTotal = def.DealerStandTotal
	}
	if t.Features.Chaos {
		if len(t.PlayerDice) == 0 {
			t.PlayerDice = def.PlayerDice
		}
		if len(t.HouseDice) == 0 {
			t.HouseDice = def.HouseDice
		}
		if t.PointsPerValue == 0 {
			t.PointsPerValue = def.PointsPerValue
		}
		if t.BattleThreshold == 0 {
			t.BattleThreshold = def.BattleThreshold
		}
		if t.BattleMultiplier == 0 {
			t.BattleMultiplier = def.BattleMultiplier
		}
	}
	if len(t.Payouts) == 0 {
		t.Payouts = def.Payouts
	}
}

// ShoeSize returns the total card count a shoe built from these rules holds.
func (t *TableRules) ShoeSize() int {
	size := t.Decks * 52
	if t.Features.Chaos {
		size += t.ChaosCards
	}
	return size
}

// Rule looks up the payout rule for a condition.
func (t *TableRules) Rule(c Condition) (PayoutRule, bool) {
	for _, r := range t.Payouts {
		if r.Condition == string(c) {
			return r, true
		}
	}
	return PayoutRule{}, false
}

// PrincipalRatio returns the principal payout ratio for a condition, 0 if the
// condition has no rule.
func (t *TableRules) PrincipalRatio(c Condition) float64 {
	r, _ := t.Rule(c)
	return r.PrincipalRatio
}

// BonusRatio returns the secondary bonus ratio for a condition, 0 if the
// condition has no rule.
func (t *TableRules) BonusRatio(c Condition) float64 {
	r, _ := t.Rule(c)
	return r.BonusRatio
}

// Validate checks the rules once before play and returns every problem found,
// joined, so the caller can report the full list and decide whether to refuse
// to start.
func (t *TableRules) Validate() error {
	var errs []error

	if t.Decks < 1 {
		errs = append(errs, fmt.Errorf("decks must be at least 1, got %d", t.Decks))
	}
	if t.MinBet <= 0 {
		errs = append(errs, fmt.Errorf("min_bet must be positive, got %d", t.MinBet))
	}
	if t.MaxBet < t.MinBet {
		errs = append(errs, fmt.Errorf("max_bet %d is below min_bet %d", t.MaxBet, t.MinBet))
	}
	if t.ChaosCards < 0 {
		errs = append(errs, fmt.Errorf("chaos_cards must not be negative, got %d", t.ChaosCards))
	}
	if t.ChaosCards > t.Decks*52 {
		errs = append(errs, fmt.Errorf("chaos_cards %d exceeds standard shoe size %d", t.ChaosCards, t.Decks*52))
	}
	if t.ReshuffleThreshold < 0 {
		errs = append(errs, fmt.Errorf("reshuffle_threshold must not be negative, got %d", t.ReshuffleThreshold))
	}
	if t.ReshuffleThreshold >= t.ShoeSize() {
		errs = append(errs, fmt.Errorf("reshuffle_threshold %d exceeds shoe capacity %d", t.ReshuffleThreshold, t.ShoeSize()))
	}

	if t.Features.Chaos {
		if len(t.PlayerDice) != 6 {
			errs = append(errs, fmt.Errorf("player_dice must have exactly 6 entries, got %d", len(t.PlayerDice)))
		}
		if len(t.HouseDice) != 6 {
			errs = append(errs, fmt.Errorf("house_dice must have exactly 6 entries, got %d", len(t.HouseDice)))
		}
	}

	seen := map[string]bool{}
	for _, r := range t.Payouts {
		if !knownConditions[Condition(r.Condition)] {
			errs = append(errs, fmt.Errorf("unrecognized payout condition %q", r.Condition))
			continue
		}
		if seen[r.Condition] {
			errs = append(errs, fmt.Errorf("duplicate payout rule for %q", r.Condition))
		}
		seen[r.Condition] = true
	}
	for _, required := range []Condition{Blackjack, StandardWin, Push} {
		if !seen[string(required)] {
			errs = append(errs, fmt.Errorf("missing required payout rule %q", required))
		}
	}

	return errors.Join(errs...)
}
