package game

import (
	"errors"
	"testing"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

func testRules() *rules.TableRules {
	return rules.Default()
}

func handOf(t *rules.TableRules, cards ...*deck.Card) *Hand {
	h := NewHand(t, 100)
	for _, c := range cards {
		h.AddCard(c)
	}
	return h
}

func std(rank deck.Rank) *deck.Card {
	return deck.NewCard(deck.Spades, rank)
}

func chaosValued(v int) *deck.Card {
	c := deck.NewChaosCard()
	_ = c.SetChaosValue(v)
	return c
}

func TestHandValueAceReduction(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		cards []*deck.Card
		value int
		soft  bool
	}{
		{"ace king", []*deck.Card{std(deck.Ace), std(deck.King)}, 21, true},
		{"ace six", []*deck.Card{std(deck.Ace), std(deck.Six)}, 17, true},
		{"two aces nine", []*deck.Card{std(deck.Ace), std(deck.Ace), std(deck.Nine)}, 21, false},
		{"ace after bust collapses", []*deck.Card{std(deck.Ace), std(deck.Nine), std(deck.Five)}, 15, false},
		{"four aces", []*deck.Card{std(deck.Ace), std(deck.Ace), std(deck.Ace), std(deck.Ace)}, 14, false},
		{"hard twenty", []*deck.Card{std(deck.King), std(deck.Queen)}, 20, false},
		{"chaos adds rolled value", []*deck.Card{std(deck.Ten), chaosValued(5)}, 15, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf(testRules(), tt.cards...)
			if got := h.Value(); got != tt.value {
				t.Errorf("Value() = %d, want %d", got, tt.value)
			}
			if got := h.IsSoft(); got != tt.soft {
				t.Errorf("IsSoft() = %v, want %v", got, tt.soft)
			}
		})
	}
}

func TestHandAutoDetection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		cards  []*deck.Card
		status Status
	}{
		{"blackjack", []*deck.Card{std(deck.Ace), std(deck.King)}, Blackjack},
		{"two aces nine stays active", []*deck.Card{std(deck.Ace), std(deck.Ace), std(deck.Nine)}, Active},
		{"bust", []*deck.Card{std(deck.King), std(deck.Queen), std(deck.Five)}, Busted},
		{"three card 21 is not blackjack", []*deck.Card{std(deck.Seven), std(deck.Seven), std(deck.Seven)}, Active},
		{"five card", []*deck.Card{std(deck.Two), std(deck.Three), std(deck.Two), std(deck.Three), std(deck.Four)}, FiveCard},
		{"triple chaos", []*deck.Card{chaosValued(1), chaosValued(2), chaosValued(1)}, TripleChaos},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handOf(testRules(), tt.cards...)
			if got := h.Status(); got != tt.status {
				t.Errorf("Status() = %v, want %v", got, tt.status)
			}
		})
	}
}

func TestBustWinsDetectionPriority(t *testing.T) {
	t.Parallel()
	// Five cards totalling over 21: bust outranks five-card.
	h := handOf(testRules(), std(deck.King), std(deck.Queen), std(deck.Five), std(deck.Four), std(deck.Three))
	if h.Status() != Busted {
		t.Errorf("Status() = %v, want Busted before FiveCard", h.Status())
	}
}

func TestDetectionDisabledByFeatureToggles(t *testing.T) {
	t.Parallel()
	r := testRules()
	r.Features.FiveCard = false
	r.Features.TripleChaos = false

	five := handOf(r, std(deck.Two), std(deck.Three), std(deck.Two), std(deck.Three), std(deck.Four))
	if five.Status() != Active {
		t.Errorf("five-card detection should be off, got %v", five.Status())
	}
	triple := handOf(r, chaosValued(1), chaosValued(2), chaosValued(1))
	if triple.Status() != Active {
		t.Errorf("triple-chaos detection should be off, got %v", triple.Status())
	}
}

func TestTerminalStatesAreAbsorbing(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), std(deck.Ten), std(deck.Seven))
	if err := h.Stand(); err != nil {
		t.Fatalf("Stand: %v", err)
	}
	if err := h.Stand(); !errors.Is(err, ErrHandNotActive) {
		t.Errorf("second Stand: got %v, want ErrHandNotActive", err)
	}
	if err := h.Surrender(); !errors.Is(err, ErrHandNotActive) {
		t.Errorf("Surrender after Stand: got %v, want ErrHandNotActive", err)
	}

	// Adding a card to a stood hand must not re-run detection.
	h.AddCard(std(deck.King))
	if h.Status() != Stood {
		t.Errorf("Status() = %v after card on stood hand, want Stood", h.Status())
	}
}

func TestSurrender(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), std(deck.Ten), std(deck.Six))
	if err := h.Surrender(); err != nil {
		t.Fatalf("Surrender: %v", err)
	}
	if h.Status() != Surrendered {
		t.Errorf("Status() = %v, want Surrendered", h.Status())
	}

	r := testRules()
	r.Features.Surrender = false
	h2 := handOf(r, std(deck.Ten), std(deck.Six))
	if err := h2.Surrender(); !errors.Is(err, ErrSurrenderDisabled) {
		t.Errorf("Surrender with feature off: got %v, want ErrSurrenderDisabled", err)
	}
	if h2.Status() != Active {
		t.Errorf("misuse must be a no-op, Status() = %v", h2.Status())
	}
}

func TestTakeInsurance(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), std(deck.Ten), std(deck.Six))
	if err := h.TakeInsurance(); err != nil {
		t.Fatalf("TakeInsurance: %v", err)
	}
	if !h.InsuranceTaken() {
		t.Error("InsuranceTaken() = false")
	}
	if h.InsuranceBet() != 50 {
		t.Errorf("InsuranceBet() = %d, want 50 (bet/2)", h.InsuranceBet())
	}
	if err := h.TakeInsurance(); !errors.Is(err, ErrInsuranceTaken) {
		t.Errorf("double insurance: got %v, want ErrInsuranceTaken", err)
	}

	three := handOf(testRules(), std(deck.Two), std(deck.Three), std(deck.Four))
	if err := three.TakeInsurance(); !errors.Is(err, ErrInsuranceNotInitial) {
		t.Errorf("insurance on 3 cards: got %v, want ErrInsuranceNotInitial", err)
	}
}

func TestInsuranceIntegerDivision(t *testing.T) {
	t.Parallel()
	h := NewHand(testRules(), 15)
	h.AddCard(std(deck.Ten))
	h.AddCard(std(deck.Six))
	if err := h.TakeInsurance(); err != nil {
		t.Fatalf("TakeInsurance: %v", err)
	}
	if h.InsuranceBet() != 7 {
		t.Errorf("InsuranceBet() = %d, want 7 (integer division)", h.InsuranceBet())
	}
}

func TestCanDoubleDown(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), std(deck.Five), std(deck.Six))
	if !h.CanDoubleDown() {
		t.Error("two-card active hand should double")
	}
	h.AddCard(std(deck.Two))
	if h.CanDoubleDown() {
		t.Error("three-card hand should not double")
	}

	r := testRules()
	r.Features.DoubleAfterSplit = false
	pair := handOf(r, deck.NewCard(deck.Spades, deck.Eight), deck.NewCard(deck.Hearts, deck.Eight))
	other, err := pair.Split()
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	pair.AddCard(std(deck.Five))
	other.AddCard(std(deck.Six))
	if pair.CanDoubleDown() || other.CanDoubleDown() {
		t.Error("double after split should be denied when toggle is off")
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), deck.NewCard(deck.Spades, deck.Eight), deck.NewCard(deck.Hearts, deck.Eight))
	other, err := h.Split()
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(h.Cards()) != 1 || len(other.Cards()) != 1 {
		t.Fatalf("split hands hold %d and %d cards, want 1 and 1", len(h.Cards()), len(other.Cards()))
	}
	if other.Bet() != h.Bet() {
		t.Errorf("split hand bet = %d, want %d", other.Bet(), h.Bet())
	}
	if h.SplitDepth() != 1 || other.SplitDepth() != 1 {
		t.Errorf("split depths = %d/%d, want 1/1", h.SplitDepth(), other.SplitDepth())
	}
	if !other.IsSplitHand() {
		t.Error("IsSplitHand() = false for split hand")
	}

	mismatch := handOf(testRules(), std(deck.Eight), std(deck.Nine))
	if _, err := mismatch.Split(); !errors.Is(err, ErrCannotSplit) {
		t.Errorf("mismatched split: got %v, want ErrCannotSplit", err)
	}
}

func TestSplitDepthLimit(t *testing.T) {
	t.Parallel()
	r := testRules()
	r.MaxSplits = 1
	h := handOf(r, deck.NewCard(deck.Spades, deck.Eight), deck.NewCard(deck.Hearts, deck.Eight))
	other, err := h.Split()
	if err != nil {
		t.Fatalf("first split: %v", err)
	}
	other.AddCard(deck.NewCard(deck.Clubs, deck.Eight))
	if other.CanSplit() {
		t.Error("resplit should be denied at the limit")
	}
}

func TestWinConditionsPriority(t *testing.T) {
	t.Parallel()
	// Five cards, three of them chaos, not busted: simultaneously five-card
	// and triple-chaos.
	h := handOf(testRules(), std(deck.Two), std(deck.Three), chaosValued(1), chaosValued(2), chaosValued(1))
	primary, secondaries := h.ExtractConditions()
	if primary != rules.TripleChaos {
		t.Errorf("primary = %v, want triple_chaos", primary)
	}
	if len(secondaries) != 1 || secondaries[0] != rules.FiveCard {
		t.Errorf("secondaries = %v, want [five_card]", secondaries)
	}
}

func TestWinConditionsEmptyWhenLost(t *testing.T) {
	t.Parallel()
	busted := handOf(testRules(), std(deck.King), std(deck.Queen), std(deck.Five))
	if conds := busted.WinConditions(); len(conds) != 0 {
		t.Errorf("busted hand conditions = %v, want none", conds)
	}

	surrendered := handOf(testRules(), std(deck.Ten), std(deck.Six))
	_ = surrendered.Surrender()
	if conds := surrendered.WinConditions(); len(conds) != 0 {
		t.Errorf("surrendered hand conditions = %v, want none", conds)
	}
}

func TestStandardWinFallback(t *testing.T) {
	t.Parallel()
	h := handOf(testRules(), std(deck.Ten), std(deck.Nine))
	primary, secondaries := h.ExtractConditions()
	if primary != rules.StandardWin {
		t.Errorf("primary = %v, want standard_win", primary)
	}
	if len(secondaries) != 0 {
		t.Errorf("secondaries = %v, want none", secondaries)
	}
}

func TestCompareTo(t *testing.T) {
	t.Parallel()
	r := testRules()
	twenty := handOf(r, std(deck.King), std(deck.Queen))
	nineteen := handOf(r, std(deck.Ten), std(deck.Nine))
	alsoTwenty := handOf(r, deck.NewCard(deck.Hearts, deck.Jack), deck.NewCard(deck.Hearts, deck.Queen))
	busted := handOf(r, std(deck.King), std(deck.Queen), std(deck.Five))
	alsoBusted := handOf(r, std(deck.King), std(deck.Nine), std(deck.Five))

	if got := twenty.CompareTo(nineteen); got != 1 {
		t.Errorf("20 vs 19 = %d, want 1", got)
	}
	if got := nineteen.CompareTo(twenty); got != -1 {
		t.Errorf("19 vs 20 = %d, want -1", got)
	}
	if got := twenty.CompareTo(alsoTwenty); got != 0 {
		t.Errorf("20 vs 20 = %d, want 0", got)
	}
	if got := busted.CompareTo(nineteen); got != -1 {
		t.Errorf("busted vs 19 = %d, want -1", got)
	}
	if got := nineteen.CompareTo(busted); got != 1 {
		t.Errorf("19 vs busted = %d, want 1", got)
	}
	// Own bust is checked before the opponent's: a busted hand never pushes.
	if got := busted.CompareTo(alsoBusted); got != -1 {
		t.Errorf("busted vs busted = %d, want -1", got)
	}
}

func TestRestoreHandRoundTrip(t *testing.T) {
	t.Parallel()
	r := testRules()
	h := RestoreHand(r, []*deck.Card{std(deck.Ace), std(deck.King)}, Blackjack, 250, true, 125, 1)
	if h.Status() != Blackjack || h.Bet() != 250 || !h.InsuranceTaken() || h.InsuranceBet() != 125 || h.SplitDepth() != 1 {
		t.Error("RestoreHand did not adopt snapshot state")
	}
	if h.Value() != 21 {
		t.Errorf("Value() = %d, want 21", h.Value())
	}
}
