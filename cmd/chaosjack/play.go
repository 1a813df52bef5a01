package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomboybathwater/chaosBattleJack/internal/game"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

var (
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pushStyle   = lipgloss.NewStyle().Faint(true)
	battleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true)
)

// PlayCmd simulates rounds on a host table with a hit-below-17 policy.
type PlayCmd struct {
	Rules    string `short:"c" default:"chaosjack.hcl" help:"Path to HCL rules file"`
	Rounds   int    `short:"n" default:"10" help:"Number of rounds to play"`
	Hands    int    `default:"1" help:"Player hands per round"`
	Bet      int    `default:"0" help:"Bet per hand (0 uses the table minimum)"`
	ShoeSeed int64  `default:"0" help:"Shoe seed (0 derives from the clock)"`
	DiceSeed int64  `default:"0" help:"Dice seed (0 derives from the clock)"`
	Verbose  bool   `short:"v" help:"Verbose logging"`
}

func (cmd *PlayCmd) Run() error {
	logger := newLogger(cmd.Verbose)
	t, tableRules, err := buildTable(cmd.Rules, cmd.ShoeSeed, cmd.DiceSeed, logger)
	if err != nil {
		return err
	}

	bet := cmd.Bet
	if bet == 0 {
		bet = tableRules.MinBet
	}

	totalNet := 0
	for round := 1; round <= cmd.Rounds; round++ {
		settlements, battle, err := playOneRound(t, cmd.Hands, bet)
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		fmt.Println(renderRound(round, t, settlements, battle))
		for _, s := range settlements {
			totalNet += s.Total()
		}
		if err := t.EndRound(); err != nil {
			return err
		}
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("net after %d rounds: %+d chips", cmd.Rounds, totalNet)))
	return nil
}

// playOneRound drives a full round with the simple policy: every hand hits
// below 17 and stands otherwise. Returns whether a battle round amplified the
// settlement; Settle consumes the battle flag, so it has to be sampled here.
func playOneRound(t *game.Table, hands, bet int) ([]game.Settlement, bool, error) {
	bets := make([]int, hands)
	for i := range bets {
		bets[i] = bet
	}
	if err := t.BeginRound(bets); err != nil {
		return nil, false, err
	}

	for i := 0; i < t.HandCount(); i++ {
		h, err := t.Hand(i)
		if err != nil {
			return nil, false, err
		}
		for h.Status() == game.Active && h.Value() < 17 {
			if _, err := t.Hit(i); err != nil {
				return nil, false, err
			}
		}
		if h.Status() == game.Active {
			if err := t.Stand(i); err != nil {
				return nil, false, err
			}
		}
	}

	if err := t.PlayDealer(); err != nil {
		return nil, false, err
	}
	battle := t.Chaos().BattleRoundActive()
	settlements, err := t.Settle()
	return settlements, battle, err
}

func renderRound(round int, t *game.Table, settlements []game.Settlement, battle bool) string {
	var b strings.Builder
	header := fmt.Sprintf("round %d  dealer %s (%d)  meter %d", round, renderHand(t.Dealer()), t.Dealer().Value(), t.Chaos().Meter())
	if battle {
		header += "  " + battleStyle.Render("BATTLE")
	}
	b.WriteString(headerStyle.Render(header))
	for i, s := range settlements {
		h, err := t.Hand(i)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("  slot %d %s (%d, %s) net %+d", s.Slot, renderHand(h), h.Value(), h.Status(), s.Total())
		switch {
		case s.Total() > 0:
			line = winStyle.Render(line)
		case s.Total() < 0:
			line = lossStyle.Render(line)
		default:
			line = pushStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

func renderHand(h *game.Hand) string {
	parts := make([]string, 0, len(h.Cards()))
	for _, c := range h.Cards() {
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// buildTable loads the rules and constructs the host table; NewTable
// validates before play.
func buildTable(rulesPath string, shoeSeed, diceSeed int64, logger *log.Logger) (*game.Table, *rules.TableRules, error) {
	tableRules, err := rules.Load(rulesPath)
	if err != nil {
		return nil, nil, err
	}
	if shoeSeed == 0 {
		shoeSeed = time.Now().UnixNano()
	}
	if diceSeed == 0 {
		diceSeed = shoeSeed + 1
	}
	logger.Info("building table", "shoeSeed", shoeSeed, "diceSeed", diceSeed, "shoeSize", tableRules.ShoeSize())
	t, err := game.NewTable(tableRules, shoeSeed, diceSeed, logger)
	if err != nil {
		return nil, nil, err
	}
	return t, tableRules, nil
}

func newLogger(verbose bool) *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
