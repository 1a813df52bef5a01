package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tomboybathwater/chaosBattleJack/internal/deck"
	"github.com/tomboybathwater/chaosBattleJack/internal/game"
	"github.com/tomboybathwater/chaosBattleJack/internal/protocol"
	"github.com/tomboybathwater/chaosBattleJack/internal/rules"
)

// VerifyCmd rebuilds a shoe and dice stream from explicit seeds and prints
// the resulting trace. Two participants given the same seeds and rules can
// diff the output to confirm they are synchronized without either side
// transmitting card contents.
type VerifyCmd struct {
	Rules    string `short:"c" default:"chaosjack.hcl" help:"Path to HCL rules file"`
	ShoeSeed int64  `arg:"" help:"Shoe seed to replay"`
	DiceSeed int64  `arg:"" help:"Dice seed to replay"`
	Cards    int    `default:"16" help:"Number of cards to trace"`
	Rolls    int    `default:"8" help:"Number of dice rolls to trace per side"`
}

func (cmd *VerifyCmd) Run() error {
	tableRules, err := rules.Load(cmd.Rules)
	if err != nil {
		return err
	}
	if err := tableRules.Validate(); err != nil {
		return err
	}

	chaosCards := 0
	if tableRules.Features.Chaos {
		chaosCards = tableRules.ChaosCards
	}
	shoe := deck.NewShoe(cmd.ShoeSeed, tableRules.Decks, chaosCards, tableRules.ReshuffleThreshold)
	shoe.Shuffle()

	cards := make([]string, 0, cmd.Cards)
	for i := 0; i < cmd.Cards; i++ {
		cards = append(cards, shoe.Deal(true).String())
	}
	fmt.Printf("cards:  %s\n", strings.Join(cards, " "))

	engine := game.NewChaosEngine(tableRules, cmd.DiceSeed, nil)
	player := make([]string, 0, cmd.Rolls)
	house := make([]string, 0, cmd.Rolls)
	for i := 0; i < cmd.Rolls; i++ {
		player = append(player, fmt.Sprintf("%d", engine.Roll(true)))
	}
	for i := 0; i < cmd.Rolls; i++ {
		house = append(house, fmt.Sprintf("%d", engine.Roll(false)))
	}
	fmt.Printf("player: %s\n", strings.Join(player, " "))
	fmt.Printf("house:  %s\n", strings.Join(house, " "))

	summary, err := json.Marshal(protocol.SummarizeShoe(shoe))
	if err != nil {
		return err
	}
	fmt.Printf("shoe:   %s\n", summary)
	return nil
}
