package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomboybathwater/chaosBattleJack/internal/server"
)

// ServeCmd runs a host table that plays rounds on an interval while the
// spectator feed broadcasts events and public snapshots.
type ServeCmd struct {
	Rules    string        `short:"c" default:"chaosjack.hcl" help:"Path to HCL rules file"`
	Addr     string        `short:"a" default:":8080" help:"Feed listen address"`
	Interval time.Duration `default:"2s" help:"Delay between simulated rounds"`
	Hands    int           `default:"2" help:"Player hands per round"`
	Bet      int           `default:"0" help:"Bet per hand (0 uses the table minimum)"`
	ShoeSeed int64         `default:"0" help:"Shoe seed (0 derives from the clock)"`
	DiceSeed int64         `default:"0" help:"Dice seed (0 derives from the clock)"`
	Verbose  bool          `short:"v" help:"Verbose logging"`
}

func (cmd *ServeCmd) Run() error {
	logger := newLogger(cmd.Verbose)

	t, tableRules, err := buildTable(cmd.Rules, cmd.ShoeSeed, cmd.DiceSeed, logger)
	if err != nil {
		return err
	}
	bet := cmd.Bet
	if bet == 0 {
		bet = tableRules.MinBet
	}

	feed := server.NewServer(cmd.Addr, t, logger, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return feed.Start(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cmd.Interval):
			}
			settlements, battle, err := playOneRound(t, cmd.Hands, bet)
			if err != nil {
				logger.Error("round failed", "error", err)
				continue
			}
			for _, s := range settlements {
				logger.Info("settled", "slot", s.Slot, "net", s.Net, "insurance", s.InsuranceNet, "battle", battle)
			}
			if err := t.EndRound(); err != nil {
				logger.Error("ending round", "error", err)
			}
		}
	})
	return g.Wait()
}
