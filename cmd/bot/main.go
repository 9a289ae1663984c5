package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/bot"
)

func main() {
	url := flag.String("url", "http://localhost:8080", "server base URL")
	playerName := flag.String("player", "random", "scripted player (cycle, rotate, random, counter, beat-last, ensemble, or a move name)")
	rounds := flag.Int("rounds", 100, "rounds to play")
	delay := flag.Duration("delay", 0, "pause between rounds")
	seed := flag.Int64("seed", 0, "player seed (0 = random)")
	watch := flag.Bool("watch", false, "follow the match over the spectator socket")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	player, err := bot.PlayerForName(*playerName, *seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown player")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	start := time.Now()
	orch := bot.NewOrchestrator(*url, player, *rounds, *delay, *watch)
	m, err := orch.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Bot match failed")
	}
	log.Info().
		Str("matchId", m.ID).
		Str("player", player.Name()).
		Int("rounds", m.Rounds).
		Int("engineWins", m.EngineWins).
		Int("playerWins", m.OpponentWins).
		Int("draws", m.Draws).
		Dur("elapsed", time.Since(start)).
		Msg("Bot match completed")
}
