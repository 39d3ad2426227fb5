package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"quizhub/internal/config"
	"quizhub/internal/matchstream"
)

// cmdMatchWatch tails a match's realtime updates until the match ends or the
// user interrupts.
func cmdMatchWatch(cfg *config.Config, logger *zap.Logger, args []string) {
	fs := flag.NewFlagSet("match-watch", flag.ExitOnError)
	id := fs.Int64("id", 0, "match id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := matchstream.Dial(ctx, cfg.WSBaseURL, *id, logger)
	if err != nil {
		fail(err)
	}
	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	for ev := range stream.Events() {
		switch ev.Type {
		case matchstream.EventPlayerJoined:
			fmt.Printf("+ %s joined\n", ev.Player.Username)
		case matchstream.EventPlayerLeft:
			fmt.Printf("- %s left\n", ev.Player.Username)
		case matchstream.EventMatchStarted:
			fmt.Println("match started")
		case matchstream.EventScoreUpdate:
			fmt.Printf("  player %d: %d points\n", ev.Score.PlayerID, ev.Score.Score)
		case matchstream.EventMatchEnded:
			fmt.Println("match ended")
			_ = stream.Close()
		default:
			fmt.Printf("  %s: %s\n", ev.Type, string(ev.Raw))
		}
	}
	if err := stream.Err(); err != nil {
		fail(err)
	}
}
