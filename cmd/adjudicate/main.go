// Package main provides a CLI that fetches two Pokémon and prints the
// adjudicated winner.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/pokebattle/internal/app"
	"github.com/cory-johannsen/pokebattle/internal/battle"
	"github.com/cory-johannsen/pokebattle/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for fetching and adjudicating")
	asJSON := flag.Bool("json", false, "print the full bout as JSON")
	showPrompt := flag.Bool("prompt", false, "print the adjudication prompt before calling the model")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <pokemon-a> <pokemon-b>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	arena, cleanup, err := app.InitializeArena(cfg)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	bout, err := fight(ctx, arena, flag.Arg(0), flag.Arg(1), *showPrompt)
	if err != nil {
		cancel()
		cleanup()
		log.Fatalf("battle failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bout); err != nil {
			log.Fatalf("encoding bout: %v", err)
		}
		return
	}
	fmt.Fprintf(os.Stdout, "%s (%.1f) vs %s (%.1f): winner=%s [%s]\n",
		bout.A.Name, bout.A.Score, bout.B.Name, bout.B.Score, bout.Result.Winner, time.Since(start))
}

// fight runs a battle by name, printing the prompt first when asked.
func fight(ctx context.Context, arena *battle.Arena, a, b string, showPrompt bool) (battle.Bout, error) {
	if !showPrompt {
		return arena.Fight(ctx, a, b)
	}
	pa, err := arena.Fetch(ctx, a)
	if err != nil {
		return battle.Bout{}, err
	}
	pb, err := arena.Fetch(ctx, b)
	if err != nil {
		return battle.Bout{}, err
	}
	fmt.Fprintln(os.Stdout, battle.BuildPrompt(pa, pb))
	return arena.Judge(ctx, pa, pb)
}
