// Package main provides a CLI tool for setting or adjusting a user's coin balance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/pokebattle/internal/config"
	"github.com/cory-johannsen/pokebattle/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	email := flag.String("email", "", "target user email (required)")
	set := flag.Int64("set", -1, "absolute balance to assign")
	add := flag.Int64("add", 0, "amount to add (negative to deduct); ignored when -set is given")
	flag.Parse()

	if *email == "" || (*set < 0 && *add == 0) {
		flag.Usage()
		os.Exit(1)
	}

	dbCfg, err := config.LoadDatabase(*configPath)
	if err != nil {
		log.Fatalf("loading database config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool.DB())

	user, err := repo.GetByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("looking up user %q: %v", *email, err)
	}

	balance := *set
	if *set >= 0 {
		err = repo.SetMoney(ctx, user.ID, *set)
	} else {
		balance, err = repo.AdjustMoney(ctx, user.ID, *add)
	}
	if err != nil {
		log.Fatalf("updating balance: %v", err)
	}

	fmt.Fprintf(os.Stdout, "balance for %s (%s): %d -> %d [%s]\n",
		user.Email, user.ID, user.Money, balance, time.Since(start))
}
