// Package main provides a CLI tool for setting a trainer's device passcode.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cory-johannsen/poketrainer/internal/config"
	"github.com/cory-johannsen/poketrainer/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	trainer := flag.String("trainer", "", "target trainer name (required)")
	code := flag.String("passcode", "", "new numeric passcode (required)")
	flag.Parse()

	if *trainer == "" || *code == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewTrainerRepository(pool.DB())

	tr, err := repo.GetByName(ctx, *trainer)
	if err != nil {
		log.Fatalf("looking up trainer %q: %v", *trainer, err)
	}

	if err := repo.SetPasscode(ctx, tr.Name, *code); err != nil {
		log.Fatalf("setting passcode: %v", err)
	}

	fmt.Fprintf(os.Stdout, "set passcode for %s (#%d), had passcode: %v [%s]\n",
		tr.Name, tr.ID, tr.PasscodeHash != "", time.Since(start))
}
