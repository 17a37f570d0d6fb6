package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"admarket/internal/database"
	"admarket/internal/repository"
)

// ledger_sweep promotes every pending ledger that has met its view target to
// available. The serving path runs the same check inline; the sweep is a
// safety net for ledgers whose threshold was crossed by a crashed request or
// lowered out of band.
func main() {
	var (
		interval = flag.Duration("interval", 5*time.Minute, "time between sweeps; 0 runs once and exits")
	)
	flag.Parse()

	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	trackers := repository.NewTrackerRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweep := func() {
		released, err := trackers.ReleaseEligible(ctx)
		if err != nil {
			log.Printf("sweep failed: %v", err)
			return
		}
		log.Printf("sweep completed: released=%d", released)
	}

	sweep()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("shutting down")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
