// Command reconcile cancels orders stuck in awaiting_payment past a
// configured age, releasing their seats. It is meant to run from cron;
// each run handles at most one batch and exits.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/teatralka/box-office/internal/booking"
	"github.com/teatralka/box-office/internal/config"
	"github.com/teatralka/box-office/internal/database"
	"github.com/teatralka/box-office/internal/repository"
	queue_publisher "github.com/teatralka/box-office/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()
	rcfg := config.LoadReconcile()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	engine := booking.NewEngine(repository.NewStore(db), &queue_publisher.Publisher{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	maxAge := time.Duration(rcfg.MaxAgeMin) * time.Minute
	cancelled, err := engine.ReconcileStale(ctx, maxAge, rcfg.BatchLimit)
	if err != nil {
		log.Fatalf("reconcile: %v", err)
	}
	log.Printf("reconcile: cancelled %d stale orders (max age %s)", len(cancelled), maxAge)
	for _, id := range cancelled {
		log.Printf("reconcile: order %d cancelled", id)
	}
}
