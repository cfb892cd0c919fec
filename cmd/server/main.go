package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/teatralka/box-office/internal/booking"
	"github.com/teatralka/box-office/internal/config"
	"github.com/teatralka/box-office/internal/database"
	"github.com/teatralka/box-office/internal/handler"
	"github.com/teatralka/box-office/internal/queue"
	"github.com/teatralka/box-office/internal/repository"
	"github.com/teatralka/box-office/internal/router"
	queue_publisher "github.com/teatralka/box-office/internal/service"
)

func main() {
	// .env is a development convenience; in deployed environments the
	// variables come from the runtime.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewStore(db)
	engine := booking.NewEngine(store, &queue_publisher.Publisher{})

	rdb := config.NewRedisClient() // nil disables rate limiting and the cache

	go queue.StartSettlementConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger(), echomw.Recover())
	router.Register(e, router.Deps{
		Orders:        handler.NewOrderHandler(engine, store.Orders, store.Sales),
		Avail:         handler.NewAvailabilityHandler(engine, store.Schedule),
		Settlements:   handler.NewSettlementHandler(engine),
		Blocks:        handler.NewBlockHandler(engine),
		JWTSecret:     cfg.JWTSecret,
		WebhookSecret: cfg.WebhookSecret,
		RateLimit:     config.LoadRateLimitConfig(),
		Cache:         config.LoadCacheConfig(),
		Redis:         rdb,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
