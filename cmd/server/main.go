package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/config"
	"github.com/iliyamo/show-booking/internal/database"
	"github.com/iliyamo/show-booking/internal/handler"
	"github.com/iliyamo/show-booking/internal/ledger"
	"github.com/iliyamo/show-booking/internal/lifecycle"
	"github.com/iliyamo/show-booking/internal/queue"
	"github.com/iliyamo/show-booking/internal/registry"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/router"
	"github.com/iliyamo/show-booking/internal/stream"
)

func main() {
	// .env keeps local development config out of the shell profile.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// nil when redis is down; cache, limiter and streaming degrade.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: cache, rate limiting and streaming disabled")
	}

	events := repository.NewEventRepo(db)
	finance := repository.NewFinanceRepo(db)
	allocations := repository.NewAllocationRepo(db)
	actors := repository.NewActorRepo(db)
	tokens := repository.NewTokenRepo(db)

	led := ledger.NewEngine(finance)
	lc := lifecycle.NewEngine(events, finance)
	reg := registry.NewRegistry(allocations)
	hub := stream.NewHub(rdb)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(cfg, actors, tokens),
		Events:      handler.NewEventHandler(events, finance, actors, lc, led, hub),
		Finance:     handler.NewFinanceHandler(events, finance, led, hub),
		Movements:   handler.NewMovementHandler(events, finance, led, hub),
		Allocations: handler.NewAllocationHandler(events, finance, reg, led, hub),
		Actors:      handler.NewActorHandler(actors),
		Stream:      handler.NewStreamHandler(events, hub),
	}

	go func() {
		if err := queue.StartContractDispatcher(cfg.ContractWebhookURL); err != nil {
			log.Printf("contract-dispatcher: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
