package main

import (
	"os"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sisu-network/drelay/config"
	"github.com/sisu-network/drelay/database"
	"github.com/sisu-network/drelay/engine"
	"github.com/sisu-network/drelay/network"
	"github.com/sisu-network/drelay/quote"
	"github.com/sisu-network/drelay/server"
	"github.com/sisu-network/drelay/tracker"
	"github.com/sisu-network/lib/log"
)

const DefaultSweepSchedule = "@every 30s"

func initialize() (config.Drelay, database.Database) {
	err := godotenv.Load()
	if err != nil {
		panic(err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./drelay.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	db := database.NewDb(&cfg)
	if err := db.Init(); err != nil {
		panic(err)
	}

	return cfg, db
}

func setupApiServer(cfg config.Drelay, t *tracker.Tracker, quotes quote.Provider) *server.Server {
	handler := rpc.NewServer()
	if err := handler.RegisterName("relay", server.NewApi(t, quotes)); err != nil {
		panic(err)
	}

	return server.NewServer(handler, cfg.ServerPort)
}

func main() {
	cfg, db := initialize()

	eng := engine.NewRpcEngine(cfg.RouterUrl, cfg.RouterPollInterval())

	// Confirmation handlers are supplied by embedding callers; the daemon
	// relies on auto-confirm mode from the config.
	t := tracker.NewTracker(cfg, eng, nil, db)

	quotes := quote.NewProvider(cfg, network.NewHttp())

	schedule := cfg.SweepSchedule
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(schedule, t.CheckForTimedOutOperations); err != nil {
		panic(err)
	}
	sweeper.Start()

	log.Info("Starting drelay, router = ", cfg.RouterUrl)

	setupApiServer(cfg, t, quotes).Run()
}
