package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"paper-core/internal/api"
	"paper-core/internal/engine"
	"paper-core/internal/events"
	"paper-core/internal/market"
	"paper-core/internal/monitor"
	"paper-core/internal/strategy"
	"paper-core/pkg/cache"
	"paper-core/pkg/config"
	"paper-core/pkg/db"
	"paper-core/pkg/i18n"
	"paper-core/pkg/market/coingecko"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(i18n.Get("ConfigLoadFailed"), err)
	}

	i18n.SetLanguage(i18n.Language(cfg.Language))
	log.Println(i18n.Get("Starting"))
	log.Printf(i18n.Get("ConfigLoaded"), cfg.Port)
	log.Printf(i18n.Get("UsingDBPath"), cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	assetsFile, err := strategy.LoadFile(cfg.AssetsFile)
	if err != nil {
		log.Fatalf(i18n.Get("AssetsLoadFailed"), err)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf(i18n.Get("DBInitFailed"), err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf(i18n.Get("DBMigrationsFailed"), err)
	}
	store := db.NewStore(database.DB)

	// System metrics for monitoring
	sysMetrics := monitor.NewSystemMetrics()
	log.Println(i18n.Get("MetricsInit"))

	quotes := cache.NewShardedQuoteCache()

	eng := engine.New(engine.Config{
		Assets:         assetsFile.Assets,
		Params:         assetsFile.Params,
		Enabled:        assetsFile.Enabled,
		InitialBalance: cfg.InitialBalance,
	}, bus, sysMetrics, quotes)
	log.Printf(i18n.Get("EngineInit"), len(assetsFile.Assets), strategy.NumKinds())
	log.Printf(i18n.Get("BalanceInitialized"), cfg.InitialBalance)

	// Resume the previous session if one was persisted.
	if err := eng.Load(ctx, store); err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Printf(i18n.Get("SnapshotLoadFailed"), err)
		}
	} else {
		state := eng.State()
		log.Printf(i18n.Get("SnapshotRestored"), state.Balance, len(state.Positions), len(state.Trades))
	}

	// Quote source (mock first, real later)
	var source market.QuoteSource
	if cfg.UseMockQuotes {
		source = &market.MockSource{StartPrice: 100, Step: 0.8}
		log.Println(i18n.Get("MockQuotesEnabled"))
	} else {
		source = coingecko.NewClient(cfg.QuoteTimeout)
		log.Println(i18n.Get("CoinGeckoEnabled"))
	}

	loop := &engine.Loop{
		Engine:       eng,
		Source:       source,
		Store:        store,
		Metrics:      sysMetrics,
		Interval:     cfg.TickInterval,
		QuoteTimeout: cfg.QuoteTimeout,
	}
	go loop.Run(ctx)

	server := api.NewServer(bus, eng, store, quotes, sysMetrics, api.SystemMeta{
		UseMockQuotes: cfg.UseMockQuotes,
		TickInterval:  cfg.TickInterval,
		Version:       version(),
	}, cfg.JWTSecret)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf(i18n.Get("APIServerError"), err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println(i18n.Get("ShuttingDown"))
	cancel()

	if err := eng.Save(context.Background(), store); err != nil {
		log.Printf(i18n.Get("SnapshotSaveFailed"), err)
	}
}

func version() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "v1.0-dev"
}
