package main

import (
	"log"
	"net/http"

	"github.com/Chixide1/ZenWealth-sub001/src/api"
	"github.com/Chixide1/ZenWealth-sub001/src/cache"
	"github.com/Chixide1/ZenWealth-sub001/src/config"
	"github.com/Chixide1/ZenWealth-sub001/src/db"
	"github.com/Chixide1/ZenWealth-sub001/src/events"
	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/provider"
	"github.com/Chixide1/ZenWealth-sub001/src/store/postgres"
	syncer "github.com/Chixide1/ZenWealth-sub001/src/sync"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	ledgerStore := postgres.New(pool)

	plaidClient := provider.NewPlaidClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv)
	plaidProvider := provider.NewPlaidProvider(plaidClient, cfg.ProviderTimeout)

	pageCache, err := cache.New()
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}

	orchestrator := syncer.NewOrchestrator(ledgerStore, plaidProvider, cfg.FreshnessWindow).
		WithCache(pageCache)
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(cfg.KafkaBrokers)
		defer publisher.Close()
		orchestrator.WithEvents(publisher)
	}

	pager := ledger.NewPager(ledgerStore, cfg.DefaultPageSize, cfg.MaxPageSize)

	router := api.NewRouter(api.Deps{
		Pool:         pool,
		Store:        ledgerStore,
		Provider:     plaidProvider,
		PlaidClient:  plaidClient,
		Orchestrator: orchestrator,
		Pager:        pager,
		PageCache:    pageCache,
	})

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
