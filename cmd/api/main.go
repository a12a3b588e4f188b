package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/api"
	"stealthcompany.com/oncoaide/internal/assistant"
	"stealthcompany.com/oncoaide/internal/config"
	"stealthcompany.com/oncoaide/internal/couchbase"
	"stealthcompany.com/oncoaide/internal/llm"
	"stealthcompany.com/oncoaide/internal/metrics"
	"stealthcompany.com/oncoaide/internal/orchestrator"
	"stealthcompany.com/oncoaide/internal/records"
	"stealthcompany.com/oncoaide/internal/render"
	"stealthcompany.com/oncoaide/internal/seed"
	"stealthcompany.com/oncoaide/pkg/zerolog_config"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	zerolog_config.SetAppPrefix("oncoaide-api")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Msg("Starting oncoaide-api service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := orchestrator.NewSignalHandler()
	defer signals.Stop()
	signals.HandleSignals(ctx, cancel)

	metrics.StartSystemMetrics(ctx, 15*time.Second)

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
	})
	svc := assistant.New(store, llmClient, render.New())

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           api.SetupRoutes(api.NewHandler(store, svc), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := orchestrator.NewServiceManager(server, 15*time.Second).Run(ctx); err != nil {
		closeStore()
		log.Fatal().Err(err).Msg("API server exited")
	}
}

// openStore connects the configured backend. The memory backend is filled
// from SEED_SOURCE so a fresh process has something to serve.
func openStore(ctx context.Context, cfg *config.Config) (records.Store, func()) {
	if cfg.StoreBackend == config.BackendMemory {
		store := records.NewMemoryStore()
		if _, err := seed.NewLoader(store, 30*time.Second).Run(ctx, cfg.SeedSource); err != nil {
			log.Warn().Err(err).Str("source", cfg.SeedSource).Msg("Memory store starts empty")
		}
		log.Info().Int("records", store.Len()).Msg("Using in-memory record store")
		return store, func() {}
	}

	dbClient, err := couchbase.NewClient(couchbase.Options{
		URL:        cfg.CouchbaseURL,
		Username:   cfg.CouchbaseUsername,
		Password:   cfg.CouchbasePassword,
		Bucket:     cfg.CouchbaseBucket,
		Scope:      cfg.CouchbaseScope,
		Collection: cfg.CouchbaseCollection,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Couchbase")
	}

	if err := dbClient.EnsurePrimaryIndex(ctx); err != nil {
		_ = dbClient.Close()
		log.Fatal().Err(err).Msg("Failed to ensure primary index")
	}

	log.Info().Str("keyspace", dbClient.Keyspace()).Msg("Using Couchbase record store")
	return records.NewCouchbaseStore(dbClient), func() {
		if err := dbClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Couchbase connection")
		}
	}
}
