package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/config"
	"stealthcompany.com/oncoaide/internal/couchbase"
	"stealthcompany.com/oncoaide/internal/records"
	"stealthcompany.com/oncoaide/internal/seed"
	"stealthcompany.com/oncoaide/pkg/zerolog_config"
)

// seedTarget is the part of the Couchbase client the seed run writes through
type seedTarget interface {
	records.DocumentClient
	EnsurePrimaryIndex(ctx context.Context) error
}

// seedLocker guards the run against a concurrent seeder
type seedLocker interface {
	Lock(ctx context.Context, owner string) error
	Unlock(ctx context.Context) error
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	zerolog_config.SetAppPrefix("oncoaide-seed")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Msg("Starting oncoaide-seed")

	source := cfg.SeedSource
	if len(os.Args) > 1 {
		source = os.Args[1]
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

	runErr := run(context.Background(), dbClient, dbClient.GetLocker(), source)

	if err := dbClient.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close Couchbase connection")
	}

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Seed load failed")
	}
}

// run seeds source into target while holding the lock. A lock held by
// another process is not an error: that run does the seeding.
func run(ctx context.Context, target seedTarget, locker seedLocker, source string) error {
	if err := target.EnsurePrimaryIndex(ctx); err != nil {
		return fmt.Errorf("ensure primary index: %w", err)
	}

	log.Info().Msg("Locking database for seeding")
	if err := locker.Lock(ctx, uuid.NewString()); err != nil {
		if errors.Is(err, couchbase.ErrLocked) {
			log.Warn().Msg("Another seed run holds the lock, exiting")
			return nil
		}
		return fmt.Errorf("lock database: %w", err)
	}

	n, err := seed.NewLoader(records.NewCouchbaseStore(target), 30*time.Second).Run(ctx, source)

	log.Info().Msg("Unlocking database after seeding")
	if unlockErr := locker.Unlock(ctx); unlockErr != nil {
		log.Error().Err(unlockErr).Msg("Failed to unlock database")
	}

	if err != nil {
		return fmt.Errorf("seed load after %d inserts: %w", n, err)
	}

	log.Info().Int("inserted", n).Msg("Seed load completed successfully")
	return nil
}
