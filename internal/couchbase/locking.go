package couchbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

const lockDocID = "_system::seed_lock"

// ErrLocked is returned when another process holds the lock document
var ErrLocked = errors.New("database is locked by another process")

// DatabaseLocker guards one-shot writers (the seed loader) with an expiring lock document
type DatabaseLocker struct {
	collection *gocb.Collection
	ttl        time.Duration
	owner      string
	locked     bool
}

// NewDatabaseLocker creates a new database locker
func NewDatabaseLocker(collection *gocb.Collection, ttl time.Duration) *DatabaseLocker {
	return &DatabaseLocker{
		collection: collection,
		ttl:        ttl,
	}
}

// Lock inserts the lock document; the insert fails when someone else already holds it
func (l *DatabaseLocker) Lock(ctx context.Context, owner string) error {
	if l.locked {
		return fmt.Errorf("database is already locked by %s", l.owner)
	}

	lockDoc := map[string]interface{}{
		"locked":    true,
		"lockedAt":  time.Now().UTC(),
		"lockedBy":  owner,
		"expiresAt": time.Now().UTC().Add(l.ttl),
	}

	_, err := l.collection.Insert(lockDocID, lockDoc, &gocb.InsertOptions{
		Expiry:  l.ttl,
		Context: ctx,
	})
	if errors.Is(err, gocb.ErrDocumentExists) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}

	l.locked = true
	l.owner = owner
	log.Info().Str("owner", owner).Msg("Database locked successfully")
	return nil
}

// Unlock removes the lock document
func (l *DatabaseLocker) Unlock(ctx context.Context) error {
	if !l.locked {
		return fmt.Errorf("database is not locked")
	}

	_, err := l.collection.Remove(lockDocID, &gocb.RemoveOptions{Context: ctx})
	if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}

	l.locked = false
	log.Info().Str("owner", l.owner).Msg("Database unlocked successfully")
	return nil
}

// IsLocked reports whether this locker currently holds the lock
func (l *DatabaseLocker) IsLocked() bool {
	return l.locked
}
