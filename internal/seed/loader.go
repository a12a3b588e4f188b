package seed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/oncoaide/internal/metrics"
	"stealthcompany.com/oncoaide/internal/records"
)

// Inserter is the part of a record store the loader writes through
type Inserter interface {
	Insert(ctx context.Context, recs ...records.Record) (int, error)
}

// Loader reads seed records from a file or an HTTP(S) URL and inserts them
type Loader struct {
	httpClient *http.Client
	store      Inserter
}

// NewLoader creates a new seed loader
func NewLoader(store Inserter, timeout time.Duration) *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		store: store,
	}
}

// Run loads source and inserts every record it holds. It returns the
// number of records inserted.
func (l *Loader) Run(ctx context.Context, source string) (int, error) {
	startTime := time.Now()
	log.Info().Str("source", source).Msg("Starting seed load")

	content, err := l.read(ctx, source)
	if err != nil {
		metrics.RecordSeedRun("read_failed", 0)
		return 0, err
	}

	recs, _, err := records.DecodeJSON(content)
	if err != nil {
		metrics.RecordSeedRun("malformed", 0)
		return 0, fmt.Errorf("failed to parse seed %s: %w", source, err)
	}

	log.Info().
		Str("source", source).
		Int("count", len(recs)).
		Msg("Parsed seed file")

	n, err := l.store.Insert(ctx, recs...)
	if err != nil {
		metrics.RecordSeedRun("store_failed", n)
		return n, fmt.Errorf("failed to store seed records: %w", err)
	}

	metrics.RecordSeedRun("success", n)
	log.Info().
		Str("source", source).
		Int("inserted", n).
		Dur("duration", time.Since(startTime)).
		Msg("Completed seed load")

	return n, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	content, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return content, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build seed request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed server returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s: %w", url, err)
	}
	return body, nil
}
