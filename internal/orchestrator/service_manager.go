package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ServiceManager runs the HTTP server until its context ends, then drains it
type ServiceManager struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewServiceManager creates a new service manager
func NewServiceManager(server *http.Server, shutdownTimeout time.Duration) *ServiceManager {
	return &ServiceManager{
		server:          server,
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is cancelled or the listener fails. In-flight requests
// get shutdownTimeout to finish.
func (sm *ServiceManager) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)

	go func() {
		log.Info().Str("addr", sm.server.Addr).Msg("API server starting")
		if err := sm.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutdown requested, draining API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
	defer cancel()

	if err := sm.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	log.Info().Msg("API server stopped")
	return nil
}
