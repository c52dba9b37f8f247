package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skydispatch/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Background is a long-running component that stops when ctx is cancelled.
type Background interface {
	Run(ctx context.Context) error
}

// Run serves handler on cfg.Address next to the background components and
// blocks until ctx is canceled or one of them fails.
func Run(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, log *zap.Logger, background ...Background) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, b := range background {
		g.Go(func() error { return b.Run(gctx) })
	}

	g.Go(func() error {
		log.Info("http server listening", zap.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen http %s: %w", cfg.Address, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("http server stopped")
		return nil
	})

	return g.Wait()
}
