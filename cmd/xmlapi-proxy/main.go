package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/client"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		bootLogger := logging.NewLogger("xmlapi-proxy")
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("xmlapi-proxy")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Proxy failed")
	}
}

// run serves until ctx is cancelled or the server fails.
func run(ctx context.Context, cfg Config, logger zerolog.Logger) error {
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	xmlClient, err := newClient(cfg, be)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newMux(xmlClient, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", server.Addr).
			Str("endpoint", cfg.Endpoint).
			Str("backend", cfg.CacheBackend).
			Str("silo", xmlClient.Silo()).
			Str("user_agent", cfg.UserAgent).
			Msg("Starting XML API proxy")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Msg("Shutting down XML API proxy")
		return server.Shutdown(shutdownCtx)
	})

	if be.sweep != nil {
		g.Go(func() error {
			return be.sweep(gctx)
		})
	}

	return g.Wait()
}

// newClient builds the cached XML API client over the opened backend.
func newClient(cfg Config, be *backend) (*client.Client, error) {
	clientCfg := client.DefaultConfig(be.store)
	clientCfg.Endpoint = cfg.Endpoint
	clientCfg.UserAgent = cfg.UserAgent
	clientCfg.Coalesce = cfg.Coalesce
	clientCfg.Logger = logging.NewLogger("xmlapi-client")
	if cfg.KeyID != "" {
		clientCfg.Credential = &client.Credential{KeyID: cfg.KeyID, VCode: cfg.VCode}
	}
	return client.New(clientCfg)
}
