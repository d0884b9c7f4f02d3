package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amidelab/enumerator/config"
	httpDelivery "github.com/amidelab/enumerator/internal/delivery/http"
	"github.com/amidelab/enumerator/internal/domain"
	"github.com/amidelab/enumerator/internal/infrastructure/cache"
	"github.com/amidelab/enumerator/internal/infrastructure/chem"
	"github.com/amidelab/enumerator/internal/logging"
	"github.com/amidelab/enumerator/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve enumeration over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, stderr)
		},
	}
	cmd.Flags().String("port", "8080", "HTTP listen port")
	cmd.Flags().String("reaction", domain.AmideCouplingPattern, "reaction SMARTS applied to each pair")
	return cmd
}

func runServe(cmd *cobra.Command, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting enumerate server",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Int("max_pairs", cfg.Server.MaxPairs))

	// Initialize infrastructure dependencies
	structures := cache.NewMemoryCache()
	defer structures.Close()
	engine := chem.NewEngine()

	// Initialize usecase layer
	loader := usecase.NewReagentLoader(engine, structures, logger, usecase.ReagentLoaderConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	service := usecase.NewEnumerationService(engine, logger)
	transform, err := service.CompileTransform(cfg.Reaction.Pattern)
	if err != nil {
		return err
	}

	handler := httpDelivery.NewHandler(loader, service, logger, httpDelivery.HandlerConfig{
		Transform: transform,
		MaxPairs:  cfg.Server.MaxPairs,
		Version:   version,
	})
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-cmd.Context().Done():
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
