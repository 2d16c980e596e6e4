package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/recycle-disposals/internal/auth"
	"github.com/nurpe/recycle-disposals/internal/cache"
	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/db"
	"github.com/nurpe/recycle-disposals/internal/events"
	"github.com/nurpe/recycle-disposals/internal/excel"
	httphandler "github.com/nurpe/recycle-disposals/internal/http"
	"github.com/nurpe/recycle-disposals/internal/http/middleware"
	"github.com/nurpe/recycle-disposals/internal/logger"
	"github.com/nurpe/recycle-disposals/internal/metrics"
	"github.com/nurpe/recycle-disposals/internal/pdf"
	"github.com/nurpe/recycle-disposals/internal/repository"
	"github.com/nurpe/recycle-disposals/internal/service"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cfg, !skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on start")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	if migrate {
		if err := db.Migrate(database, log); err != nil {
			return err
		}
	}

	catalogCache, closeCache, err := cache.New(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("failed to init catalog cache: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Warn().Err(err).Msg("close catalog cache")
		}
	}()

	publisher, err := events.New(cfg.Events, log)
	if err != nil {
		return fmt.Errorf("failed to init event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("close event publisher")
		}
	}()

	store := repository.NewStore(database)
	reg := metrics.New()
	deps := service.Deps{
		Tx:        store,
		Disposals: repository.NewDisposalRepository(store),
		Companies: repository.NewCompanyRepository(store),
		Workers:   repository.NewWorkerRepository(store),
		Catalog:   repository.NewCatalogRepository(store),
		Cache:     catalogCache,
		Publisher: publisher,
		Metrics:   reg,
		Log:       log,
		Timeout:   cfg.Disposals.OperationTimeout,
	}

	handler := httphandler.NewHandler(httphandler.Services{
		Disposals: service.NewDisposalService(deps),
		Companies: service.NewCompanyService(deps),
		Catalog:   service.NewCatalogService(deps),
		Workers:   service.NewWorkerService(deps),
		Reports:   service.NewReportService(deps, excel.NewGenerator(), pdf.NewGenerator()),
	}, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), httphandler.RouterOptions{
		Environment:    cfg.Environment,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            log,
		Metrics:        reg,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting disposal service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return err
	}
	return nil
}
