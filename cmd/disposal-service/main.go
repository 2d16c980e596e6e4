package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nurpe/recycle-disposals/internal/config"
	"github.com/nurpe/recycle-disposals/internal/db"
	"github.com/nurpe/recycle-disposals/internal/logger"
	"github.com/nurpe/recycle-disposals/internal/repository"
	"github.com/nurpe/recycle-disposals/internal/seed"
	"github.com/nurpe/recycle-disposals/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "disposal-service",
		Short:         "Recycling disposal marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(cfg.Environment, cfg.LogLevel)

			database, err := db.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			return db.Migrate(database, log)
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert materials, achievement rules and profiles from a YAML file",
		Example: `  # Load the catalog shipped with the service
  disposal-service seed --file deploy/catalog.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			log := logger.New(cfg.Environment, cfg.LogLevel)

			doc, err := seed.Load(file)
			if err != nil {
				return err
			}

			database, err := db.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			if err := db.Migrate(database, log); err != nil {
				return err
			}

			store := repository.NewStore(database)
			catalogRepo := repository.NewCatalogRepository(store)
			catalog := service.NewCatalogService(service.Deps{
				Tx:      store,
				Catalog: catalogRepo,
				Log:     log,
				Timeout: cfg.Disposals.OperationTimeout,
			})
			profiles := struct {
				*repository.CompanyRepository
				*repository.WorkerRepository
			}{
				repository.NewCompanyRepository(store),
				repository.NewWorkerRepository(store),
			}
			return seed.NewSeeder(catalog, profiles, log).Apply(cmd.Context(), doc)
		},
	}

	cmd.Flags().StringVar(&file, "file", "catalog.yaml", "seed document to load")
	return cmd
}
