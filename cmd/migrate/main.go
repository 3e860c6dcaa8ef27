package main

import (
	"log"

	"github.com/medicore/medicore/internal/config"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	postgresRepo "github.com/medicore/medicore/internal/repository/postgres"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}

	logger.Info("Running database migrations...")
	if err := postgresRepo.Migrate(db); err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}

	logger.Info("Migrations completed successfully")
}
