package main

import (
	"context"
	"time"

	bookingsrepo "spacebook/internal/bookings/repository"
	mongoMigration "spacebook/internal/migrations/mongo"
	resourcesrepo "spacebook/internal/resources/repository"
	"spacebook/pkg/config"

	"github.com/joho/godotenv"
)

const JobName = "storage-migration"

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.Log.Info("Starting storage migration job", "backend", cfg.StorageBackend)
	cfg.SetStorage()
	defer cfg.GracefulShutdown()

	switch cfg.StorageBackend {
	case config.StorageMongo:
		migrateMongo(ctx, cfg)
	case config.StorageSQLite:
		migrateSQLite(cfg)
	default:
		cfg.Log.Info("Memory backend has no schema, nothing to migrate")
		return
	}
	cfg.Log.Info("Migration completed successfully")
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

func migrateSQLite(cfg *config.Config) {
	if err := resourcesrepo.MigrateSQLite(cfg.Client.SQLite); err != nil {
		cfg.Log.Fatal("Resources migration failed", "error", err)
	}
	if err := bookingsrepo.MigrateSQLite(cfg.Client.SQLite); err != nil {
		cfg.Log.Fatal("Bookings migration failed", "error", err)
	}
}
