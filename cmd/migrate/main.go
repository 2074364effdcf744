package main

// Prepare the configured database:
//   go run ./cmd/migrate
//
// Postgres URLs get the embedded goose migrations; mongodb:// URLs get the
// referral indexes.

import (
	"context"
	"log"
	"os"
	"strings"

	"referral-intake/internal/referrals"
	"referral-intake/internal/shared/config"
	"referral-intake/internal/shared/storage/db"
	"referral-intake/internal/shared/storage/docdb"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	url := strings.TrimSpace(cfg.DatabaseURL)
	if url == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}

	if docdb.IsMongoURI(url) {
		client, err := docdb.Connect(ctx, url)
		if err != nil {
			log.Printf("failed to connect mongo: %v", err)
			os.Exit(1)
		}
		defer client.Disconnect(ctx)

		repo := referrals.NewMongoRepo(client.Database(docdb.DatabaseFromURI(url, cfg.MongoDatabase)))
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Printf("failed to create indexes: %v", err)
			os.Exit(1)
		}
		return
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, url, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}
