package main

import (
	"log"
	"os"
	"path/filepath"

	"offline-chat-be/internal/config"
	"offline-chat-be/internal/repository/migration"
	"offline-chat-be/pkg/database"
)

// Brings the schema up to date and seeds the uncategorized buckets and the
// default personality. Safe to run repeatedly.
func main() {
	cfg := config.Load()

	if cfg.Database.Driver == database.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Connection), 0o755); err != nil {
			log.Fatal("Error: Failed to create data directory:", err)
		}
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Driver, cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Migrating %s database...", cfg.Database.Driver)
	if err := migration.Migrate(db); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Migration completed")
}
