package database_test

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/wonny/ordercast/pkg/config"
	"github.com/wonny/ordercast/pkg/database"
)

// Example demonstrates connecting to the shared PostgreSQL pool
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Printf("Database is healthy: %v\n", status.Healthy)
	fmt.Printf("Max connections: %d\n", status.Stats.MaxConns)
}

// ExampleOpenSQLite opens one store's SQLite file
func ExampleOpenSQLite() {
	path := database.SQLitePath(filepath.Join("data", "stores"), "46513")

	db, err := database.OpenSQLite(path,
		database.WithMkdirAll(),
		database.WithBusyTimeout(5000),
	)
	if err != nil {
		log.Fatalf("Failed to open store file: %v", err)
	}
	defer db.Close()

	fmt.Println(filepath.Base(path))
}
