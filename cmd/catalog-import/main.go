package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"model_catalog/internal/catalog"
	"model_catalog/internal/providers"
	"model_catalog/internal/storage"
)

func main() {
	// Environment from .env when present, flags win
	_ = godotenv.Load()

	file := flag.String("file", os.Getenv("CATALOG_FILE"), "catalog YAML file to import")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing to the database")
	flag.Parse()

	fmt.Println("Model Catalog - Catalog Import")
	fmt.Println("==============================")

	if *file == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -file (or CATALOG_FILE) is required")
		os.Exit(1)
	}

	doc, err := catalog.ReadDocument(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// Items are only validated here, so the resolver is never asked for a client
	loader := catalog.NewLoader(providers.NewAWSClientResolver(nil), false)
	entries, invalid := loader.EntriesFromDocument(doc)
	if invalid != nil {
		fmt.Fprintf(os.Stderr, "WARNING: skipping invalid entries:\n%v\n", invalid)
	}
	fmt.Printf("%d valid entries in %s\n", len(entries), *file)

	if *dryRun {
		for _, entry := range entries {
			fmt.Printf("  %s\n", entry.Name)
		}
		exit(invalid)
	}

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -dsn (or DATABASE_URL) is required")
		os.Exit(1)
	}

	dbConfig := storage.DefaultDBConfig()
	dbConfig.DSN = *dsn
	dbConfig.MaxOpenConns = 2
	dbConfig.EntryCacheSize = 1

	fmt.Println("Connecting to database...")
	db, err := storage.NewDB(dbConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	repo := db.NewCatalogRepository()
	failed := 0
	for _, entry := range entries {
		if err := repo.Upsert(ctx, entry); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", entry.Name, err)
			failed++
			continue
		}
		fmt.Printf("  ✓ %s (%s)\n", entry.Name, entry.ID)
	}

	fmt.Printf("Imported %d of %d entries\n", len(entries)-failed, len(entries))
	if failed > 0 {
		os.Exit(1)
	}
	exit(invalid)
}

func exit(invalid error) {
	if invalid != nil {
		os.Exit(2)
	}
	os.Exit(0)
}
