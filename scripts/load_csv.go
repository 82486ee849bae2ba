//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"income-recommendation-engine/internal/services/database"
	"income-recommendation-engine/internal/utils"
)

func main() {
	fmt.Println("=== Feature CSV Loader ===")
	fmt.Println()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/load_csv.go <file.csv>")
		os.Exit(1)
	}
	path := os.Args[1]

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ Failed to read CSV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📖 Parsing %s...\n", path)
	parser := utils.NewFeatureCSVParser()
	rows, parseErrors := parser.ParseFeatures(string(content))
	fmt.Printf("   Parsed rows: %d, parse errors: %d\n", len(rows), len(parseErrors))
	for i, e := range parseErrors {
		if i >= 5 {
			fmt.Printf("   ... and %d more errors\n", len(parseErrors)-5)
			break
		}
		fmt.Printf("   - %v\n", e)
	}

	if len(rows) == 0 {
		fmt.Println("❌ No valid feature rows found")
		os.Exit(1)
	}

	fmt.Println("📡 Connecting to database...")
	db, err := database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := database.NewClientRepository(db)

	start := time.Now()
	result, err := repo.BulkUpsert(ctx, rows)
	if err != nil {
		fmt.Printf("❌ Failed to upsert features: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Upserted %d clients (%d failed) in %s\n",
		result.UpsertedCount, result.FailedCount, time.Since(start).Round(time.Millisecond))
	for i, e := range result.Errors {
		if i >= 5 {
			fmt.Printf("   ... and %d more errors\n", len(result.Errors)-5)
			break
		}
		fmt.Printf("   - %s\n", e)
	}

	fmt.Println()
	fmt.Println("🎉 Feature load completed!")
}
