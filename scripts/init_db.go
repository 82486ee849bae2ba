//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

const schema = `
CREATE TABLE IF NOT EXISTS client_features (
	id BIGINT PRIMARY KEY,
	features JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_client_features_adminarea
	ON client_features ((features->>'adminarea'));
CREATE INDEX IF NOT EXISTS idx_client_features_city
	ON client_features ((features->>'city'));

CREATE TABLE IF NOT EXISTS prediction_logs (
	id BIGSERIAL PRIMARY KEY,
	client_id BIGINT NOT NULL,
	predicted_income DOUBLE PRECISION NOT NULL,
	actual_income DOUBLE PRECISION,
	prediction_error DOUBLE PRECISION,
	prediction_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	request_id TEXT NOT NULL,
	source TEXT NOT NULL DEFAULT 'model'
);

CREATE INDEX IF NOT EXISTS idx_prediction_logs_client
	ON prediction_logs (client_id, prediction_time DESC);

CREATE TABLE IF NOT EXISTS feature_descriptions (
	feature_name TEXT PRIMARY KEY,
	description TEXT NOT NULL
);
`

// seedDescriptions are the human-readable labels for the features the risk
// scorer and the SHAP endpoint surface most often.
var seedDescriptions = map[string]string{
	"incomeValue":                          "Подтверждённый доход клиента",
	"incomePerCapitaValue":                 "Доход на члена семьи",
	"incomeValueCategory":                  "Категория подтверждённого дохода",
	"age":                                  "Возраст клиента",
	"hdb_bki_total_cc_balance":             "Суммарный баланс по кредитным картам (БКИ)",
	"hdb_bki_total_pil_balance":            "Суммарный баланс по потребительским кредитам (БКИ)",
	"hdb_bki_total_ip_balance":             "Суммарный баланс по ипотеке (БКИ)",
	"avg_annual_payment_sum":               "Средний годовой платёж по кредитам",
	"hdb_bki_total_max_overdue_sum":        "Максимальная сумма просрочки (БКИ)",
	"ovrd_sum":                             "Текущая сумма просрочки",
	"hdb_ovrd_sum":                         "Сумма просрочки (внутренние данные)",
	"loan_cnt":                             "Количество кредитов",
	"other_credits_count":                  "Количество прочих кредитов",
	"days_after_last_request":              "Дней с последнего кредитного запроса",
	"vert_pil_loan_application_success_3m": "Доля одобренных заявок за 3 месяца",
	"dp_ils_total_seniority":               "Общий трудовой стаж",
}

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// First connect to the default 'postgres' database to create ours
	postgresURL := strings.Replace(databaseURL, "/income_recommendation", "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = 'income_recommendation')").Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("📦 Creating 'income_recommendation' database...")
		_, err = adminConn.Exec(ctx, "CREATE DATABASE income_recommendation")
		if err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Println("✅ Database 'income_recommendation' created!")
	} else {
		fmt.Println("✅ Database 'income_recommendation' already exists")
	}
	adminConn.Close(ctx)

	fmt.Println("📡 Connecting to income_recommendation database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("🚀 Executing database schema...")
	if _, err := conn.Exec(ctx, schema); err != nil {
		fmt.Printf("❌ Failed to execute schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Database schema executed successfully!")

	fmt.Println("🌱 Seeding feature descriptions...")
	for name, description := range seedDescriptions {
		_, err := conn.Exec(ctx,
			`INSERT INTO feature_descriptions (feature_name, description)
			 VALUES ($1, $2)
			 ON CONFLICT (feature_name) DO UPDATE SET description = EXCLUDED.description`,
			name, description)
		if err != nil {
			fmt.Printf("⚠️  Warning: Could not seed description for %s: %v\n", name, err)
		}
	}

	var descCount int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM feature_descriptions").Scan(&descCount); err == nil {
		fmt.Printf("   📋 Feature descriptions in database: %d\n", descCount)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Load feature data: go run scripts/load_csv.go <file.csv>")
	fmt.Println("  2. Start the server: go run cmd/server/main.go")
}
