// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"tillbook/internal/core/id"
	"tillbook/internal/infrastructure/storage/postgres"
	"tillbook/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Seed supervisor account
	if err := seedSupervisor(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed supervisor", "error", err)
	}

	// Seed settings row
	if err := seedSettings(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed settings", "error", err)
	}

	// Seed demo data if requested
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// seedSupervisor creates the first supervisor account. Every later account
// is registered through the API by a supervisor, so this is the bootstrap.
func seedSupervisor(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	login := os.Getenv("SUPERVISOR_LOGIN")
	if login == "" {
		login = "supervisor"
	}

	password := os.Getenv("SUPERVISOR_PASSWORD")
	if password == "" {
		password = "Supervisor123!"
	}

	// Check if supervisor already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_operators WHERE login = $1 AND deleted_at IS NULL`,
		login,
	).Scan(&existingID)
	if err == nil {
		log.Infow("supervisor already exists", "login", login, "operator_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check supervisor exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	operatorID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_operators (
			id, login, name, password_hash, role, is_active,
			created_at, updated_at, version
		)
		VALUES ($1, $2, 'Supervisor', $3, 'supervisor', true, NOW(), NOW(), 1)
	`, operatorID, login, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert supervisor: %w", err)
	}

	log.Infow("supervisor created", "login", login, "operator_id", operatorID)
	return nil
}

// seedSettings writes the default settings row if none exists. The LISTEN
// side picks it up on first Get anyway; this just makes the row visible.
func seedSettings(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	_, err := pool.Pool.Exec(ctx, `
		INSERT INTO sys_settings (id, return_window_days, updated_at)
		VALUES (1, 0, NOW())
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	log.Info("settings row ensured")
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	log.Info("seeding demo data...")

	// 1. Customers
	customers := []struct {
		code  string
		name  string
		phone string
	}{
		{"CU-00001", "Walk-in", ""},
		{"CU-00002", "Corner Cafe", "+44 20 7946 0101"},
		{"CU-00003", "J. Smith", "+44 20 7946 0102"},
	}

	for _, c := range customers {
		custID := id.New()
		var phone any
		if c.phone != "" {
			phone = c.phone
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_customers (
				id, code, name, phone, balance,
				version, deletion_mark, attributes, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, 0, 1, false, '{}', NOW(), NOW())
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, custID, c.code, c.name, phone)
		if err != nil {
			log.Warnw("failed to seed customer", "name", c.name, "error", err)
		}
	}

	// 2. Products
	products := []struct {
		code      string
		name      string
		stockCode string
		barcode   string
		price     string
		weighed   bool
	}{
		{"PR-00001", "Espresso", "ESP", "5000000000011", "2.40", false},
		{"PR-00002", "Croissant", "CRS", "5000000000028", "1.80", false},
		{"PR-00003", "Loose leaf tea", "TEA-L", "", "24.00", true},
		{"PR-00004", "Sandwich", "SND", "5000000000042", "4.50", false},
		{"PR-00005", "Mineral water 500ml", "WTR", "5000000000059", "1.20", false},
	}

	for _, p := range products {
		prodID := id.New()
		var barcode any
		if p.barcode != "" {
			barcode = p.barcode
		}
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_products (
				id, code, name, stock_code, barcode, sale_price, is_weighed,
				version, deletion_mark, attributes, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, false, '{}', NOW(), NOW())
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, prodID, p.code, p.name, p.stockCode, barcode, p.price, p.weighed)
		if err != nil {
			log.Warnw("failed to seed product", "name", p.name, "error", err)
		}
	}

	log.Info("demo data seeded successfully")
	return nil
}
