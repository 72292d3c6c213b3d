package main

import (
	"context"
	"flag"
	"log"
	"time"

	"finvoice/internal/models"
	"finvoice/internal/repository"
	"finvoice/pkg/auth"
	"finvoice/pkg/config"
	"finvoice/pkg/logger"
	"finvoice/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	amount DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	note TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_created
	ON transactions (user_id, created_at DESC);
`

func main() {
	demo := flag.Bool("demo", false, "also create a demo user with sample transactions")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Applying schema")
	if _, err := db.Exec(ctx, schema); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	if *demo {
		if err := seedDemoData(ctx, db, appLogger); err != nil {
			appLogger.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	appLogger.Info("Database seeding completed")
}

func seedDemoData(ctx context.Context, db *pgxpool.Pool, appLogger *zap.Logger) error {
	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	if existing, _ := userRepo.GetByEmail(ctx, "demo@finvoice.dev"); existing != nil {
		appLogger.Info("Demo user already exists, skipping")
		return nil
	}

	hashedPassword, err := auth.HashPassword("demo-password")
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     "demo@finvoice.dev",
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return err
	}

	note := func(s string) *string { return &s }
	samples := []struct {
		txType   models.TransactionType
		amount   float64
		category string
		note     *string
		age      time.Duration
	}{
		{models.TypeIncome, 1500, "freelance", note("logo design gig"), 24 * time.Hour},
		{models.TypeIncome, 3200, "salary", nil, 15 * 24 * time.Hour},
		{models.TypeExpense, 85.40, "groceries", note("weekly shop"), 2 * 24 * time.Hour},
		{models.TypeExpense, 40, "transport", nil, 3 * 24 * time.Hour},
		{models.TypeExpense, 1200, "rent", nil, 14 * 24 * time.Hour},
		{models.TypeExpense, 18.99, "entertainment", note("streaming subscription"), 40 * 24 * time.Hour},
		{models.TypeIncome, 250, "freelance", nil, 45 * 24 * time.Hour},
	}

	for _, s := range samples {
		createdAt := now.Add(-s.age)
		tx := &models.Transaction{
			ID:        uuid.New(),
			UserID:    user.ID,
			Type:      s.txType,
			Amount:    s.amount,
			Category:  s.category,
			Note:      s.note,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if err := txRepo.Create(ctx, tx); err != nil {
			return err
		}
	}

	appLogger.Info("Demo user seeded",
		zap.String("email", user.Email),
		zap.Int("transactions", len(samples)),
	)
	return nil
}
