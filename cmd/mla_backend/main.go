package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantledger/merchant_ledger_app/internal/apperrors"
	"github.com/merchantledger/merchant_ledger_app/internal/core/domain"
	portsrepo "github.com/merchantledger/merchant_ledger_app/internal/core/ports/repositories"
	"github.com/merchantledger/merchant_ledger_app/internal/repositories/database/pgsql"
	"github.com/merchantledger/merchant_ledger_app/pkg/config"
	"github.com/merchantledger/merchant_ledger_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const seedActorID = "system"

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	if err := seedChartOfAccounts(context.Background(), logger, repos.AccountRepo); err != nil {
		logger.Error("Failed to seed chart of accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Provisioning complete.")
}

func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	// Open a temporary standard sql.DB connection for migrations.
	// Using pgx/v5/stdlib driver to be compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// seedChartOfAccounts inserts the well-known system accounts the posting flows
// depend on. Already-seeded codes are left untouched.
func seedChartOfAccounts(ctx context.Context, logger *slog.Logger, accountRepo portsrepo.AccountRepositoryFacade) error {
	seeds := []struct {
		code        string
		name        string
		accountType domain.AccountType
	}{
		{domain.CodeCash, "Cash", domain.Asset},
		{domain.CodeAccountsReceivable, "Accounts Receivable", domain.Asset},
		{domain.CodeInventoryAsset, "Inventory Asset", domain.Asset},
		{domain.CodeAccountsPayable, "Accounts Payable", domain.Liability},
		{domain.CodeSalesTaxPayable, "Sales Tax Payable", domain.Liability},
		{domain.CodeDeferredRevenue, "Deferred Revenue", domain.Liability},
		{domain.CodeOwnersEquity, "Owner's Equity", domain.Equity},
		{domain.CodeSalesRevenue, "Sales Revenue", domain.Revenue},
		{domain.CodeCOGS, "Cost of Goods Sold", domain.Expense},
	}

	now := time.Now().UTC()
	for _, seed := range seeds {
		account := domain.Account{
			AccountID:   uuid.NewString(),
			Code:        seed.code,
			Name:        seed.name,
			AccountType: seed.accountType,
			Balance:     decimal.Zero,
			IsActive:    true,
			IsSystem:    true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     seedActorID,
				LastUpdatedAt: now,
				LastUpdatedBy: seedActorID,
			},
		}
		err := accountRepo.SaveAccount(ctx, account)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			return err
		}
		logger.Info("Seeded account", slog.String("code", seed.code), slog.String("name", seed.name))
	}
	return nil
}
