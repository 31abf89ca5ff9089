package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	IsProduction  bool
	EnableDBCheck bool

	// SalesTaxRate is the flat tax rate contained in tax-inclusive sales prices,
	// e.g. 0.14 means a displayed price of 114.00 carries 14.00 of tax.
	SalesTaxRate decimal.Decimal

	// AllowZeroCostItems permits posting purchase invoice items with a zero unit
	// cost (sample/bonus stock). When false, zero-cost items block posting.
	AllowZeroCostItems bool

	// DefaultWarehouseID receives released stock for legacy order lines that
	// carry no warehouse reference.
	DefaultWarehouseID string

	// PaymentRoundingTolerance is the residual below which a supplier invoice is
	// considered fully paid. It absorbs currency-rounding noise from prior
	// partial payments; journal balance checks never use it.
	PaymentRoundingTolerance decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("SALES_TAX_RATE", "0.14")
	viper.SetDefault("ALLOW_ZERO_COST_ITEMS", false)
	viper.SetDefault("DEFAULT_WAREHOUSE_ID", "")
	viper.SetDefault("PAYMENT_ROUNDING_TOLERANCE", "0.01")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.AllowZeroCostItems = viper.GetBool("ALLOW_ZERO_COST_ITEMS")
	cfg.DefaultWarehouseID = viper.GetString("DEFAULT_WAREHOUSE_ID")

	taxRateStr := viper.GetString("SALES_TAX_RATE")
	taxRate, err := decimal.NewFromString(taxRateStr)
	if err != nil || taxRate.IsNegative() {
		taxRate = decimal.RequireFromString("0.14")
		log.Printf("Warning: Invalid value for SALES_TAX_RATE ('%s'). Defaulting to %s.\n", taxRateStr, taxRate.String())
	}
	cfg.SalesTaxRate = taxRate

	toleranceStr := viper.GetString("PAYMENT_ROUNDING_TOLERANCE")
	tolerance, err := decimal.NewFromString(toleranceStr)
	if err != nil || tolerance.IsNegative() {
		tolerance = decimal.RequireFromString("0.01")
		log.Printf("Warning: Invalid value for PAYMENT_ROUNDING_TOLERANCE ('%s'). Defaulting to %s.\n", toleranceStr, tolerance.String())
	}
	cfg.PaymentRoundingTolerance = tolerance

	return cfg, nil
}
