package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. Policy thresholds live here rather
// than as package-level constants; the source business requirements for the
// reconciliation cadence and variance alert defaults are still unconfirmed,
// so both stay overridable.
type Config struct {
	DatabaseURL  string
	MetricsPort  string
	IsProduction bool
	Debug        bool

	// Posting policy
	MaxBatchSize        int
	BackdateWarningDays int
	MaxPostingRetries   int
	RetryInitialBackoff time.Duration

	// Period close
	IncomeSummaryAccountCode string

	// Reconciliation policy
	ReconciliationCadenceDays int
	VarianceAlertPercent      float64
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("METRICS_PORT", "9090")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("MAX_BATCH_SIZE", 100)
	viper.SetDefault("BACKDATE_WARNING_DAYS", 90)
	viper.SetDefault("MAX_POSTING_RETRIES", 3)
	viper.SetDefault("RETRY_INITIAL_BACKOFF", "50ms")
	viper.SetDefault("INCOME_SUMMARY_ACCOUNT_CODE", "3900")
	viper.SetDefault("RECONCILIATION_CADENCE_DAYS", 30)
	viper.SetDefault("VARIANCE_ALERT_PERCENT", 10.0)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:               viper.GetString("PGSQL_URL"),
		MetricsPort:               viper.GetString("METRICS_PORT"),
		IsProduction:              viper.GetBool("IS_PRODUCTION"),
		Debug:                     viper.GetBool("DEBUG"),
		MaxBatchSize:              viper.GetInt("MAX_BATCH_SIZE"),
		BackdateWarningDays:       viper.GetInt("BACKDATE_WARNING_DAYS"),
		MaxPostingRetries:         viper.GetInt("MAX_POSTING_RETRIES"),
		RetryInitialBackoff:       viper.GetDuration("RETRY_INITIAL_BACKOFF"),
		IncomeSummaryAccountCode:  viper.GetString("INCOME_SUMMARY_ACCOUNT_CODE"),
		ReconciliationCadenceDays: viper.GetInt("RECONCILIATION_CADENCE_DAYS"),
		VarianceAlertPercent:      viper.GetFloat64("VARIANCE_ALERT_PERCENT"),
	}

	return cfg, nil
}
