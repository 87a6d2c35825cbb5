package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Rate is a decimal value decoded from an environment variable string,
// so monetary percentages never pass through float64.
type Rate struct {
	decimal.Decimal
}

func (r *Rate) Decode(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("invalid decimal rate %q: %w", value, err)
	}
	if d.IsNegative() {
		return fmt.Errorf("rate must be >= 0, got %s", value)
	}
	r.Decimal = d
	return nil
}

type Config struct {
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json or console

	// Posting policy: the VAT-style rate and the chart accounts the sale
	// pattern posts against. Resolved once at startup and injected.
	TaxRate               Rate   `envconfig:"TAX_RATE" default:"0.15"`
	ReceivableAccountCode string `envconfig:"RECEIVABLE_ACCOUNT_CODE" default:"ACCOUNTS_RECEIVABLE"`
	RevenueAccountCode    string `envconfig:"REVENUE_ACCOUNT_CODE" default:"SALES_REVENUE"`
	TaxPayableAccountCode string `envconfig:"TAX_PAYABLE_ACCOUNT_CODE" default:"TAX_PAYABLE"`

	// Tax authority I/O boundary.
	AuthorityTimeoutSeconds int `envconfig:"AUTHORITY_TIMEOUT_SECONDS" default:"10"`
	AuthorityMaxRetries     int `envconfig:"AUTHORITY_MAX_RETRIES" default:"3"`

	// Invoice number allocation retry cap. Silent unbounded retry is not
	// allowed; exhausting the cap surfaces a hard failure.
	NumberingMaxAttempts int `envconfig:"NUMBERING_MAX_ATTEMPTS" default:"3"`
}

// Load reads configuration from the environment. Callers are expected to
// have loaded .env beforehand (godotenv) where applicable.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}
