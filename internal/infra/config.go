package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"settle_go/internal/domain"
)

// PriceTier maps a purchasable duration to its price in the native
// asset. The intake collaborator resolves the customer's choice
// against this table.
type PriceTier struct {
	Days   int             `yaml:"days"`
	Amount decimal.Decimal `yaml:"amount"`
}

// Config holds every runtime setting. Secrets are overridable via
// environment variables after the file is loaded.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Ledger struct {
		RestURL string `yaml:"rest_url"`
		WSURL   string `yaml:"ws_url"`
		APIKey  string `yaml:"api_key"`
		Asset   string `yaml:"asset"`
		// BaseUnitScale converts the ledger's integer base unit to the
		// decimal native amount, e.g. 1e9 for nano-denominated chains.
		BaseUnitScale int64 `yaml:"base_unit_scale"`
		// MasterWallet receives forwarded funds on confirmation.
		MasterWallet string `yaml:"master_wallet"`
	} `yaml:"ledger"`

	Payment struct {
		WindowMinutes int             `yaml:"window_minutes"`
		GasFloor      decimal.Decimal `yaml:"gas_floor"`
		Prices        []PriceTier     `yaml:"prices"`
	} `yaml:"payment"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, then applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Ledger.RestURL, "http://") && !strings.HasPrefix(c.Ledger.RestURL, "https://") {
		return fmt.Errorf("invalid ledger REST URL: %s", c.Ledger.RestURL)
	}
	if c.Ledger.WSURL != "" && !strings.HasPrefix(c.Ledger.WSURL, "ws://") && !strings.HasPrefix(c.Ledger.WSURL, "wss://") {
		return fmt.Errorf("invalid ledger WS URL: %s", c.Ledger.WSURL)
	}
	if c.Ledger.Asset == "" {
		return fmt.Errorf("ledger asset code is required")
	}
	if c.Ledger.BaseUnitScale <= 0 {
		return fmt.Errorf("base unit scale must be positive")
	}
	if c.Ledger.MasterWallet == "" {
		return fmt.Errorf("master wallet address is required")
	}
	if c.Payment.WindowMinutes <= 0 {
		return fmt.Errorf("payment window must be positive")
	}
	if c.Payment.GasFloor.IsNegative() {
		return fmt.Errorf("gas floor must not be negative")
	}
	if len(c.Payment.Prices) == 0 {
		return fmt.Errorf("at least one price tier is required")
	}
	for _, tier := range c.Payment.Prices {
		if tier.Days <= 0 || !tier.Amount.IsPositive() {
			return fmt.Errorf("invalid price tier: days=%d amount=%s", tier.Days, tier.Amount)
		}
	}
	return nil
}

// PaymentWindow returns the configured payment window as a duration.
func (c *Config) PaymentWindow() time.Duration {
	return time.Duration(c.Payment.WindowMinutes) * time.Minute
}

// PriceFor resolves the price for a purchased duration in days.
func (c *Config) PriceFor(days int) (decimal.Decimal, error) {
	for _, tier := range c.Payment.Prices {
		if tier.Days == days {
			return tier.Amount, nil
		}
	}
	return decimal.Zero, domain.ErrNoPriceTier
}

// overrideWithEnv applies environment variables over file values.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("SETTLE_LEDGER_API_KEY"); key != "" {
		cfg.Ledger.APIKey = key
	}
	if wallet := os.Getenv("SETTLE_MASTER_WALLET"); wallet != "" {
		cfg.Ledger.MasterWallet = wallet
	}
	if path := os.Getenv("SETTLE_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
