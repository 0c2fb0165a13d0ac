package bot

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/p2pbot/core/config"
	coredatabase "github.com/m3rciful/p2pbot/core/database"
)

// ExchangeConfig holds the exchange-specific settings of this bot.
type ExchangeConfig struct {
	// DepositWallet is the TON address shown to users topping up.
	DepositWallet string `yaml:"deposit_wallet" envconfig:"DEPOSIT_WALLET"`
	// BotUsername builds the referral link, e.g. t.me/<username>?start=ref_<id>.
	BotUsername string `yaml:"bot_username" envconfig:"BOT_USERNAME"`
}

// Config aggregates core bot settings with the database and exchange sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Exchange ExchangeConfig      `yaml:"exchange"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// LoadConfig reads the YAML file, applies environment overrides, and validates.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Exchange.DepositWallet) == "" {
		return nil, fmt.Errorf("exchange.deposit_wallet is required")
	}
	if strings.TrimSpace(cfg.Exchange.BotUsername) == "" {
		return nil, fmt.Errorf("exchange.bot_username is required")
	}
	return &cfg, nil
}
