package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"SVMonit/internal/indicator"
	"SVMonit/internal/series"
)

// Data providers.
const (
	ProviderCoinGecko = "coingecko"
	ProviderVsTrader  = "vstrader"
	ProviderMock      = "mock"
)

// RSI sources.
const (
	RSISynthetic = "synthetic"
	RSIPrice     = "price"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider   string `yaml:"provider"`
		BaseURL    string `yaml:"base_url"`
		APIKey     string `yaml:"api_key"`
		CoinID     string `yaml:"coin_id"`
		Symbol     string `yaml:"symbol"`
		VsCurrency string `yaml:"vs_currency"`
		Days       int    `yaml:"days"`
	} `yaml:"data_source"`
	Indicators struct {
		Formula   string `yaml:"formula"`
		Seed      uint64 `yaml:"seed"`
		RSISource string `yaml:"rsi_source"`
		RSIPeriod int    `yaml:"rsi_period"`
	} `yaml:"indicators"`
	Forecast struct {
		Steps int `yaml:"steps"`
	} `yaml:"forecast"`
	Selection struct {
		DefaultInterval string `yaml:"default_interval"`
	} `yaml:"selection"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	setString("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	setString("DATA_PROVIDER", &c.DataSource.Provider)
	setString("DATA_BASE_URL", &c.DataSource.BaseURL)
	setString("DATA_API_KEY", &c.DataSource.APIKey)
	setString("COIN_ID", &c.DataSource.CoinID)
	setString("INDICATOR_FORMULA", &c.Indicators.Formula)
	setString("RSI_SOURCE", &c.Indicators.RSISource)
	setString("DEFAULT_INTERVAL", &c.Selection.DefaultInterval)
	setString("CRON_REPORT", &c.Schedule.ReportCron)
	setString("SQLITE_PATH", &c.Database.SQLitePath)
	setString("METRICS_ADDR", &c.Metrics.Addr)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("HTTPS_PROXY", &c.Proxy)

	if v := os.Getenv("DATA_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DATA_DAYS: %w", err)
		}
		c.DataSource.Days = n
	}
	if v := os.Getenv("FORECAST_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FORECAST_STEPS: %w", err)
		}
		c.Forecast.Steps = n
	}
	if v := os.Getenv("INDICATOR_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("INDICATOR_SEED: %w", err)
		}
		c.Indicators.Seed = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderCoinGecko
	}
	if c.DataSource.CoinID == "" {
		c.DataSource.CoinID = "bitcoin"
	}
	if c.DataSource.Symbol == "" {
		c.DataSource.Symbol = "BTCUSD"
	}
	if c.DataSource.VsCurrency == "" {
		c.DataSource.VsCurrency = "usd"
	}
	if c.DataSource.Days == 0 {
		c.DataSource.Days = 90
	}
	if c.Indicators.Formula == "" {
		c.Indicators.Formula = indicator.DefaultFormula.Name
	}
	if c.Indicators.RSISource == "" {
		c.Indicators.RSISource = RSISynthetic
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Forecast.Steps == 0 {
		c.Forecast.Steps = 180
	}
	if c.Selection.DefaultInterval == "" {
		c.Selection.DefaultInterval = "7d"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/svmonit.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	switch c.DataSource.Provider {
	case ProviderCoinGecko, ProviderMock:
	case ProviderVsTrader:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for %s", ProviderVsTrader)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Days <= 0 {
		return fmt.Errorf("data_source.days must be positive")
	}
	if _, err := indicator.FormulaByName(c.Indicators.Formula); err != nil {
		return fmt.Errorf("indicators.formula: %w", err)
	}
	if c.Indicators.RSISource != RSISynthetic && c.Indicators.RSISource != RSIPrice {
		return fmt.Errorf("indicators.rsi_source must be %q or %q", RSISynthetic, RSIPrice)
	}
	if c.Indicators.RSIPeriod <= 0 {
		return fmt.Errorf("indicators.rsi_period must be positive")
	}
	if c.Forecast.Steps <= 0 {
		return fmt.Errorf("forecast.steps must be positive")
	}
	if _, err := series.ParseInterval(c.Selection.DefaultInterval); err != nil {
		return fmt.Errorf("selection.default_interval: %w", err)
	}
	return nil
}
