package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Secrets (from .env)
	AlpacaAPIKey    string
	AlpacaAPISecret string
	AlpacaBaseURL   string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// HTTP API
	APIPort int

	// Universe
	QuoteChunkSize     int
	UniverseCacheHours int

	// Momentum strategy
	MomentumWindow     int
	MomentumMinPeriods int
	PortfolioSize      int
	HistoryLookbackDays int
	StrategyName       string

	// Risk
	MaxOrdersPerRun     int
	MaxOrderNotionalUSD float64

	// Scheduling
	MarketTimezone string
	UpdateTime     string // HH:MM in market timezone, after the close
	TradeTime      string // HH:MM in market timezone, while the market is open

	// Modes
	DryRun       bool
	DebugCSVPath string // divert updater output to a CSV file instead of the warehouse
	LogLevel     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		AlpacaAPIKey:    envStr("APCA_API_KEY_ID", ""),
		AlpacaAPISecret: envStr("APCA_API_SECRET_KEY", ""),
		AlpacaBaseURL:   envStr("ALPACA_BASE_URL", "https://paper-api.alpaca.markets"),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "MomentumTrader"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "equity_data"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// HTTP API
		APIPort: envInt("API_PORT", 3001),

		// Universe
		QuoteChunkSize:     envInt("QUOTE_CHUNK_SIZE", 200),
		UniverseCacheHours: envInt("UNIVERSE_CACHE_HOURS", 24),

		// Strategy
		MomentumWindow:      envInt("MOMENTUM_WINDOW", 125),
		MomentumMinPeriods:  envInt("MOMENTUM_MIN_PERIODS", 40),
		PortfolioSize:       envInt("PORTFOLIO_SIZE", 10),
		HistoryLookbackDays: envInt("HISTORY_LOOKBACK_DAYS", 365),
		StrategyName:        envStr("STRATEGY_NAME", "momentum_strat_1"),

		// Risk
		MaxOrdersPerRun:     envInt("MAX_ORDERS_PER_RUN", 50),
		MaxOrderNotionalUSD: envFloat("MAX_ORDER_NOTIONAL_USD", 10000),

		// Scheduling
		MarketTimezone: envStr("MARKET_TIMEZONE", "America/New_York"),
		UpdateTime:     envStr("UPDATE_TIME", "16:30"),
		TradeTime:      envStr("TRADE_TIME", "10:00"),

		// Modes
		DryRun:       envBool("DRY_RUN", true),
		DebugCSVPath: envStr("UPDATER_DEBUG_CSV", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.AlpacaAPIKey == "" || c.AlpacaAPISecret == "" {
		errs = append(errs, "APCA_API_KEY_ID and APCA_API_SECRET_KEY are required")
	}
	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.MomentumWindow < 2 {
		errs = append(errs, "MOMENTUM_WINDOW must be at least 2")
	}
	if c.MomentumMinPeriods < 2 || c.MomentumMinPeriods > c.MomentumWindow {
		errs = append(errs, "MOMENTUM_MIN_PERIODS must be between 2 and MOMENTUM_WINDOW")
	}
	if c.PortfolioSize <= 0 {
		errs = append(errs, "PORTFOLIO_SIZE must be positive")
	}
	if c.QuoteChunkSize <= 0 {
		errs = append(errs, "QUOTE_CHUNK_SIZE must be positive")
	}
	if _, err := time.LoadLocation(c.MarketTimezone); err != nil {
		errs = append(errs, fmt.Sprintf("MARKET_TIMEZONE %q is not a valid tz name", c.MarketTimezone))
	}
	for _, v := range []string{c.UpdateTime, c.TradeTime} {
		if _, err := time.Parse("15:04", v); err != nil {
			errs = append(errs, fmt.Sprintf("%q is not a valid HH:MM time", v))
		}
	}

	if c.DryRun {
		log.Warn().Msg("DRY_RUN enabled: orders will be printed, not submitted")
	}
	if c.APIKey == "" {
		log.Warn().Msg("API_KEY not set, REST API has no authentication")
	}
	if c.WebhookURL == "" {
		log.Warn().Msg("WEBHOOK_URL not set, job notifications go to the log only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	log.Info().
		Str("mode", modeLabel(c.DryRun)).
		Str("broker", c.AlpacaBaseURL).
		Str("db", fmt.Sprintf("%s:%d/%s", c.DBHost, c.DBPort, c.DBName)).
		Msg("configuration")
	log.Info().
		Int("window", c.MomentumWindow).
		Int("min_periods", c.MomentumMinPeriods).
		Int("portfolio_size", c.PortfolioSize).
		Str("strategy", c.StrategyName).
		Msg("momentum parameters")
	log.Info().
		Str("timezone", c.MarketTimezone).
		Str("update_at", c.UpdateTime).
		Str("trade_at", c.TradeTime).
		Msg("schedule")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// Location resolves the market timezone. Validate guarantees it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.MarketTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func modeLabel(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "live"
}
