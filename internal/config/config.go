// Package config loads the sniper configuration from the environment,
// with an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration. All knobs come from the
// environment; Load applies defaults first and validates the result.
type Config struct {
	// Solana endpoints.
	RPCURL string
	WSURL  string

	// Wallet. Required only for live trading.
	PrivateKey string

	// Trade sizing and slippage.
	BuyAmountSOL   float64
	MaxSlippagePct float64

	// Exit targets.
	TakeProfitPct   float64
	StopLossPct     float64
	TrailingStopPct float64

	// Admission limits.
	MinSafetyScore     int
	CooldownMs         int64
	MaxTradesPerHour   int
	MaxLossPerTradeSOL float64

	// Quality filters.
	MinMarketCapSOL            float64
	MaxMarketCapSOL            float64
	MinLiquiditySOL            float64
	MinHolders                 int
	MaxHolders                 int
	RequireSocialLinks         bool
	RequireCreatorVerification bool

	// Execution.
	SimulationMode              bool
	SimBalanceSOL               float64
	PriorityFeeMicroLamports    uint64
	MaxPriorityFeeMicroLamports uint64

	// Exit engine.
	ExitCheckIntervalMs int64

	// Storage. Empty DSNs disable the corresponding store.
	PostgresDSN   string
	ClickHouseDSN string

	// Observability.
	MetricsAddr string
}

// Defaults returns the shipped configuration.
func Defaults() Config {
	return Config{
		RPCURL:          "https://api.mainnet-beta.solana.com",
		WSURL:           "wss://api.mainnet-beta.solana.com",
		BuyAmountSOL:    0.1,
		MaxSlippagePct:  5,
		TakeProfitPct:   100,
		StopLossPct:     30,
		TrailingStopPct: 10,

		MinSafetyScore:   60,
		CooldownMs:       5_000,
		MaxTradesPerHour: 10,

		MinMarketCapSOL: 1_000,
		MaxMarketCapSOL: 50_000,
		MinLiquiditySOL: 5,

		SimulationMode: true,
		SimBalanceSOL:  10,

		ExitCheckIntervalMs: 5_000,

		MetricsAddr: ":9090",
	}
}

// Load builds the configuration: defaults, then a .env file when
// present, then process environment variables on top. The result is
// validated before it is returned.
func Load() (*Config, error) {
	// .env is for local runs; silently absent in deployment.
	_ = godotenv.Load()

	cfg := Defaults()
	var err error

	setStr(&cfg.RPCURL, "RPC_URL")
	setStr(&cfg.WSURL, "WS_URL")
	setStr(&cfg.PrivateKey, "PRIVATE_KEY")

	err = firstErr(err, setFloat(&cfg.BuyAmountSOL, "BUY_AMOUNT_SOL"))
	err = firstErr(err, setFloat(&cfg.MaxSlippagePct, "MAX_SLIPPAGE"))
	err = firstErr(err, setFloat(&cfg.TakeProfitPct, "TAKE_PROFIT_PERCENTAGE"))
	err = firstErr(err, setFloat(&cfg.StopLossPct, "STOP_LOSS_PERCENTAGE"))
	err = firstErr(err, setFloat(&cfg.TrailingStopPct, "TRAILING_STOP_LOSS_PERCENTAGE"))

	err = firstErr(err, setInt(&cfg.MinSafetyScore, "MIN_SAFETY_SCORE"))
	err = firstErr(err, setInt64(&cfg.CooldownMs, "TRADING_COOLDOWN_MS"))
	err = firstErr(err, setInt(&cfg.MaxTradesPerHour, "MAX_TRADES_PER_HOUR"))
	err = firstErr(err, setFloat(&cfg.MaxLossPerTradeSOL, "MAX_LOSS_PER_TRADE_SOL"))

	err = firstErr(err, setFloat(&cfg.MinMarketCapSOL, "MIN_MARKET_CAP"))
	err = firstErr(err, setFloat(&cfg.MaxMarketCapSOL, "MAX_MARKET_CAP"))
	err = firstErr(err, setFloat(&cfg.MinLiquiditySOL, "MIN_LIQUIDITY"))
	err = firstErr(err, setInt(&cfg.MinHolders, "MIN_HOLDERS"))
	err = firstErr(err, setInt(&cfg.MaxHolders, "MAX_HOLDERS"))
	err = firstErr(err, setBool(&cfg.RequireSocialLinks, "REQUIRE_SOCIAL_LINKS"))
	err = firstErr(err, setBool(&cfg.RequireCreatorVerification, "REQUIRE_CREATOR_VERIFICATION"))

	err = firstErr(err, setBool(&cfg.SimulationMode, "SIMULATION_MODE"))
	err = firstErr(err, setFloat(&cfg.SimBalanceSOL, "SIM_BALANCE_SOL"))
	err = firstErr(err, setUint64(&cfg.PriorityFeeMicroLamports, "PRIORITY_FEE_LAMPORTS"))
	err = firstErr(err, setUint64(&cfg.MaxPriorityFeeMicroLamports, "MAX_PRIORITY_FEE_LAMPORTS"))

	err = firstErr(err, setInt64(&cfg.ExitCheckIntervalMs, "EXIT_CHECK_INTERVAL_MS"))

	setStr(&cfg.PostgresDSN, "POSTGRES_DSN")
	setStr(&cfg.ClickHouseDSN, "CLICKHOUSE_DSN")
	setStr(&cfg.MetricsAddr, "METRICS_ADDR")

	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the sniper must not start with.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if c.WSURL == "" {
		return fmt.Errorf("WS_URL is required")
	}
	if !c.SimulationMode && c.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY is required when SIMULATION_MODE is off")
	}
	if c.BuyAmountSOL <= 0 {
		return fmt.Errorf("BUY_AMOUNT_SOL must be positive, got %v", c.BuyAmountSOL)
	}
	if c.MaxSlippagePct < 0 || c.MaxSlippagePct >= 100 {
		return fmt.Errorf("MAX_SLIPPAGE must be in [0, 100), got %v", c.MaxSlippagePct)
	}
	if c.TakeProfitPct < 0 {
		return fmt.Errorf("TAKE_PROFIT_PERCENTAGE must not be negative, got %v", c.TakeProfitPct)
	}
	if c.StopLossPct < 0 || c.StopLossPct >= 100 {
		return fmt.Errorf("STOP_LOSS_PERCENTAGE must be in [0, 100), got %v", c.StopLossPct)
	}
	if c.TrailingStopPct < 0 || c.TrailingStopPct >= 100 {
		return fmt.Errorf("TRAILING_STOP_LOSS_PERCENTAGE must be in [0, 100), got %v", c.TrailingStopPct)
	}
	if c.MinSafetyScore < 0 || c.MinSafetyScore > 100 {
		return fmt.Errorf("MIN_SAFETY_SCORE must be in [0, 100], got %d", c.MinSafetyScore)
	}
	if c.CooldownMs < 0 {
		return fmt.Errorf("TRADING_COOLDOWN_MS must not be negative, got %d", c.CooldownMs)
	}
	if c.MaxTradesPerHour < 0 {
		return fmt.Errorf("MAX_TRADES_PER_HOUR must not be negative, got %d", c.MaxTradesPerHour)
	}
	if c.MaxMarketCapSOL > 0 && c.MinMarketCapSOL > c.MaxMarketCapSOL {
		return fmt.Errorf("MIN_MARKET_CAP %v exceeds MAX_MARKET_CAP %v", c.MinMarketCapSOL, c.MaxMarketCapSOL)
	}
	if c.MaxHolders > 0 && c.MinHolders > c.MaxHolders {
		return fmt.Errorf("MIN_HOLDERS %d exceeds MAX_HOLDERS %d", c.MinHolders, c.MaxHolders)
	}
	if c.MaxPriorityFeeMicroLamports > 0 && c.PriorityFeeMicroLamports > c.MaxPriorityFeeMicroLamports {
		return fmt.Errorf("PRIORITY_FEE_LAMPORTS %d exceeds MAX_PRIORITY_FEE_LAMPORTS %d",
			c.PriorityFeeMicroLamports, c.MaxPriorityFeeMicroLamports)
	}
	// The stop loss bounds the worst case per trade; a tighter
	// MAX_LOSS_PER_TRADE_SOL than the stop can deliver is a misconfig.
	if c.MaxLossPerTradeSOL > 0 {
		worstCase := c.BuyAmountSOL * c.StopLossPct / 100
		if worstCase > c.MaxLossPerTradeSOL {
			return fmt.Errorf("stop loss allows losing %.4f SOL per trade, above MAX_LOSS_PER_TRADE_SOL %.4f",
				worstCase, c.MaxLossPerTradeSOL)
		}
	}
	if c.ExitCheckIntervalMs <= 0 {
		return fmt.Errorf("EXIT_CHECK_INTERVAL_MS must be positive, got %d", c.ExitCheckIntervalMs)
	}
	return nil
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setUint64(dst *uint64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func firstErr(a, b error) error {
	if a != nil {
		return a
	}
	return b
}
