// Package config handles application configuration management using Viper
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Default trading parameters, matching the live deployment
const (
	DefaultLeaderPair           = "BTCUSDT"
	DefaultQuoteAsset           = "USDT"
	DefaultCandleInterval       = "15m"
	DefaultCorrelationWindow    = 50
	DefaultCorrelationThreshold = 0.85
	DefaultADXPeriod            = 14
	DefaultADXThreshold         = 30.0
	DefaultMomentumLookback     = 4
	DefaultMomentumThreshold    = 0.03
	DefaultPollInterval         = "15s"
	DefaultTradeAmount          = 500.0
	DefaultQuoteRate            = 83.0
	DefaultListenAddress        = ":8080"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Binance  BinanceConfig
	Telegram TelegramConfig
	Trading  TradingConfig
	Log      LogConfig

	// Address of the HTTP trigger in serve mode
	ListenAddress string
}

// BinanceConfig holds Binance exchange configuration
type BinanceConfig struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	Enabled bool
	Token   string
	Users   []int
}

// TradingConfig holds the decision-engine parameters. It is passed into the
// trading components as an immutable value at construction.
type TradingConfig struct {
	// Reference instrument for the correlation filter
	LeaderPair string

	// Quote currency of the tradeable universe
	QuoteAsset string

	CandleInterval       string
	CorrelationWindow    int
	CorrelationThreshold float64

	ADXPeriod         int
	ADXThreshold      float64
	MomentumLookback  int
	MomentumThreshold float64

	PollInterval time.Duration

	// Fiat amount converted to quote notional at QuoteRate
	TradeAmount float64
	QuoteRate   float64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string
	Colored    bool
	JSONFormat bool
}

// Notional returns the per-trade target notional in the quote currency
func (t TradingConfig) Notional() float64 {
	if t.QuoteRate <= 0 {
		return 0
	}
	return t.TradeAmount / t.QuoteRate
}

// Load reads the application configuration from environment variables and,
// when present, from an optional YAML file
func Load(configFile string) (*AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)

	pollInterval, err := str2duration.ParseDuration(v.GetString("POLL_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	config := &AppConfig{
		Binance: BinanceConfig{
			APIKey:     v.GetString("BINANCE_API_KEY"),
			SecretKey:  v.GetString("BINANCE_API_SECRET"),
			UseTestnet: v.GetBool("USE_TESTNET"),
		},
		Telegram: TelegramConfig{
			Enabled: v.GetBool("TELEGRAM_ENABLED"),
			Token:   v.GetString("TELEGRAM_BOT_TOKEN"),
			Users:   v.GetIntSlice("TELEGRAM_USERS"),
		},
		Trading: TradingConfig{
			LeaderPair:           v.GetString("LEADER_PAIR"),
			QuoteAsset:           v.GetString("QUOTE_ASSET"),
			CandleInterval:       v.GetString("CANDLE_INTERVAL"),
			CorrelationWindow:    v.GetInt("CORRELATION_WINDOW"),
			CorrelationThreshold: v.GetFloat64("CORRELATION_THRESHOLD"),
			ADXPeriod:            v.GetInt("ADX_PERIOD"),
			ADXThreshold:         v.GetFloat64("ADX_THRESHOLD"),
			MomentumLookback:     v.GetInt("MOMENTUM_LOOKBACK"),
			MomentumThreshold:    v.GetFloat64("MOMENTUM_THRESHOLD"),
			PollInterval:         pollInterval,
			TradeAmount:          v.GetFloat64("TRADE_AMOUNT_INR"),
			QuoteRate:            v.GetFloat64("INR_USDT_RATE"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Colored:    v.GetBool("LOG_COLORED"),
			JSONFormat: v.GetBool("LOG_JSON"),
		},
		ListenAddress: v.GetString("LISTEN_ADDRESS"),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("USE_TESTNET", true)
	v.SetDefault("TELEGRAM_ENABLED", false)
	v.SetDefault("LEADER_PAIR", DefaultLeaderPair)
	v.SetDefault("QUOTE_ASSET", DefaultQuoteAsset)
	v.SetDefault("CANDLE_INTERVAL", DefaultCandleInterval)
	v.SetDefault("CORRELATION_WINDOW", DefaultCorrelationWindow)
	v.SetDefault("CORRELATION_THRESHOLD", DefaultCorrelationThreshold)
	v.SetDefault("ADX_PERIOD", DefaultADXPeriod)
	v.SetDefault("ADX_THRESHOLD", DefaultADXThreshold)
	v.SetDefault("MOMENTUM_LOOKBACK", DefaultMomentumLookback)
	v.SetDefault("MOMENTUM_THRESHOLD", DefaultMomentumThreshold)
	v.SetDefault("POLL_INTERVAL", DefaultPollInterval)
	v.SetDefault("TRADE_AMOUNT_INR", DefaultTradeAmount)
	v.SetDefault("INR_USDT_RATE", DefaultQuoteRate)
	v.SetDefault("LISTEN_ADDRESS", DefaultListenAddress)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_COLORED", true)
	v.SetDefault("LOG_JSON", false)
}

func (c *AppConfig) validate() error {
	if c.Trading.CorrelationWindow <= 0 {
		return fmt.Errorf("correlation window must be positive")
	}
	if c.Trading.QuoteRate <= 0 {
		return fmt.Errorf("quote rate must be positive")
	}
	if c.Trading.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("telegram enabled but no bot token configured")
	}
	return nil
}
