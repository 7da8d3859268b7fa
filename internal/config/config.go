package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Binance  Binance  `mapstructure:"binance"`
	Ledger   Ledger   `mapstructure:"ledger"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Binance holds the configuration for the Binance API.
type Binance struct {
	ApiKey         string  `mapstructure:"apiKey"`
	SecretKey      string  `mapstructure:"secretKey"`
	Testnet        bool    `mapstructure:"testnet"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Ledger holds the configuration for trade ingestion and statistics.
type Ledger struct {
	// Symbols to sync, one account-trades request per symbol.
	// Empty means a single request with no symbol filter.
	Symbols []string `mapstructure:"symbols"`
	// FetchLimit is the per-request record ceiling sent to the exchange.
	FetchLimit int `mapstructure:"fetch_limit"`
	// InitialCapital is the reference base for the fee-drag percentage.
	InitialCapital float64 `mapstructure:"initial_capital"`
	// ListLimit caps the trade listing endpoint.
	ListLimit int `mapstructure:"list_limit"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("binance.rate_limit", 20)      // requests per second
	viper.SetDefault("binance.rate_limit_burst", 5) // burst size
	viper.SetDefault("ledger.fetch_limit", 1000)
	viper.SetDefault("ledger.initial_capital", 10000)
	viper.SetDefault("ledger.list_limit", 100)
	viper.SetDefault("database.dsn", "database.db")
	viper.SetDefault("server.port", 5000)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
