package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	BlockfrostAPIKey  string
	CardanoNetwork    string
	BlockfrostBaseURL string
	DBPath            string
	ServerPort        string
	LogLevel          string
	NFTImageBaseURL   string

	// zero disables the background expiry sweep
	AllowlistSweepInterval time.Duration
}

// Load reads the environment. Blockfrost credentials are not checked here;
// the ledger gateway validates them when it is first used.
func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	sweep, err := time.ParseDuration(getEnv("ALLOWLIST_SWEEP_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("ALLOWLIST_SWEEP_INTERVAL is not a duration: %w", err)
	}

	cfg := &Config{
		BlockfrostAPIKey:       os.Getenv("BLOCKFROST_API_KEY"),
		CardanoNetwork:         os.Getenv("CARDANO_NETWORK"),
		BlockfrostBaseURL:      os.Getenv("BLOCKFROST_BASE_URL"),
		DBPath:                 getEnv("DB_PATH", "nft-ledger.db"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		NFTImageBaseURL:        getEnv("NFT_IMAGE_BASE_URL", "https://blankwars.com/nft"),
		AllowlistSweepInterval: sweep,
	}

	if sweep < 0 {
		return nil, fmt.Errorf("ALLOWLIST_SWEEP_INTERVAL must not be negative")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("cardano_network", cfg.CardanoNetwork).
		Bool("blockfrost_key_set", cfg.BlockfrostAPIKey != "").
		Dur("allowlist_sweep_interval", cfg.AllowlistSweepInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
