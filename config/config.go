package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds server and client settings read from the environment.
type Config struct {
	Port        string
	RedisURL    string
	Environment string
	LogLevel    string

	// Client side
	ServerURL string
	StateDir  string
}

// Load reads a .env file when present and builds the Config from
// environment variables with defaults.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("no .env file, using system environment")
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Environment: getEnv("ENV", EnvDevelopment),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerURL:   getEnv("SERVER_URL", "http://localhost:8080"),
		StateDir:    getEnv("POKER_STATE_DIR", defaultStateDir()),
	}
}

// SetupLogging configures the global zerolog logger: console writer in
// development, JSON elsewhere.
func (c Config) SetupLogging() {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Environment == EnvDevelopment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "poker-planning")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
