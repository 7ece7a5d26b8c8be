package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	JWT JWTConfig

	KafkaBrokers []string
	EventTopic   string

	SweepInterval time.Duration
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// LoadConfig reads configuration from the environment, loading a local .env
// file first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=quiz password=quiz dbname=quiz port=5432 sslmode=disable TimeZone=UTC"),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", "edustack-identity"),
			Audience: getEnv("JWT_AUDIENCE", "quiz-service"),
		},
		EventTopic: getEnv("EVENT_TOPIC", "quiz.attempt.events"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	sweep := getEnv("SWEEP_INTERVAL", "1m")
	d, err := time.ParseDuration(sweep)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL %q: %w", sweep, err)
	}
	cfg.SweepInterval = d

	if cfg.Environment == "production" && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
