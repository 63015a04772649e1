package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config is the runtime configuration, read from the environment after an
// optional .env file is loaded.
type Config struct {
	Env               string
	Port              string
	DBURL             string
	JWTSecret         string
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	WeeklySummaryCron string
}

// loadDotEnv loads .env into the process environment. A missing file is not
// an error worth stopping for; the caller logs it once the logger exists.
func loadDotEnv() error {
	return godotenv.Load()
}

// loadConfig reads Config from the environment. JWT_SECRET is required outside
// development; everything else has a default.
func loadConfig(log *zap.Logger) Config {
	cfg := Config{
		Env:               getEnv("APP_ENV", "production"),
		Port:              getEnv("PORT", "3000"),
		DBURL:             getEnv("DB_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		WeeklySummaryCron: getEnv("WEEKLY_SUMMARY_CRON", "0 7 * * 1"),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			log.Fatal("required environment variable is not set", zap.String("key", "JWT_SECRET"))
		}
		log.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret"
	}
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY not set, AI endpoints will fail")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return fallback
}

// newLogger builds a zap logger: human-readable in development, JSON otherwise.
func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
