// Package config reads service configuration from the environment. Every
// variable has a local-development default so a bare `go run` works against
// a stock docker-compose setup.
package config

import (
	"fmt"
	"os"
	"time"
)

// PriceService holds the price service configuration.
type PriceService struct {
	HTTPAddr      string
	DBConnStr     string
	APIBaseURL    string
	APIKey        string
	FetchInterval time.Duration
	HTTPTimeout   time.Duration
}

// PortfolioService holds the portfolio service configuration.
type PortfolioService struct {
	HTTPAddr        string
	DBConnStr       string
	JWTSecret       string
	TokenTTL        time.Duration
	PriceServiceURL string
	APIBaseURL      string
	APIKey          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	SpotCacheTTL    time.Duration
	HTTPTimeout     time.Duration
}

// LoadPriceService reads the price service configuration.
func LoadPriceService() PriceService {
	return PriceService{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
		DBConnStr:     dbConnStr("btcfolio_prices"),
		APIBaseURL:    getEnv("CRYPTOCOMPARE_BASE_URL", "https://min-api.cryptocompare.com"),
		APIKey:        os.Getenv("CRYPTOCOMPARE_API_KEY"),
		FetchInterval: getDuration("FETCH_INTERVAL", time.Hour),
		HTTPTimeout:   getDuration("HTTP_TIMEOUT", 30*time.Second),
	}
}

// LoadPortfolioService reads the portfolio service configuration.
func LoadPortfolioService() PortfolioService {
	return PortfolioService{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8001"),
		DBConnStr:       dbConnStr("btcfolio_portfolios"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		TokenTTL:        getDuration("TOKEN_TTL", 24*time.Hour),
		PriceServiceURL: getEnv("PRICE_SERVICE_URL", "http://localhost:8000"),
		APIBaseURL:      getEnv("CRYPTOCOMPARE_BASE_URL", "https://min-api.cryptocompare.com"),
		APIKey:          os.Getenv("CRYPTOCOMPARE_API_KEY"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         0,
		SpotCacheTTL:    getDuration("SPOT_CACHE_TTL", 5*time.Minute),
		HTTPTimeout:     getDuration("HTTP_TIMEOUT", 30*time.Second),
	}
}

// dbConnStr prefers an explicit DB_CONN_STR and otherwise builds one from
// individual vars (Docker friendly).
func dbConnStr(defaultName string) string {
	if s := os.Getenv("DB_CONN_STR"); s != "" {
		return s
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", defaultName),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
