package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/mcosta/btcfolio-backend/internal/adapter/cryptocompare"
	"github.com/mcosta/btcfolio-backend/internal/adapter/httpapi"
	"github.com/mcosta/btcfolio-backend/internal/adapter/pricecache"
	"github.com/mcosta/btcfolio-backend/internal/adapter/priceclient"
	"github.com/mcosta/btcfolio-backend/internal/adapter/repository/postgres"
	"github.com/mcosta/btcfolio-backend/internal/config"
	"github.com/mcosta/btcfolio-backend/internal/usecase/auth"
	"github.com/mcosta/btcfolio-backend/internal/usecase/portfolios"
	"github.com/mcosta/btcfolio-backend/internal/usecase/transactions"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.LoadPortfolioService()

	// 1. Setup Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.MigratePortfolioSchema(ctx); err != nil {
		log.Fatalf("Failed to migrate portfolio schema: %v", err)
	}

	// 2. Initialize Repositories (Postgres)
	userRepo := postgres.NewUserRepository(db)
	portfolioRepo := postgres.NewPortfolioRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// 3. Price sources: historical candles come from the price service,
	// the current spot price from the upstream API behind a redis cache.
	historical := priceclient.NewClient(cfg.PriceServiceURL, cfg.HTTPTimeout)
	spotFeed := cryptocompare.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.HTTPTimeout)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, spot prices will not be cached: %v", err)
	}
	spot := pricecache.New(redisClient, spotFeed, cfg.SpotCacheTTL)

	// 4. Initialize Services (Use Cases)
	authService := auth.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL, nil)
	portfolioService := portfolios.NewService(portfolioRepo, transactionRepo, spot)
	transactionService := transactions.NewService(portfolioRepo, transactionRepo, historical, nil)

	// 5. Start HTTP Server
	router := httpapi.NewPortfolioRouter(authService, portfolioService, transactionService)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("Portfolio service listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	waitForShutdown(server)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("Portfolio service stopped")
}
