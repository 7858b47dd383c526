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

	"github.com/joho/godotenv"

	"github.com/mcosta/btcfolio-backend/internal/adapter/cryptocompare"
	"github.com/mcosta/btcfolio-backend/internal/adapter/httpapi"
	"github.com/mcosta/btcfolio-backend/internal/adapter/repository/postgres"
	"github.com/mcosta/btcfolio-backend/internal/config"
	"github.com/mcosta/btcfolio-backend/internal/usecase/ingestion"
	"github.com/mcosta/btcfolio-backend/internal/usecase/prices"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.LoadPriceService()

	// 1. Setup Database
	db, err := postgres.NewDB(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.MigratePriceSchema(ctx); err != nil {
		log.Fatalf("Failed to migrate price schema: %v", err)
	}

	// 2. Initialize Repository and Services
	priceRepo := postgres.NewPriceRepository(db)
	priceService := prices.NewService(priceRepo)

	// 3. Start the hourly candle ingestion loop
	feed := cryptocompare.NewClient(cfg.APIBaseURL, cfg.APIKey, cfg.HTTPTimeout)
	job := ingestion.NewJob(priceRepo, feed, nil)
	if inserted, err := job.Run(ctx); err != nil {
		log.Printf("Initial ingestion failed, will retry on schedule: %v", err)
	} else if inserted > 0 {
		log.Printf("Initial ingestion stored %d candles", inserted)
	}
	go job.RunEvery(ctx, cfg.FetchInterval)

	// 4. Start HTTP Server
	router := httpapi.NewPriceRouter(priceService)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("Price service listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	waitForShutdown(server, cancel)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("Price service stopped")
}
