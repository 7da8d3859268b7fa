package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"binance-ledger-go/internal/binance"
	"binance-ledger-go/internal/config"
	"binance-ledger-go/internal/database"
	"binance-ledger-go/internal/ledger"
	"binance-ledger-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	startDate := flag.String("start", "", "sync trades since this date (YYYY-MM-DD), empty for the exchange default window")
	flag.Parse()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Initialize Binance REST client
	restClient := binance.NewRestClient(&cfg.Binance, log)
	if restClient.Configured() {
		if _, err := restClient.GetServerTime(); err != nil {
			log.Fatal("Failed to connect to Binance API", zap.Error(err))
		}
		log.Info("Successfully connected to Binance API.")
	}

	store := ledger.NewStore(db)
	reconciler := ledger.NewReconciler(log, restClient, store, cfg.Ledger.Symbols, cfg.Ledger.FetchLimit)

	result, err := reconciler.Sync(context.Background(), *startDate)
	if err != nil {
		log.Fatal("Sync failed", zap.Error(err))
	}

	log.Info("Sync completed",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
		zap.Strings("failed_symbols", result.FailedSymbols),
	)
}
