package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investhub/internal/clock"
	"investhub/internal/config"
	"investhub/internal/db"
	"investhub/internal/handlers"
	"investhub/internal/scheduler"
	"investhub/internal/services"
	"investhub/internal/store"
	"investhub/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	transactions := store.NewTransactionStore(database)
	deposits := store.NewDepositStore(database)
	withdrawals := store.NewWithdrawalStore(database)
	plans := store.NewPlanStore(database)
	investments := store.NewInvestmentStore(database)
	rewards := store.NewRewardStore(database)
	rates := store.NewCommissionRateStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	batches := store.NewBatchStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	trustedClock, err := clock.New(cfg.TimeSources, cfg.BatchTimezone, cfg.ClockResyncEvery)
	if err != nil {
		log.Fatalf("failed to build clock: %v", err)
	}

	ledger := services.NewLedgerService(txRunner, wallets, transactions, cfg.DefaultCurrency, hub)
	commissions := services.NewCommissionService(txRunner, users, rates, rewards, investments, ledger)
	service := services.NewInvestmentService(txRunner, deposits, withdrawals, plans, investments, users, ledger, commissions, audit)
	batch := scheduler.New(trustedClock, batches, service, commissions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trustedClock.Start(ctx)
	if err := batch.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer batch.Stop()

	handler := handlers.New(cfg, txRunner, users, wallets, transactions, deposits, withdrawals, plans, investments, rewards, rates, admin, audit, ledger, service, batch, trustedClock, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("investhub API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
