package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/curator-me/lms-bank/internal/bankapi"
	"github.com/curator-me/lms-bank/internal/bankapi/service"
	"github.com/curator-me/lms-bank/internal/config"
	"github.com/curator-me/lms-bank/internal/data/mongo"
	"github.com/curator-me/lms-bank/internal/data/postgres"
	"github.com/curator-me/lms-bank/internal/logger"
	"github.com/curator-me/lms-bank/internal/platform/messaging/producers"
	"github.com/curator-me/lms-bank/internal/platform/persistence"
	"github.com/curator-me/lms-bank/internal/settlement"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("bank")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Kafka producers for the settlement event stream
	settlementProducer, err := producers.NewSettlementEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	transactionRepo := mongo.NewTransactionRepository(log, mongoDB.Database())

	// Services
	accountService := service.NewAccountService(accountRepo, &cfg.Security, log)
	ledgerService := service.NewLedgerService(postgresDB, accountRepo, transactionRepo, outboxRepo, log)

	// Settlement outbox poller publishes queued events to Kafka. A typed nil
	// must not reach the poller's interface field, it checks against nil.
	var deadLetterPublisher producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetterPublisher = dlqProducer
	}
	eventPublisher := settlement.NewEventPublisher(outboxRepo, settlementProducer, log)
	poller, err := settlement.NewPoller(&cfg.Outbox, cfg.WorkerPool.Size, outboxRepo, eventPublisher, deadLetterPublisher, log)
	if err != nil {
		log.Error("Failed to initialize settlement poller", "error", err)
		os.Exit(1)
	}
	go poller.Start(appCtx)

	server := bankapi.NewServer(log, cfg, accountService, ledgerService)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	poller.Shutdown()
	postgresDB.Close()

	if err = settlementProducer.Close(); err != nil {
		log.Error("Error closing settlement event producer", "error", err)
	}
	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ producer", "error", err)
		}
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
