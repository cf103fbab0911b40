package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/finsight/ledger-engine/internal/config"
	"github.com/finsight/ledger-engine/internal/handler"
	"github.com/finsight/ledger-engine/internal/repository"
	"github.com/finsight/ledger-engine/internal/service"
	"github.com/finsight/ledger-engine/pkg/response"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	ledgerRepo := repository.NewLedgerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Initialize services
	ledgerService := service.NewDebtLedgerService(ledgerRepo, redisClient, cfg, logger)
	analyticsService := service.NewSpendAnalyticsService(transactionRepo, cfg, logger)

	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	// Setup routes
	router := setupRoutes(ledgerHandler, analyticsHandler, healthHandler, logger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	ledgerHandler *handler.LedgerHandler,
	analyticsHandler *handler.AnalyticsHandler,
	healthHandler *handler.HealthHandler,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.RequestIDMiddleware)
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes; identity is resolved once at this boundary.
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handler.UserMiddleware)

	api.HandleFunc("/debts", ledgerHandler.Lend).Methods("POST")
	api.HandleFunc("/debts/dashboard", ledgerHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/debts/{debtId}/repayments", ledgerHandler.Repay).Methods("POST")
	api.HandleFunc("/debts/{debtId}/settle", ledgerHandler.MarkFullyPaid).Methods("POST")
	api.HandleFunc("/debts/{debtId}", ledgerHandler.DeleteDebt).Methods("DELETE")

	api.HandleFunc("/borrowers", ledgerHandler.ListBorrowers).Methods("GET")
	api.HandleFunc("/borrowers/{borrowerId}/ledger", ledgerHandler.GetLedger).Methods("GET")
	api.HandleFunc("/borrowers/{borrowerId}", ledgerHandler.DeleteBorrower).Methods("DELETE")

	api.HandleFunc("/analytics/prediction", analyticsHandler.Predict).Methods("GET")
	api.HandleFunc("/analytics/insights", analyticsHandler.Insights).Methods("GET")
	api.HandleFunc("/budgets/status", analyticsHandler.BudgetStatus).Methods("GET")
	api.HandleFunc("/budgets/history", analyticsHandler.BudgetHistory).Methods("GET")

	return router
}
