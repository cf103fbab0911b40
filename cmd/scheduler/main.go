package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/finsight/ledger-engine/internal/config"
	"github.com/finsight/ledger-engine/internal/repository"
	"github.com/finsight/ledger-engine/internal/service"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger.Info("Starting ledger scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ledgerRepo := repository.NewLedgerRepository(db)
	ledgerService := service.NewDebtLedgerService(ledgerRepo, redisClient, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	setupCronJobs(c, ledgerService, logger)

	// Start the scheduler
	c.Start()
	logger.Info("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, ledgerService service.LedgerService, logger *logrus.Logger) {
	// Daily overdue sweep at midnight: log the overdue debt count and drop
	// cached dashboards so accrued interest views stay fresh.
	_, err := c.AddFunc("0 0 0 * * *", func() {
		logger.Info("Running daily overdue sweep...")
		if err := ledgerService.DailySweep(context.Background()); err != nil {
			logger.WithError(err).Error("daily overdue sweep failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("scheduling daily overdue sweep")
	}

	// Weekly per-user lending summary (Mondays at 9 AM).
	_, err = c.AddFunc("0 0 9 * * MON", func() {
		logger.Info("Running weekly lending summary...")
		if err := ledgerService.LendingSummary(context.Background()); err != nil {
			logger.WithError(err).Error("weekly lending summary failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("scheduling weekly lending summary")
	}

	logger.Info("Cron jobs scheduled successfully")
}
