package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"library-service-backend/internal/checkout"
	"library-service-backend/internal/config"
	"library-service-backend/internal/jobs"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/repository/postgres"
	"library-service-backend/internal/scheduler"
	"library-service-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'overdue-sweep', 'expiry-sweep', 'all')")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Cronjob Runner...", "log_level", cfg.Log.Level)

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)

	processor := checkout.NewStripeClient(
		cfg.Checkout.SecretKey,
		cfg.Checkout.WebhookSecret,
		time.Duration(cfg.Checkout.TimeoutSeconds)*time.Second,
	)
	notifier := service.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	paymentSvc := service.NewPaymentService(
		db,
		store.PaymentRepository,
		store.BorrowingRepository,
		store.BookRepository,
		store.UserRepository,
		processor,
		notifier,
		emailSvc,
		service.PaymentConfig{
			Currency:       cfg.Checkout.Currency,
			SessionExpiry:  time.Duration(cfg.Checkout.SessionExpiryHours) * time.Hour,
			BaseURL:        cfg.Server.BaseURL,
			FineMultiplier: cfg.Billing.FineMultiplier,
		},
	)

	jobServices := &jobs.Services{
		Payment:  paymentSvc,
		Notifier: notifier,
		Email:    emailSvc,
	}
	jobRunner := jobs.NewJobRunner(store, jobServices, cfg)

	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler := scheduler.NewScheduler(jobRunner)
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "overdue-sweep":
		jobRunner.RunOverdueSweep()
	case "expiry-sweep":
		jobRunner.RunExpirySweep()
	case "all":
		jobRunner.RunAllJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - overdue-sweep\n")
		fmt.Printf("  - expiry-sweep\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
