package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "library-service-backend/internal/api/http"
	"library-service-backend/internal/checkout"
	"library-service-backend/internal/config"
	"library-service-backend/internal/logger"
	"library-service-backend/internal/repository/postgres"
	"library-service-backend/internal/security"
	"library-service-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Service Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "base_url", cfg.Server.BaseURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

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

	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	processor := checkout.NewStripeClient(
		cfg.Checkout.SecretKey,
		cfg.Checkout.WebhookSecret,
		time.Duration(cfg.Checkout.TimeoutSeconds)*time.Second,
	)

	notifier := service.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	authSvc := service.NewAuthService(store.UserRepository, tokenManager)
	userSvc := service.NewUserService(store.UserRepository)
	bookSvc := service.NewBookService(store.BookRepository)
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
	borrowingSvc := service.NewBorrowingService(
		db,
		store.BorrowingRepository,
		store.BookRepository,
		store.PaymentRepository,
		store.UserRepository,
		paymentSvc,
		notifier,
		cfg.Billing.FineMultiplier,
	)

	router := httpapi.NewRouter(tokenManager, authSvc, userSvc, bookSvc, borrowingSvc, paymentSvc)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
