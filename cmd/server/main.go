package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	httpapi "proprent-backend/internal/api/http"
	"proprent-backend/internal/config"
	"proprent-backend/internal/logger"
	"proprent-backend/internal/pricing"
	"proprent-backend/internal/repository/postgres"
	"proprent-backend/internal/security"
	"proprent-backend/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting rental backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	policy := policyFromConfig(cfg)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	docSvc := service.NewDocumentService(store)
	orderSvc := service.NewOrderService(store, policy)
	financeSvc := service.NewFinanceService(store, policy)
	returnSvc := service.NewReturnService(store, docSvc, emailSvc, policy)

	router := httpapi.NewRouter(orderSvc, returnSvc, financeSvc, tokenManager)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}

func policyFromConfig(cfg *config.Config) pricing.Policy {
	policy := pricing.DefaultPolicy()
	policy.MinimumOrderTotal = cfg.Fees.MinimumOrderTotal
	policy.OutOfHoursCharge = cfg.Fees.OutOfHoursFee
	policy.RushFeePercent = cfg.Fees.RushFeePercent
	policy.BusinessOpenHour = cfg.Fees.BusinessOpenHour
	policy.BusinessCloseHour = cfg.Fees.BusinessCloseHour
	policy.ReturnCutoffHour = cfg.Fees.ReturnCutoffHour
	return policy
}
