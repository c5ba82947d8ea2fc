package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	httpapi "scanimals-checkout/internal/api/http"
	"scanimals-checkout/internal/config"
	"scanimals-checkout/internal/jobs"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
	"scanimals-checkout/internal/repository/firestore"
	"scanimals-checkout/internal/repository/postgres"
	"scanimals-checkout/internal/scheduler"
	"scanimals-checkout/internal/service"
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
	logger.Info("Starting Scanimals checkout server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "timezone", cfg.Location().String())
	logger.Info("Firebase configuration", "project_id", cfg.Firebase.ProjectID, "checkouts", cfg.Firebase.CheckoutsCollection, "inventory", cfg.Firebase.InventoryCollection)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "rate_per_minute", cfg.Email.RatePerMinute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firestore
	client, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Error("Failed to connect to Firestore", "error", err)
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer client.Close()
	store := firestore.NewStore(client, cfg.Firebase.CheckoutsCollection, cfg.Firebase.InventoryCollection, cfg.Location())
	logger.Info("Firestore client initialized")

	// Optional dispatch log
	var dispatches repository.ReportDispatchRepository
	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize dispatch log", "error", err)
			log.Fatalf("Failed to initialize dispatch log: %v", err)
		}
		defer db.Close()
		dispatches = postgres.NewStore(db).ReportDispatchRepository
	}

	// Initialize Email Service
	emailSvc, err := service.NewEmailService(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	clock := func() time.Time { return time.Now().In(cfg.Location()) }

	// Initialize Services
	dashboard := service.NewDashboard(store, clock)
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Email.RatePerMinute)), cfg.Email.Burst)
	reportSvc := service.NewReportService(dashboard, dispatches, emailSvc, limiter, clock, cfg.Reports.ViewItemBaseURL)
	scheduledReportSvc := service.NewReportService(store, dispatches, emailSvc, nil, clock, cfg.Reports.ViewItemBaseURL)
	inventorySvc := service.NewInventoryService(store, store)

	// Feed
	go func() {
		if err := dashboard.Run(ctx); err != nil {
			logger.Error("Checkout feed stopped", "error", err)
		}
	}()

	// Scheduler
	jobRunner := jobs.NewJobRunner(dashboard, scheduledReportSvc, cfg)
	cronScheduler := scheduler.NewScheduler(jobRunner, cfg.Reports.ScheduleInServer)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// HTTP
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, httpapi.NewHandler(dashboard, reportSvc, inventorySvc))

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := postgres.NewStore(db).EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create dispatch log schema: %w", err)
	}
	logger.Info("Database connection established")
	return db, nil
}
