package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

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
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'daily-report', 'all-reports')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Scanimals report runner...", "log_level", cfg.Log.Level, "recipients", len(cfg.Reports.Recipients))

	ctx := context.Background()

	// Initialize Firestore
	client, err := firestore.NewClient(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Error("Failed to connect to Firestore", "error", err)
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer client.Close()
	store := firestore.NewStore(client, cfg.Firebase.CheckoutsCollection, cfg.Firebase.InventoryCollection, cfg.Location())

	// Optional dispatch log
	var dispatches repository.ReportDispatchRepository
	if cfg.Database.Enabled {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		pg := postgres.NewStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create dispatch log schema: %v", err)
		}
		dispatches = pg.ReportDispatchRepository
		logger.Info("Database connection established")
	}

	// Initialize Services
	emailService, err := service.NewEmailService(cfg.Email)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	clock := func() time.Time { return time.Now().In(cfg.Location()) }
	reportService := service.NewReportService(store, dispatches, emailService, nil, clock, cfg.Reports.ViewItemBaseURL)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(nil, reportService, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner, true)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Report scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down report scheduler...")
	cronScheduler.Stop()
	logger.Info("Report scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "daily-report":
		jobRunner.SendDailyReport()
	case "weekly-report":
		jobRunner.SendWeeklyReport()
	case "monthly-report":
		jobRunner.SendMonthlyReport()
	case "all-reports":
		jobRunner.RunAllReports()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - daily-report\n")
		fmt.Printf("  - weekly-report\n")
		fmt.Printf("  - monthly-report\n")
		fmt.Printf("  - all-reports\n")
		os.Exit(1)
	}
}
