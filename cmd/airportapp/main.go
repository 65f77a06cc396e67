package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Latsika/AirportApp/internal/app"
	"github.com/Latsika/AirportApp/internal/domain/settings"
	"github.com/Latsika/AirportApp/internal/infra/config"
	idb "github.com/Latsika/AirportApp/internal/infra/database"
	"github.com/Latsika/AirportApp/internal/infra/logger"
	"github.com/Latsika/AirportApp/internal/infra/mailer"
	"github.com/Latsika/AirportApp/internal/infra/scheduler"
)

func main() {
	fmt.Println("AirportApp notification engine starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Configuration loaded.")

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		log.Fatalf("FATAL: Invalid report timezone %q: %v", cfg.ReportTimezone, err)
	}

	// Database
	db, err := idb.NewSQLiteConnection(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Could not open database: %v", err)
	}
	defer db.Close()
	log.WithField("path", cfg.DatabasePath).Info("Database opened and schema applied.")

	// Repositories
	snapshotRepo := idb.NewSQLiteSnapshotRepository(db)
	userRepo := idb.NewSQLiteUserRepository(db)
	reportRepo := idb.NewSQLiteReportRepository(db)
	settingsRepo := idb.NewSQLiteSettingsRepository(db)
	popupRepo := idb.NewSQLitePopupRepository(db)

	envMail := settings.EnvMail{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		Sender:   cfg.SMTPFrom,
	}

	// Services
	evaluator := app.NewEvaluatorService(snapshotRepo, userRepo, reportRepo, loc, log)
	dispatcher := app.NewDispatcherService(
		snapshotRepo, popupRepo, settingsRepo,
		mailer.NewSMTPSender(cfg.MailTimeout),
		envMail, cfg.AdminNotifyEmails, log,
	)
	engine := app.NewEngineService(evaluator, dispatcher, popupRepo, log)

	// Startup check point: the "app open" trigger.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	summary, err := engine.CheckAndNotify(ctx, time.Now())
	cancel()
	if err != nil {
		log.WithError(err).Error("Startup check point failed; pending events remain queued for retry.")
	} else {
		log.WithField("new_events", summary.NewEvents).Info("Startup check point completed.")
	}

	// Morning sweep so deadlines are noticed on days nobody logs in.
	checkScheduler := scheduler.NewCheckPointScheduler(engine, log, loc, cfg.CronMorningCheck)
	if err := checkScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start check point scheduler: %v", err)
	}

	log.Info("Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	checkScheduler.Stop()
	log.Info("Application shut down gracefully.")
}
