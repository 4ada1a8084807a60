package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/centsible/centsible/internal/classifier"
	"github.com/centsible/centsible/internal/database"
	"github.com/centsible/centsible/internal/logging"
	"github.com/centsible/centsible/internal/server"
	"github.com/centsible/centsible/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, cfg.Database.MigrationsPath); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if err := database.SeedDefaults(ctx, db); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}

	art, err := classifier.LoadArtifact(cfg.Classifier.ArtifactPath)
	if err != nil {
		return fmt.Errorf("load classifier artifact: %w", err)
	}
	cls := classifier.New(art)
	log.Info().Str("model_version", cls.Version()).Msg("classifier loaded")

	txns := service.NewTransactionService(db, cls, log)
	bulk := service.NewBulkService(txns)
	dash := service.NewDashboardService(db)
	maint := &service.MaintenanceService{DB: db, Log: log}

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Budget.RolloverSpec, func() {
		if err := maint.RolloverBudgets(context.Background(), time.Now()); err != nil {
			log.Error().Err(err).Msg("budget rollover failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule budget rollover: %w", err)
	}
	if _, err := sched.AddFunc(cfg.Budget.BillSpec, func() {
		if err := maint.AdvanceBills(context.Background(), time.Now()); err != nil {
			log.Error().Err(err).Msg("bill advance failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule bill advance: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	handler := server.NewRouter(server.NewHandlers(txns, bulk, dash, db, log), log)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
