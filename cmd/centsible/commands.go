package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/centsible/centsible/internal/classifier"
	"github.com/centsible/centsible/internal/database"
	"github.com/centsible/centsible/internal/logging"
	"github.com/centsible/centsible/internal/money"
	"github.com/centsible/centsible/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		if err := database.RunMigrations(cfg.Database.Path, cfg.Database.MigrationsPath); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println("migrations applied")
		return nil
	},
}

var classifyType string

var classifyCmd = &cobra.Command{
	Use:   "classify <amount> <description...>",
	Short: "Classify a transaction description without persisting anything",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cents, err := money.ParseCents(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		art, err := classifier.LoadArtifact(cfg.Classifier.ArtifactPath)
		if err != nil {
			return fmt.Errorf("load classifier artifact: %w", err)
		}
		cls := classifier.New(art)

		label, err := cls.Classify(strings.Join(args[1:], " "), classifyType, cents)
		if err != nil {
			return err
		}
		fmt.Printf("%s (model %s)\n", label.String(), cls.Version())
		return nil
	},
}

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all ledger data, keeping the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return fmt.Errorf("refusing to wipe data without --yes")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()

		maint := &service.MaintenanceService{DB: db, Log: logging.New(cfg.Log.Level)}
		if err := maint.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("ledger reset")
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyType, "type", "t", "Expense", "Transaction type (Income or Expense)")
	resetCmd.Flags().BoolVarP(&resetConfirm, "yes", "y", false, "Confirm the wipe")
}
