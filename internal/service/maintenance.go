package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/centsible/centsible/internal/database"
	"github.com/centsible/centsible/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions and the scheduled
// period work.
type MaintenanceService struct {
	DB  *sql.DB
	Log zerolog.Logger
}

// Reset wipes all user data. It keeps the schema intact so the service can
// continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"transactions",
			"bills",
			"budgets",
			"categories",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// RolloverBudgets resets spent accumulators for monthly budgets whose
// period has elapsed and advances their period start. Safe to run at any
// cadence; only expired periods are touched.
func (s *MaintenanceService) RolloverBudgets(ctx context.Context, now time.Time) error {
	n, err := repository.NewBudgetRepo(s.DB).RolloverExpired(ctx, MonthStart(now))
	if err != nil {
		return fmt.Errorf("rollover budgets: %w", err)
	}
	if n > 0 {
		s.Log.Info().Int64("budgets", n).Msg("budget periods rolled over")
	}
	return nil
}

// AdvanceBills moves paid bills past their due date into the next cycle.
func (s *MaintenanceService) AdvanceBills(ctx context.Context, now time.Time) error {
	n, err := repository.NewBillRepo(s.DB).AdvanceDue(ctx, now.UTC())
	if err != nil {
		return fmt.Errorf("advance bills: %w", err)
	}
	if n > 0 {
		s.Log.Info().Int64("bills", n).Msg("bill due dates advanced")
	}
	return nil
}
