package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/centsible/centsible/internal/database/repository"
	"github.com/centsible/centsible/internal/money"
)

// NetBalanceReport is the dashboard read model: net balance across all of a
// user's accounts plus a change description versus the prior month's flow.
type NetBalanceReport struct {
	NetBalance    string   `json:"net_balance"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	Change        string   `json:"change"`
}

// DashboardService produces read-only aggregates; it never mutates state.
type DashboardService struct {
	DB *sql.DB
}

func NewDashboardService(db *sql.DB) *DashboardService {
	return &DashboardService{DB: db}
}

// NetBalance reports the current net balance and how this month's net flow
// compares to the prior month's. When the prior month had no activity the
// change is qualitative rather than a percentage.
func (s *DashboardService) NetBalance(ctx context.Context, userID string, now time.Time) (NetBalanceReport, error) {
	accounts := repository.NewAccountRepo(s.DB)
	txns := repository.NewTransactionRepo(s.DB)

	total, err := accounts.NetBalance(ctx, userID)
	if err != nil {
		return NetBalanceReport{}, fmt.Errorf("net balance: %w", err)
	}

	thisStart := MonthStart(now)
	priorStart := thisStart.AddDate(0, -1, 0)

	current, err := txns.SignedSumForRange(ctx, userID, thisStart, thisStart.AddDate(0, 1, 0))
	if err != nil {
		return NetBalanceReport{}, fmt.Errorf("current period flow: %w", err)
	}
	prior, err := txns.SignedSumForRange(ctx, userID, priorStart, thisStart)
	if err != nil {
		return NetBalanceReport{}, fmt.Errorf("prior period flow: %w", err)
	}

	report := NetBalanceReport{NetBalance: money.FormatCents(total)}
	switch {
	case prior == 0 && current == 0:
		report.Change = "no activity in either period"
	case prior == 0:
		report.Change = "no activity in the prior period"
	default:
		pct := (float64(current) - float64(prior)) / math.Abs(float64(prior)) * 100
		report.ChangePercent = &pct
		report.Change = fmt.Sprintf("%+.1f%% vs prior period", pct)
	}
	return report, nil
}
