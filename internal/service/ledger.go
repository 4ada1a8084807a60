package service

import (
	"context"
	"fmt"

	"github.com/centsible/centsible/internal/database/repository"
)

// Ledger resolves accounts and applies balance deltas. It is the only code
// path that mutates account balances.
type Ledger struct {
	Accounts *repository.AccountRepo
}

// NewLedger builds a ledger over db, which may be a *sql.Tx when the caller
// needs the mutations inside a larger unit of work.
func NewLedger(db repository.DBTX) *Ledger {
	return &Ledger{Accounts: repository.NewAccountRepo(db)}
}

// ResolveAccount finds the user's account by exact, case-sensitive name, or
// creates a Normal account with zero balance when no match exists. The
// second return reports whether a new account was created. Resolution is
// idempotent: the account id derives from (user, name).
func (l *Ledger) ResolveAccount(ctx context.Context, userID, name string) (repository.Account, bool, error) {
	existing, err := l.Accounts.GetByName(ctx, userID, name)
	if err != nil {
		return repository.Account{}, false, fmt.Errorf("lookup account %q: %w", name, err)
	}
	if existing != nil {
		return *existing, false, nil
	}
	acct := repository.Account{
		ID:     repository.AccountID(userID, name),
		UserID: userID,
		Name:   name,
		Kind:   repository.KindNormal,
	}
	if err := l.Accounts.Insert(ctx, acct); err != nil {
		return repository.Account{}, false, fmt.Errorf("create account %q: %w", name, err)
	}
	return acct, true, nil
}

// ApplyDelta applies a positive magnitude to the account balance: Income
// adds, Expense subtracts. The sign comes from txType alone, never from the
// amount, and the returned value is the post-update balance.
func (l *Ledger) ApplyDelta(ctx context.Context, accountID string, amountCents int64, txType repository.TransactionType) (int64, error) {
	if amountCents <= 0 {
		return 0, fmt.Errorf("apply delta: magnitude must be positive, got %d", amountCents)
	}
	delta := amountCents
	if txType == repository.TypeExpense {
		delta = -amountCents
	}
	balance, err := l.Accounts.ApplyDelta(ctx, accountID, delta)
	if err != nil {
		return 0, fmt.Errorf("apply balance delta: %w", err)
	}
	return balance, nil
}
