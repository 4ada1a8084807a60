package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/centsible/centsible/internal/classifier"
	"github.com/centsible/centsible/internal/database"
	"github.com/centsible/centsible/internal/database/repository"
	"github.com/centsible/centsible/internal/money"
)

// DateLayout is the expected format of the raw date field.
const DateLayout = "02/01/2006 15:04"

// allowedFields is the allow-list projection for raw submissions. Anything
// outside it is stripped before validation, so callers cannot smuggle extra
// attributes onto the persisted row.
var allowedFields = map[string]struct{}{
	"amount":           {},
	"date":             {},
	"description":      {},
	"transaction_type": {},
	"account_name":     {},
}

// Committed is the sanitized view of a persisted transaction returned to
// the caller. account_name is intentionally absent: it was an addressing
// field, not a persisted attribute.
type Committed struct {
	ID          string                     `json:"id"`
	UserID      string                     `json:"user_id"`
	AccountID   string                     `json:"account_id"`
	CategoryID  string                     `json:"category_id"`
	Category    string                     `json:"category"`
	Type        repository.TransactionType `json:"transaction_type"`
	Amount      string                     `json:"amount"`
	Date        string                     `json:"date"`
	Description string                     `json:"description"`
}

// TransactionService is the ingestion orchestrator: it validates raw input,
// classifies it, and applies every resulting mutation as one unit of work.
type TransactionService struct {
	DB         *sql.DB
	Classifier *classifier.Classifier
	Log        zerolog.Logger
}

func NewTransactionService(db *sql.DB, cls *classifier.Classifier, log zerolog.Logger) *TransactionService {
	return &TransactionService{DB: db, Classifier: cls, Log: log}
}

type validated struct {
	amountCents int64
	date        time.Time
	description string
	txType      repository.TransactionType
	accountName string
}

// AddTransaction runs the full pipeline for one raw submission. On any
// failure nothing is visible afterwards: classification runs before the
// transaction opens, and every write inside it commits or rolls back
// together.
func (s *TransactionService) AddTransaction(ctx context.Context, userID string, raw map[string]string) (*Committed, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, inputErrorf("missing user identity")
	}
	v, err := validateRaw(raw)
	if err != nil {
		return nil, err
	}

	label, err := s.Classifier.Classify(v.description, string(v.txType), v.amountCents)
	if err != nil {
		s.Log.Error().
			Err(err).
			Str("model_version", s.Classifier.Version()).
			Str("transaction_type", string(v.txType)).
			Int("description_len", len(v.description)).
			Int64("amount_cents", v.amountCents).
			Msg("classification failed, aborting ingestion")
		return nil, fmt.Errorf("classify transaction: %w", err)
	}

	var out *Committed
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		categoryID, err := resolveCategory(ctx, repository.NewCategoryRepo(tx), label)
		if err != nil {
			return err
		}

		ledger := NewLedger(tx)
		acct, created, err := ledger.ResolveAccount(ctx, userID, v.accountName)
		if err != nil {
			return err
		}
		if created {
			s.Log.Debug().Str("account", v.accountName).Str("user_id", userID).Msg("account created")
		}

		if _, err := ledger.ApplyDelta(ctx, acct.ID, v.amountCents, v.txType); err != nil {
			return err
		}

		if v.txType == repository.TypeExpense {
			if _, err := NewBudgetTracker(tx).ApplyExpense(ctx, userID, categoryID, v.amountCents); err != nil {
				return err
			}
			if err := settleMatchingBill(ctx, repository.NewBillRepo(tx), userID, v); err != nil {
				return err
			}
		}

		row := repository.Transaction{
			ID:          uuid.NewString(),
			UserID:      userID,
			AccountID:   acct.ID,
			CategoryID:  categoryID,
			Type:        v.txType,
			AmountCents: v.amountCents,
			Description: v.description,
			Date:        v.date,
		}
		if err := repository.NewTransactionRepo(tx).Insert(ctx, row); err != nil {
			return fmt.Errorf("persist transaction: %w", err)
		}

		out = &Committed{
			ID:          row.ID,
			UserID:      userID,
			AccountID:   acct.ID,
			CategoryID:  categoryID,
			Category:    label.String(),
			Type:        v.txType,
			Amount:      money.FormatCents(v.amountCents),
			Date:        v.date.Format(DateLayout),
			Description: v.description,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info().
		Str("transaction_id", out.ID).
		Str("category", out.Category).
		Str("transaction_type", string(out.Type)).
		Msg("transaction committed")
	return out, nil
}

func validateRaw(raw map[string]string) (validated, error) {
	projected := make(map[string]string, len(allowedFields))
	for k, v := range raw {
		if _, ok := allowedFields[k]; ok {
			projected[k] = strings.TrimSpace(v)
		}
	}

	for _, field := range []string{"amount", "date", "description", "transaction_type", "account_name"} {
		if projected[field] == "" {
			return validated{}, inputErrorf("missing or empty field %q", field)
		}
	}

	cents, err := money.ParseCents(projected["amount"])
	if err != nil {
		return validated{}, inputErrorf("invalid amount %q", projected["amount"])
	}
	if cents <= 0 {
		return validated{}, inputErrorf("amount must be a positive magnitude; the transaction type fixes the sign")
	}

	date, err := time.Parse(DateLayout, projected["date"])
	if err != nil {
		return validated{}, inputErrorf("invalid date %q, expected format %s", projected["date"], DateLayout)
	}

	txType := repository.TransactionType(projected["transaction_type"])
	if !txType.Valid() {
		return validated{}, inputErrorf("invalid transaction_type %q, expected Income or Expense", projected["transaction_type"])
	}

	return validated{
		amountCents: cents,
		date:        date.UTC(),
		description: projected["description"],
		txType:      txType,
		accountName: projected["account_name"],
	}, nil
}

// resolveCategory maps a classifier label onto catalog rows, creating
// parent and subcategory entries lazily when the model emits a label the
// catalog has not seen. Creation is idempotent via deterministic ids.
func resolveCategory(ctx context.Context, cats *repository.CategoryRepo, label classifier.Label) (string, error) {
	parentName := strings.TrimSpace(label.Parent)
	subName := strings.TrimSpace(label.Sub)
	if parentName == "" || subName == "" {
		return "", fmt.Errorf("classifier produced empty label %q", label.String())
	}

	parent, err := cats.GetByName(ctx, nil, parentName)
	if err != nil {
		return "", fmt.Errorf("lookup category %q: %w", parentName, err)
	}
	parentID := repository.CategoryID("", parentName)
	if parent == nil {
		if err := cats.Upsert(ctx, repository.Category{ID: parentID, Name: parentName}); err != nil {
			return "", fmt.Errorf("create category %q: %w", parentName, err)
		}
	} else {
		parentID = parent.ID
	}

	sub, err := cats.GetByName(ctx, &parentID, subName)
	if err != nil {
		return "", fmt.Errorf("lookup category %q: %w", label.String(), err)
	}
	if sub != nil {
		return sub.ID, nil
	}
	subID := repository.CategoryID(parentName, subName)
	if err := cats.Upsert(ctx, repository.Category{ID: subID, ParentID: &parentID, Name: subName}); err != nil {
		return "", fmt.Errorf("create category %q: %w", label.String(), err)
	}
	return subID, nil
}

// settleMatchingBill marks the first unpaid bill whose amount matches and
// whose name appears in the normalized description as paid. Runs inside the
// ingestion transaction so a rollback also unwinds the bill.
func settleMatchingBill(ctx context.Context, bills *repository.BillRepo, userID string, v validated) error {
	candidates, err := bills.Unpaid(ctx, userID, v.amountCents)
	if err != nil {
		return fmt.Errorf("lookup bills: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}
	normDesc := classifier.Normalize(v.description)
	for _, b := range candidates {
		name := classifier.Normalize(b.Name)
		if name == "" || !strings.Contains(normDesc, name) {
			continue
		}
		if err := bills.MarkPaid(ctx, b.ID); err != nil {
			return fmt.Errorf("mark bill paid: %w", err)
		}
		return nil
	}
	return nil
}
