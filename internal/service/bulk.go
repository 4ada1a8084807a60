package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/centsible/centsible/internal/database/repository"
)

const (
	duplicateWindow    = 7 * 24 * time.Hour
	duplicateThreshold = 0.6
)

// DuplicateSuspect flags a bulk record that looks like an existing
// transaction. Suspects are still ingested; the caller decides what to do
// with the flag.
type DuplicateSuspect struct {
	TransactionID string  `json:"transaction_id"`
	MatchedID     string  `json:"matched_id"`
	Similarity    float64 `json:"similarity"`
}

// BulkResult accumulates per-record outcomes for one batch.
type BulkResult struct {
	Imported   int
	Errors     []error
	Duplicates []DuplicateSuspect
}

// BulkService feeds a sequence of raw records through the orchestrator,
// one unit of work per record, accumulating errors instead of stopping.
type BulkService struct {
	Transactions *TransactionService
}

func NewBulkService(txns *TransactionService) *BulkService {
	return &BulkService{Transactions: txns}
}

// AddBatch ingests records in order. A failed record never blocks the rest
// and never leaves partial state; duplicate suspects are flagged against
// transactions that existed before the record was added.
func (s *BulkService) AddBatch(ctx context.Context, userID string, records []map[string]string) (BulkResult, error) {
	res := BulkResult{}
	for i, raw := range records {
		prior, lookupErr := s.priorMatches(ctx, userID, raw)

		committed, err := s.Transactions.AddTransaction(ctx, userID, raw)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		res.Imported++

		if lookupErr != nil {
			// the record itself committed; suspect detection is best effort
			continue
		}
		for _, t := range prior {
			if sim := descriptionSimilarity(t.Description, committed.Description); sim >= duplicateThreshold {
				res.Duplicates = append(res.Duplicates, DuplicateSuspect{
					TransactionID: committed.ID,
					MatchedID:     t.ID,
					Similarity:    sim,
				})
				break
			}
		}
	}
	return res, nil
}

// priorMatches returns pre-existing transactions with the same magnitude
// dated within the duplicate window of the raw record.
func (s *BulkService) priorMatches(ctx context.Context, userID string, raw map[string]string) ([]repository.Transaction, error) {
	v, err := validateRaw(raw)
	if err != nil {
		return nil, err
	}
	repo := repository.NewTransactionRepo(s.Transactions.DB)
	return repo.RecentNear(ctx, userID, v.amountCents, v.date, duplicateWindow)
}

func descriptionSimilarity(a, b string) float64 {
	a, b = strings.ToUpper(a), strings.ToUpper(b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}
