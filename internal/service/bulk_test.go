package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBulkBatchMixedOutcomes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	bulk := NewBulkService(newTestService(t, db))

	records := []map[string]string{
		rawExpense("10.00", "Tesco groceries", "Main"),
		{"amount": "oops", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Expense", "account_name": "Main"},
		rawIncome("2000.00", "ACME salary", "Main"),
	}
	res, err := bulk.AddBatch(ctx, "user-1", records)
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 1)
	require.ErrorContains(t, res.Errors[0], "record 2")
	require.True(t, IsInputError(res.Errors[0]))
	require.Equal(t, 2, countRows(t, db, "transactions"))
}

func TestBulkFlagsDuplicateSuspects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)
	bulk := NewBulkService(svc)

	first, err := svc.AddTransaction(ctx, "user-1", rawExpense("42.50", "TESCO STORES 3281", "Main"))
	require.NoError(t, err)

	// same amount, near-identical description, same day: a suspect
	res, err := bulk.AddBatch(ctx, "user-1", []map[string]string{
		rawExpense("42.50", "TESCO STORES 3282", "Main"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Duplicates, 1)
	require.Equal(t, first.ID, res.Duplicates[0].MatchedID)
	require.GreaterOrEqual(t, res.Duplicates[0].Similarity, 0.6)

	// same description but a different amount is not a suspect
	res, err = bulk.AddBatch(ctx, "user-1", []map[string]string{
		rawExpense("17.00", "TESCO STORES 3281", "Main"),
	})
	require.NoError(t, err)
	require.Empty(t, res.Duplicates)
}

func TestBulkSuspectsAreStillIngested(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)
	bulk := NewBulkService(svc)

	_, err := svc.AddTransaction(ctx, "user-1", rawExpense("9.99", "NETFLIX.COM", "Main"))
	require.NoError(t, err)

	res, err := bulk.AddBatch(ctx, "user-1", []map[string]string{
		rawExpense("9.99", "NETFLIX.COM", "Main"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	require.Len(t, res.Duplicates, 1)
	require.Equal(t, 2, countRows(t, db, "transactions"))
}

func TestDescriptionSimilarity(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, descriptionSimilarity("tesco", "TESCO"), 1e-9)
	require.InDelta(t, 1.0, descriptionSimilarity("", ""), 1e-9)
	require.Less(t, descriptionSimilarity("TESCO STORES", "SHELL FUEL"), 0.5)
}
