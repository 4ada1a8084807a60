package service

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/centsible/centsible/internal/classifier"
	"github.com/centsible/centsible/internal/database"
	"github.com/centsible/centsible/internal/logging"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestClassifier builds a hand-weighted artifact: grocery-like text maps
// to Food > Groceries, salary-like text to Income > Salary, netflix-like
// text to Fixed Costs > Subscriptions. Vocabulary entries go through
// Normalize so the tests do not depend on exact stemmer output.
func newTestClassifier(t *testing.T) *classifier.Classifier {
	t.Helper()

	groceries := classifier.Normalize("groceries")
	tesco := classifier.Normalize("tesco")
	salary := classifier.Normalize("salary")
	netflix := classifier.Normalize("netflix")
	food := classifier.Normalize("Food")
	income := classifier.Normalize("Income")
	fixed := classifier.Normalize("Costs")

	art := &classifier.Artifact{
		Version: "service-test-1",
		Parent: classifier.Stage{
			Vectorizer: classifier.Vectorizer{
				Vocabulary: map[string]int{groceries: 0, tesco: 1, salary: 2, netflix: 3},
				IDF:        []float64{1, 1, 1, 1},
			},
			Model: classifier.LinearModel{
				Classes: []string{"Food", "Income", "Fixed Costs"},
				Weights: [][]float64{
					{2, 1.5, 0, 0, 0},
					{0, 0, 3, 0, 0},
					{0, 0, 0, 3, 0},
				},
				Intercepts: []float64{0.1, 0, 0},
			},
		},
		Sub: classifier.Stage{
			Vectorizer: classifier.Vectorizer{
				Vocabulary: map[string]int{groceries: 0, salary: 1, netflix: 2, food: 3, income: 4, fixed: 5},
				IDF:        []float64{1, 1, 1, 1, 1, 1},
			},
			Model: classifier.LinearModel{
				Classes: []string{"Groceries", "Salary", "Subscriptions"},
				Weights: [][]float64{
					{2, 0, 0, 1, 0, 0, 0},
					{0, 2, 0, 0, 1, 0, 0},
					{0, 0, 2, 0, 0, 1, 0},
				},
				Intercepts: []float64{0.1, 0, 0},
			},
		},
	}
	require.NoError(t, art.Validate())
	return classifier.New(art)
}

func newTestService(t *testing.T, db *sql.DB) *TransactionService {
	t.Helper()
	return NewTransactionService(db, newTestClassifier(t), logging.NewWithWriter(testWriter{t}))
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func rawExpense(amount, desc, account string) map[string]string {
	return map[string]string{
		"amount":           amount,
		"date":             "01/03/2024 10:00",
		"description":      desc,
		"transaction_type": "Expense",
		"account_name":     account,
	}
}

func rawIncome(amount, desc, account string) map[string]string {
	r := rawExpense(amount, desc, account)
	r["transaction_type"] = "Income"
	return r
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
