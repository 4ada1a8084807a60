package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/centsible/centsible/internal/database/repository"
	"github.com/centsible/centsible/internal/money"
	"github.com/centsible/centsible/internal/service"
)

// Handlers bundles the HTTP surface over the service layer.
type Handlers struct {
	Transactions *service.TransactionService
	Bulk         *service.BulkService
	Dashboard    *service.DashboardService
	DB           *sql.DB
	Log          zerolog.Logger
}

func NewHandlers(txns *service.TransactionService, bulk *service.BulkService, dash *service.DashboardService, db *sql.DB, log zerolog.Logger) *Handlers {
	return &Handlers{Transactions: txns, Bulk: bulk, Dashboard: dash, DB: db, Log: log}
}

// AddTransaction handles POST /api/transactions.
func (h *Handlers) AddTransaction(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var raw map[string]string
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.Transactions.AddTransaction(r.Context(), uid, raw)
	if err != nil {
		if service.IsInputError(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("transaction ingestion failed")
		WriteError(w, http.StatusInternalServerError, "failed to add transaction")
		return
	}
	WriteJSON(w, http.StatusCreated, out)
}

// BulkAddTransactions handles POST /api/transactions/bulk. The body is a
// JSON array of raw records; per-record failures come back as messages
// rather than failing the batch.
func (h *Handlers) BulkAddTransactions(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var records []map[string]string
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Bulk.AddBatch(r.Context(), uid, records)
	if err != nil {
		h.Log.Error().Err(err).Msg("bulk ingestion failed")
		WriteError(w, http.StatusInternalServerError, "failed to process batch")
		return
	}

	msgs := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		msgs = append(msgs, e.Error())
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"imported":   res.Imported,
		"errors":     msgs,
		"duplicates": res.Duplicates,
	})
}

// ListTransactions handles GET /api/transactions with optional filters.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	q := r.URL.Query()
	f := repository.TransactionFilters{
		AccountID:  q.Get("account_id"),
		CategoryID: q.Get("category_id"),
		Type:       repository.TransactionType(q.Get("type")),
		Search:     q.Get("search"),
	}
	for name, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		if v := q.Get(name); v != "" {
			t, err := time.Parse(service.DateLayout, v)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid "+name+" date, expected "+service.DateLayout)
				return
			}
			*dst = t.UTC()
		}
	}

	txns, err := repository.NewTransactionRepo(h.DB).List(r.Context(), uid, f)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list transactions")
		WriteError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txns,
		"count":        len(txns),
	})
}

// NetBalance handles GET /api/dashboard/net-balance.
func (h *Handlers) NetBalance(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	report, err := h.Dashboard.NetBalance(r.Context(), uid, time.Now())
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to build net balance report")
		WriteError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// ListAccounts handles GET /api/accounts.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}
	accounts, err := repository.NewAccountRepo(h.DB).List(r.Context(), uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list accounts")
		WriteError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// ListCategories handles GET /api/categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := repository.NewCategoryRepo(h.DB).List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list categories")
		WriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}

// ListBudgets handles GET /api/budgets.
func (h *Handlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}
	budgets, err := repository.NewBudgetRepo(h.DB).List(r.Context(), uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list budgets")
		WriteError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"budgets": budgets})
}

// SetBudget handles PUT /api/budgets.
func (h *Handlers) SetBudget(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var req struct {
		CategoryID string `json:"category_id"`
		Limit      string `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CategoryID == "" {
		WriteError(w, http.StatusBadRequest, "category_id is required")
		return
	}
	limitCents, err := money.ParseCents(req.Limit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid limit amount")
		return
	}

	tracker := service.NewBudgetTracker(h.DB)
	b, err := tracker.SetBudget(r.Context(), uid, req.CategoryID, limitCents, time.Now())
	if err != nil {
		if service.IsInputError(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error().Err(err).Msg("failed to set budget")
		WriteError(w, http.StatusInternalServerError, "failed to set budget")
		return
	}
	WriteJSON(w, http.StatusOK, b)
}

// ListBills handles GET /api/bills.
func (h *Handlers) ListBills(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}
	bills, err := repository.NewBillRepo(h.DB).List(r.Context(), uid)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to list bills")
		WriteError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}

// UpsertBill handles PUT /api/bills.
func (h *Handlers) UpsertBill(w http.ResponseWriter, r *http.Request) {
	uid := requireUser(w, r)
	if uid == "" {
		return
	}

	var req struct {
		Name   string `json:"name"`
		Amount string `json:"amount"`
		DueDay int    `json:"due_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	amountCents, err := money.ParseCents(req.Amount)
	if err != nil || amountCents <= 0 {
		WriteError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if req.DueDay < 1 || req.DueDay > 28 {
		WriteError(w, http.StatusBadRequest, "due_day must be between 1 and 28")
		return
	}

	b := repository.Bill{
		ID:          uuid.NewString(),
		UserID:      uid,
		Name:        req.Name,
		AmountCents: amountCents,
		DueDay:      req.DueDay,
		NextDue:     nextDueDate(time.Now().UTC(), req.DueDay),
	}
	if err := repository.NewBillRepo(h.DB).Upsert(r.Context(), b); err != nil {
		h.Log.Error().Err(err).Msg("failed to upsert bill")
		WriteError(w, http.StatusInternalServerError, "failed to save bill")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"name": b.Name, "next_due": b.NextDue.Format("2006-01-02")})
}

// nextDueDate returns the first occurrence of dueDay on or after now.
func nextDueDate(now time.Time, dueDay int) time.Time {
	due := time.Date(now.Year(), now.Month(), dueDay, 0, 0, 0, 0, time.UTC)
	if due.Before(now.Truncate(24 * time.Hour)) {
		due = due.AddDate(0, 1, 0)
	}
	return due
}

// Health handles GET /health. No identity required.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
