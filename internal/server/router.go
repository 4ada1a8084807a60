package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// NewRouter wires the HTTP surface: routes plus the middleware chain.
func NewRouter(h *Handlers, log zerolog.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", h.AddTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/bulk", h.BulkAddTransactions).Methods(http.MethodPost)
	api.HandleFunc("/dashboard/net-balance", h.NetBalance).Methods(http.MethodGet)
	api.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/budgets", h.ListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", h.SetBudget).Methods(http.MethodPut)
	api.HandleFunc("/bills", h.ListBills).Methods(http.MethodGet)
	api.HandleFunc("/bills", h.UpsertBill).Methods(http.MethodPut)

	var handler http.Handler = r
	handler = CORS(handler)
	handler = RequestLogger(log)(handler)
	handler = Recovery(log)(handler)
	return handler
}
