package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/preferences"
	"baketrack/internal/report"
	"baketrack/internal/table"
)

// APIError is the JSON body of every failed API call.
type APIError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondJSON sends a JSON response with the given status code. A nil data
// sends only the status.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func RespondError(w http.ResponseWriter, status int, message string, err error) {
	resp := APIError{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	RespondJSON(w, status, resp)
}

// TransactionPage is the JSON form of a table page.
type TransactionPage struct {
	Rows        []core.Transaction `json:"rows"`
	CurrentPage int                `json:"currentPage"`
	TotalPages  int                `json:"totalPages"`
	TotalItems  int                `json:"totalItems"`
	PageSize    int                `json:"pageSize"`
	Query       string             `json:"query"`
	Sort        *SortJSON          `json:"sort"`
}

type SortJSON struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

func (s *Server) apiSnapshot(w http.ResponseWriter, r *http.Request) (core.Dashboard, bool) {
	dash, err := s.dash.Snapshot(r.Context())
	if err != nil {
		s.appMetrics.backendFailures.Add(1)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "API failed to load dashboard", log.FieldError, err)
		RespondError(w, http.StatusBadGateway, "failed to load dashboard", err)
		return dash, false
	}
	return dash, true
}

// handleAPIDashboard serves the cached dashboard as fetched.
//
// Endpoint: GET /api/dashboard
func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.apiSnapshot(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, dash)
}

// handleAPIReport serves stats, top products and the weekly series. Money
// strings in the stats follow the caller's preference cookies.
//
// Endpoint: GET /api/report
func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.apiSnapshot(w, r)
	if !ok {
		return
	}
	prefs := preferences.FromRequest(r)
	RespondJSON(w, http.StatusOK, report.Build(dash.Transactions, dash.Products, prefs.FormatPrice))
}

// handleAPIListTransactions pages through transactions with the same
// q, page, size, sort, dir and toggle parameters as the table partials.
//
// Endpoint: GET /api/transactions
func (s *Server) handleAPIListTransactions(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.apiSnapshot(w, r)
	if !ok {
		return
	}
	tbl := newTransactionTable(table.DefaultPageSize, dash.Transactions)
	ParseTableParams(r.URL.Query()).Apply(tbl)
	page := tbl.View()

	resp := TransactionPage{
		Rows:        page.Rows,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		PageSize:    page.PageSize,
		Query:       page.Query,
	}
	if resp.Rows == nil {
		resp.Rows = []core.Transaction{}
	}
	if page.Sort != nil {
		resp.Sort = &SortJSON{Key: page.Sort.Key, Direction: string(page.Sort.Direction)}
	}
	RespondJSON(w, http.StatusOK, resp)
}

// handleAPISaveTransaction creates a transaction, or updates it when the
// body carries an id.
//
// Endpoint: POST /api/transactions
// Response: 201 Created (200 OK for an update) with {"id": "..."}
// Error: 422 for invalid input, 404 for an unknown id, 502 when the backend fails
func (s *Server) handleAPISaveTransaction(w http.ResponseWriter, r *http.Request) {
	body := NewRequestBodyParser(r)
	if err := body.Parse(); err != nil || !body.IsJSON() {
		RespondError(w, http.StatusBadRequest, "expected a JSON object", err)
		return
	}

	var catalog []core.Product
	if body.Get("price") == "" {
		if dash, err := s.dash.Snapshot(r.Context()); err == nil {
			catalog = dash.Products
		}
	}
	tx, isUpdate, err := ParseTransaction(body, s.now().Format(core.DateLayout), catalog)
	if err != nil {
		RespondError(w, statusFor(err), "invalid transaction", err)
		return
	}

	id, err := s.dash.SubmitTransaction(r.Context(), tx, isUpdate)
	if err != nil {
		if statusFor(err) == http.StatusBadGateway {
			s.appMetrics.backendFailures.Add(1)
		}
		RespondError(w, statusFor(err), "failed to save transaction", err)
		return
	}
	s.appMetrics.transactionsSaved.Add(1)

	status := http.StatusCreated
	if isUpdate {
		status = http.StatusOK
	}
	RespondJSON(w, status, map[string]string{"id": id})
}

// Endpoint: DELETE /api/transactions/{id}
// Response: 204 No Content
func (s *Server) handleAPIDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(chi.URLParam(r, "id"))
	if err := s.dash.DeleteTransaction(r.Context(), id); err != nil {
		if statusFor(err) == http.StatusBadGateway {
			s.appMetrics.backendFailures.Add(1)
		}
		RespondError(w, statusFor(err), "failed to delete transaction", err)
		return
	}
	s.appMetrics.transactionsDeleted.Add(1)
	RespondJSON(w, http.StatusNoContent, nil)
}
