package http

import (
	"net/http"

	"baketrack/internal/log"
	"baketrack/internal/preferences"
)

func (s *Server) handleHistoryTable(w http.ResponseWriter, r *http.Request) {
	s.renderTablePartial(w, r, "history-table", "/ui/history", historyPageSize, true)
}

func (s *Server) handleReportTable(w http.ResponseWriter, r *http.Request) {
	s.renderTablePartial(w, r, "report-table", "/ui/report-table", reportPageSize, false)
}

// renderTablePartial rebuilds a table from the cached dashboard and the
// state in the query string, and renders only the table fragment.
func (s *Server) renderTablePartial(w http.ResponseWriter, r *http.Request, id, endpoint string, pageSize int, editable bool) {
	prefs := preferences.FromRequest(r)

	dash, err := s.dash.Snapshot(r.Context())
	if err != nil {
		s.appMetrics.backendFailures.Add(1)
		log.FromContext(r.Context()).WithComponent(log.ComponentDashboard).ErrorContext(r.Context(), "Failed to load table data",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification(prefs.T("refresh.error")).
			Write(w)
		return
	}

	tbl := newTransactionTable(pageSize, dash.Transactions)
	ParseTableParams(r.URL.Query()).Apply(tbl)
	s.render(w, r, http.StatusOK, "transaction_table", newTableView(id, endpoint, editable, tbl.View(), prefs))
}
