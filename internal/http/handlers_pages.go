package http

import (
	"net/http"

	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/preferences"
	"baketrack/internal/report"
)

// loadPage fetches the dashboard for a full page. A failed fetch still
// renders the page, empty, with an error banner.
func (s *Server) loadPage(r *http.Request, title, active string) (pageData, core.Dashboard) {
	prefs := preferences.FromRequest(r)
	page := pageData{Title: prefs.T(title), Active: active, Prefs: prefs, Profile: core.GuestProfile}

	dash, err := s.dash.Snapshot(r.Context())
	if err != nil {
		s.appMetrics.backendFailures.Add(1)
		log.FromContext(r.Context()).WithComponent(log.ComponentDashboard).ErrorContext(r.Context(), "Failed to load dashboard",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		page.LoadError = prefs.T("refresh.error")
		return page, core.Dashboard{}
	}
	page.Profile = dash.Profile
	return page, dash
}

func (s *Server) handleInputPage(w http.ResponseWriter, r *http.Request) {
	page, dash := s.loadPage(r, "nav.input", "input")

	history := newTransactionTable(historyPageSize, dash.Transactions)
	ParseTableParams(r.URL.Query()).Apply(history)

	data := struct {
		pageData
		Products []core.Product
		Today    string
		History  tableView
		// Edit prefills the form when ?edit=<id> names a transaction.
		Edit *core.Transaction
	}{
		pageData: page,
		Products: dash.Products,
		Today:    s.now().Format(core.DateLayout),
		History:  newTableView("history-table", "/ui/history", true, history.View(), page.Prefs),
	}
	if id := r.URL.Query().Get("edit"); id != "" {
		for i := range dash.Transactions {
			if dash.Transactions[i].ID == id {
				data.Edit = &dash.Transactions[i]
				break
			}
		}
	}
	s.render(w, r, http.StatusOK, "input.html", data)
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	page, dash := s.loadPage(r, "report.title", "report")

	rep := report.Build(dash.Transactions, dash.Products, page.Prefs.FormatPrice)
	tbl := newTransactionTable(reportPageSize, dash.Transactions)
	ParseTableParams(r.URL.Query()).Apply(tbl)

	data := struct {
		pageData
		Report reportView
		Table  tableView
	}{
		pageData: page,
		Report:   reportView{Report: rep, Bars: weeklyBars(rep.Weekly, page.Prefs)},
		Table:    newTableView("report-table", "/ui/report-table", false, tbl.View(), page.Prefs),
	}
	s.render(w, r, http.StatusOK, "report.html", data)
}

func (s *Server) handleProductsPage(w http.ResponseWriter, r *http.Request) {
	page, dash := s.loadPage(r, "product.title", "products")

	data := struct {
		pageData
		Products []productRow
	}{
		pageData: page,
		Products: productRows(dash.Products, page.Prefs),
	}
	s.render(w, r, http.StatusOK, "products.html", data)
}

func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	page, _ := s.loadPage(r, "settings.title", "settings")

	data := struct {
		pageData
		Languages  []preferences.Language
		Currencies []preferences.Currency
	}{
		pageData:   page,
		Languages:  []preferences.Language{preferences.ID, preferences.EN},
		Currencies: []preferences.Currency{preferences.IDR, preferences.USD},
	}
	s.render(w, r, http.StatusOK, "settings.html", data)
}
