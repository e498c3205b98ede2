package http

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/preferences"
	"baketrack/internal/report"
	"baketrack/internal/table"
)

const (
	historyPageSize = 10
	reportPageSize  = 5
)

var transactionColumns = map[string]table.Comparator[core.Transaction]{
	"date":    table.ByDate(func(t core.Transaction) string { return t.Date }),
	"product": table.ByFold(func(t core.Transaction) string { return t.Product }),
	"qty":     table.ByNumber(func(t core.Transaction) int { return t.Qty }),
	"price":   table.ByDecimal(func(t core.Transaction) decimal.Decimal { return t.Price }),
	"total":   table.ByDecimal(func(t core.Transaction) decimal.Decimal { return t.Total }),
}

// newTransactionTable starts newest first and searches product names.
func newTransactionTable(pageSize int, txs []core.Transaction) *table.Table[core.Transaction] {
	t := table.New(table.Config[core.Transaction]{
		PageSize:    pageSize,
		InitialSort: &table.Sort{Key: "date", Direction: table.Desc},
		Filter:      table.Contains(func(t core.Transaction) string { return t.Product }),
		Columns:     transactionColumns,
	})
	t.SetData(txs)
	return t
}

type pageData struct {
	Title   string
	Active  string
	Prefs   preferences.Preferences
	Profile core.Profile
	// LoadError is shown as a banner when the dashboard could not be fetched.
	LoadError string
}

type txRow struct {
	core.Transaction
	DateLabel  string
	PriceLabel string
	TotalLabel string
}

type columnView struct {
	Key       string
	Label     string
	Sortable  bool
	Indicator string
}

// tableView is a rendered table page plus what its controls need to build
// follow-up requests.
type tableView struct {
	ID          string
	Endpoint    string
	Editable    bool
	Rows        []txRow
	Columns     []columnView
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PageSize    int
	From        int
	To          int
	Query       string
	SortKey     string
	SortDir     string
	HasPrev     bool
	HasNext     bool
	Pages       []int
	SizeOptions []int
	Prefs       preferences.Preferences
}

// URL returns the endpoint with the current state and the given key/value
// overrides. A toggle never carries over to the next request.
func (v tableView) URL(overrides ...string) string {
	q := url.Values{}
	if v.Query != "" {
		q.Set("q", v.Query)
	}
	q.Set("page", strconv.Itoa(v.CurrentPage))
	q.Set("size", strconv.Itoa(v.PageSize))
	if v.SortKey != "" {
		q.Set("sort", v.SortKey)
		q.Set("dir", v.SortDir)
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		q.Set(overrides[i], overrides[i+1])
	}
	return v.Endpoint + "?" + q.Encode()
}

func newTableView(id, endpoint string, editable bool, page table.Page[core.Transaction], prefs preferences.Preferences) tableView {
	v := tableView{
		ID:          id,
		Endpoint:    endpoint,
		Editable:    editable,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalItems:  page.TotalItems,
		PageSize:    page.PageSize,
		Query:       page.Query,
		HasPrev:     page.HasPrev(),
		HasNext:     page.HasNext(),
		Pages:       page.Pages(),
		SizeOptions: PageSizeOptions,
		Prefs:       prefs,
	}
	v.From, v.To = page.Range()
	if page.Sort != nil {
		v.SortKey = page.Sort.Key
		v.SortDir = string(page.Sort.Direction)
	}
	for _, key := range []string{"date", "product", "qty", "price", "total"} {
		c := columnView{Key: key, Label: prefs.T(key), Sortable: true}
		if key == v.SortKey {
			c.Indicator = "▲"
			if v.SortDir == string(table.Desc) {
				c.Indicator = "▼"
			}
		}
		v.Columns = append(v.Columns, c)
	}
	for _, t := range page.Rows {
		v.Rows = append(v.Rows, txRow{
			Transaction: t,
			DateLabel:   prefs.FormatDate(t.Date),
			PriceLabel:  prefs.FormatPrice(t.Price),
			TotalLabel:  prefs.FormatPrice(t.Total),
		})
	}
	return v
}

type weeklyBar struct {
	Day        string
	OmzetLabel string
	LabaLabel  string
	// Heights are percentages of the busiest day.
	OmzetHeight int
	LabaHeight  int
}

func weeklyBars(buckets []core.WeeklyBucket, prefs preferences.Preferences) []weeklyBar {
	peak := decimal.Zero
	for _, b := range buckets {
		peak = decimal.Max(peak, b.Omzet, b.Laba)
	}
	height := func(v decimal.Decimal) int {
		if !peak.IsPositive() || !v.IsPositive() {
			return 0
		}
		return int(v.Mul(decimal.NewFromInt(100)).Div(peak).Round(0).IntPart())
	}
	out := make([]weeklyBar, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, weeklyBar{
			Day:         b.Day,
			OmzetLabel:  prefs.FormatPrice(b.Omzet),
			LabaLabel:   prefs.FormatPrice(b.Laba),
			OmzetHeight: height(b.Omzet),
			LabaHeight:  height(b.Laba),
		})
	}
	return out
}

type productRow struct {
	core.Product
	PriceLabel  string
	CostLabel   string
	MarginLabel string
	// CostInput is the raw cost for the edit form, empty when absent.
	CostInput string
}

func productRows(products []core.Product, prefs preferences.Preferences) []productRow {
	out := make([]productRow, 0, len(products))
	for _, p := range products {
		row := productRow{
			Product:     p,
			PriceLabel:  prefs.FormatPrice(p.Price),
			CostLabel:   preferences.DatePlaceholder,
			MarginLabel: prefs.FormatPrice(p.Margin()),
		}
		if c, ok := p.CostPrice.Get(); ok {
			row.CostInput = c.String()
			row.CostLabel = prefs.FormatPrice(c)
		}
		out = append(out, row)
	}
	return out
}

// reportView pairs the computed report with its display helpers.
type reportView struct {
	report.Report
	Bars []weeklyBar
}

// render executes a template into a buffer first so a failing template
// never leaves a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
