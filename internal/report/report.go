// Package report computes the sales summaries shown on the report page:
// headline stats, the three best selling products and a Monday-first weekly
// series of revenue and profit. Everything here is pure and never fails;
// degenerate input yields zero values.
package report

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
)

// Formatter renders an amount in the caller's display currency.
type Formatter func(decimal.Decimal) string

// FallbackIcon is used when neither the catalog nor the keyword table has one.
const FallbackIcon = "🥯"

// MaxTopProducts caps TopProducts.
const MaxTopProducts = 3

// Ordered: the first keyword contained in a product name wins.
var defaultIcons = []struct {
	keyword string
	icon    string
}{
	{"Cupcake", "🧁"},
	{"Donat", "🍩"},
	{"Croissant", "🥐"},
	{"Roti", "🍞"},
	{"Cake", "🍰"},
}

// WeekDays are the labels of Weekly, in output order.
var WeekDays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var hundred = decimal.NewFromInt(100)

// Report bundles the three views computed from one dataset.
type Report struct {
	Stats       core.ReportStats    `json:"stats"`
	TopProducts []core.TopProduct   `json:"topProducts"`
	Weekly      []core.WeeklyBucket `json:"weekly"`
}

func Build(txs []core.Transaction, products []core.Product, format Formatter) Report {
	return Report{
		Stats:       Stats(txs, products, format),
		TopProducts: TopProducts(txs, products),
		Weekly:      Weekly(txs, products),
	}
}

// Stats computes revenue (omzet), profit (laba), average order value and
// margin. Products are matched by exact name; unmatched sales have no cost.
func Stats(txs []core.Transaction, products []core.Product, format Formatter) core.ReportStats {
	omzet := decimal.Zero
	laba := decimal.Zero
	for _, t := range txs {
		omzet = omzet.Add(t.Total)
		laba = laba.Add(profit(t, products))
	}

	aov := decimal.Zero
	if len(txs) > 0 {
		aov = omzet.Div(decimal.NewFromInt(int64(len(txs))))
	}

	margin := decimal.Zero
	if omzet.IsPositive() {
		margin = laba.Div(omzet).Mul(hundred)
	}

	return core.ReportStats{
		Omzet:    format(omzet),
		Laba:     format(laba),
		AOV:      format(aov),
		Margin:   margin.StringFixed(1) + "%",
		TotalTx:  len(txs),
		RawOmzet: omzet,
	}
}

// TopProducts groups sales by trimmed product name and returns up to three
// groups by quantity sold. Equal quantities keep first-seen order.
func TopProducts(txs []core.Transaction, products []core.Product) []core.TopProduct {
	var groups []core.TopProduct
	index := make(map[string]int)
	for _, t := range txs {
		name := strings.TrimSpace(t.Product)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, core.TopProduct{Name: name, Icon: iconFor(name, products)})
		}
		groups[i].Sold += t.Qty
	}

	slices.SortStableFunc(groups, func(a, b core.TopProduct) int {
		return b.Sold - a.Sold
	})
	if len(groups) > MaxTopProducts {
		groups = groups[:MaxTopProducts]
	}
	return groups
}

// Weekly buckets revenue and profit by weekday of the transaction date,
// Monday first. Transactions with unparseable dates are left out of the
// series only.
func Weekly(txs []core.Transaction, products []core.Product) []core.WeeklyBucket {
	buckets := make([]core.WeeklyBucket, len(WeekDays))
	for i, day := range WeekDays {
		buckets[i] = core.WeeklyBucket{Day: day, Omzet: decimal.Zero, Laba: decimal.Zero}
	}

	for _, t := range txs {
		d, ok := core.ParseDate(t.Date)
		if !ok {
			continue
		}
		// time.Weekday is Sunday = 0; shift so Monday lands at 0.
		i := (int(d.Weekday()) + 6) % 7
		buckets[i].Omzet = buckets[i].Omzet.Add(t.Total)
		buckets[i].Laba = buckets[i].Laba.Add(profit(t, products))
	}
	return buckets
}

func profit(t core.Transaction, products []core.Product) decimal.Decimal {
	cost := decimal.Zero
	if p, ok := findProduct(products, t.Product); ok {
		cost = p.CostPrice.OrElse(decimal.Zero)
	}
	return t.Price.Sub(cost).Mul(decimal.NewFromInt(int64(t.Qty)))
}

func findProduct(products []core.Product, name string) (core.Product, bool) {
	for _, p := range products {
		if p.Name == name {
			return p, true
		}
	}
	return core.Product{}, false
}

func iconFor(name string, products []core.Product) string {
	if p, ok := findProduct(products, name); ok && p.Image != "" {
		return p.Image
	}
	for _, d := range defaultIcons {
		if strings.Contains(name, d.keyword) {
			return d.icon
		}
	}
	return FallbackIcon
}
