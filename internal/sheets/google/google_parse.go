package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
)

var (
	transactionHeader = []string{"id", "timestamp", "date", "product", "qty", "price", "total", "addedBy"}
	productHeader     = []string{"id", "name", "price", "costPrice", "stock", "image", "sold"}
)

// columns maps header names to indexes. When the first row does not look
// like a header the fixed layout is assumed and no row is skipped.
func columns(values [][]any, layout []string) (idx map[string]int, skip int) {
	idx = make(map[string]int, len(layout))
	if len(values) > 0 {
		head := toStrings(values[0])
		if indexOf(head, layout[0]) >= 0 || indexOf(head, layout[1]) >= 0 {
			for _, name := range layout {
				idx[name] = indexOf(head, name)
			}
			return idx, 1
		}
	}
	for i, name := range layout {
		idx[name] = i
	}
	return idx, 0
}

func parseTransactions(values [][]any) []core.Transaction {
	idx, skip := columns(values, transactionHeader)
	out := make([]core.Transaction, 0, len(values))
	for _, raw := range values[skip:] {
		row := toStrings(raw)
		get := func(name string) string { return safeGet(row, idx[name]) }
		t := core.Transaction{
			ID:        get("id"),
			Timestamp: get("timestamp"),
			Date:      get("date"),
			Product:   get("product"),
			Qty:       parseInt(get("qty")),
			Price:     core.ParseCellAmount(get("price")),
			Total:     core.ParseCellAmount(get("total")),
			AddedBy:   get("addedBy"),
		}
		if t.ID == "" && t.Product == "" && t.Date == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func parseProducts(values [][]any) []core.Product {
	idx, skip := columns(values, productHeader)
	out := make([]core.Product, 0, len(values))
	for _, raw := range values[skip:] {
		row := toStrings(raw)
		get := func(name string) string { return safeGet(row, idx[name]) }
		name := get("name")
		if name == "" {
			continue
		}
		p := core.Product{
			ID:    int64(parseInt(get("id"))),
			Name:  name,
			Price: core.ParseCellAmount(get("price")),
			Stock: parseInt(get("stock")),
			Image: get("image"),
			Sold:  parseInt(get("sold")),
		}
		if c := get("costPrice"); c != "" {
			p.CostPrice = core.Some(core.ParseCellAmount(c))
		}
		out = append(out, p)
	}
	return out
}

func parseProfile(values [][]any) core.Profile {
	if len(values) == 0 {
		return core.GuestProfile
	}
	row := toStrings(values[0])
	p := core.Profile{Name: safeGet(row, 0), Email: safeGet(row, 1), PhotoURL: safeGet(row, 2)}
	if p.Name == "" {
		return core.GuestProfile
	}
	return p
}

func transactionRow(t core.Transaction) []any {
	return []any{t.ID, t.Timestamp, t.Date, t.Product, t.Qty, t.Price.InexactFloat64(), t.Total.InexactFloat64(), t.AddedBy}
}

// productRow leaves the cost cell empty for products without a cost price.
func productRow(p core.Product) []any {
	var cost any = ""
	if c, ok := p.CostPrice.Get(); ok {
		cost = c.InexactFloat64()
	}
	return []any{p.ID, p.Name, p.Price.InexactFloat64(), cost, p.Stock, p.Image, p.Sold}
}

func nextProductID(products []core.Product) int64 {
	var id int64
	for _, p := range products {
		id = max(id, p.ID)
	}
	return id + 1
}

// rowOf returns the 1-based row of the first cell in column A equal to id,
// or 0.
func rowOf(values [][]any, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0
	}
	for i, raw := range values {
		if len(raw) > 0 && strings.TrimSpace(fmt.Sprint(raw[0])) == id {
			return i + 1
		}
	}
	return 0
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseInt reads integer cells, which arrive as "3" or "3.0" depending on
// how the sheet was edited.
func parseInt(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}
