// This file implements utilities for parsing and validating HTTP request
// data: table state from query strings and the entity forms posted by the
// pages, in either form-encoded or JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"baketrack/internal/core"
	"baketrack/internal/table"
)

// PageSizeOptions are offered by the rows-per-page selector.
var PageSizeOptions = []int{5, 10, 20, 25, 100}

const maxBodyBytes = 64 << 10

// TableParams is the table state carried in a partial's query string.
type TableParams struct {
	Query  string
	Page   int
	Size   int
	Sort   *table.Sort
	Toggle string
}

// ParseTableParams reads q, page, size, sort, dir and toggle. Missing or
// malformed numbers become zero and are left to the table's defaults and
// clamping.
func ParseTableParams(query url.Values) TableParams {
	p := TableParams{
		Query:  sanitizeInput(query.Get("q")),
		Page:   atoiDefault(query.Get("page"), 0),
		Size:   atoiDefault(query.Get("size"), 0),
		Toggle: strings.TrimSpace(query.Get("toggle")),
	}
	if key := strings.TrimSpace(query.Get("sort")); key != "" {
		p.Sort = &table.Sort{Key: key, Direction: table.ParseDirection(query.Get("dir"))}
	}
	return p
}

// Apply restores the table state in the order the engine expects: sort,
// toggle, page size and query (both reset the page), then the page itself.
func (p TableParams) Apply(sorter interface {
	SetSort(*table.Sort)
	ToggleSort(string)
	SetPageSize(int)
	SetQuery(string)
	GoToPage(int)
}) {
	if p.Sort != nil {
		sorter.SetSort(p.Sort)
	}
	if p.Toggle != "" {
		sorter.ToggleSort(p.Toggle)
	}
	if p.Size > 0 {
		sorter.SetPageSize(p.Size)
	}
	sorter.SetQuery(p.Query)
	if p.Page > 0 {
		sorter.GoToPage(p.Page)
	}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was sent, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ErrUnknownProduct is returned when no price was sent and the catalog has
// no product of that name.
var ErrUnknownProduct = errors.New("unknown product")

// ParseTransaction builds a transaction from a posted body. A non-empty id
// makes it an update. An empty date means today; an empty price falls back
// to the catalog price of the named product.
func ParseTransaction(p *RequestBodyParser, today string, catalog []core.Product) (core.Transaction, bool, error) {
	tx := core.Transaction{
		ID:      p.Get("id"),
		Date:    p.Get("date"),
		Product: p.Get("product"),
		AddedBy: p.Get("addedBy"),
	}
	if tx.Date == "" {
		tx.Date = today
	}

	qty, err := core.ParseQty(p.Get("qty"))
	if err != nil {
		return tx, false, err
	}
	tx.Qty = qty

	if raw := p.Get("price"); raw != "" {
		price, err := core.ParseAmount(raw)
		if err != nil {
			return tx, false, err
		}
		tx.Price = price
	} else {
		i := slices.IndexFunc(catalog, func(c core.Product) bool { return c.Name == tx.Product })
		if i < 0 {
			if tx.Product == "" {
				return tx, false, core.ErrEmptyProduct
			}
			return tx, false, ErrUnknownProduct
		}
		tx.Price = catalog[i].Price
	}

	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return tx, false, err
	}
	return tx, tx.ID != "", nil
}

// ParseProduct builds a product from a posted body. An id > 0 makes it an
// update. An empty cost price is stored as absent.
func ParseProduct(p *RequestBodyParser) (core.Product, bool, error) {
	prod := core.Product{
		Name:  p.Get("name"),
		Image: p.Get("image"),
	}
	if raw := p.Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			return prod, false, core.ErrNotFound
		}
		prod.ID = id
	}

	price, err := core.ParseAmount(p.Get("price"))
	if err != nil {
		return prod, false, err
	}
	prod.Price = price

	if raw := p.Get("costPrice"); raw != "" {
		cost, err := core.ParseAmount(raw)
		if err != nil {
			return prod, false, err
		}
		prod.CostPrice = core.Some(cost)
	}

	for _, f := range []struct {
		key string
		dst *int
	}{{"stock", &prod.Stock}, {"sold", &prod.Sold}} {
		raw := p.Get(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return prod, false, core.ErrInvalidStock
		}
		*f.dst = n
	}

	if err := prod.Validate(); err != nil {
		return prod, false, err
	}
	return prod, prod.ID > 0, nil
}

func ParseProfile(p *RequestBodyParser) (core.Profile, error) {
	prof := core.Profile{
		Name:     p.Get("name"),
		Email:    p.Get("email"),
		PhotoURL: p.Get("photourl"),
	}
	return prof, prof.Validate()
}
