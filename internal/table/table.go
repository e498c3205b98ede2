// Package table provides filtering, stable sorting and pagination over an
// in-memory record list. A Table is owned by one request or view at a time
// and is not safe for concurrent use.
package table

import (
	"slices"
)

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(s string) Direction {
	if Direction(s) == Desc {
		return Desc
	}
	return Asc
}

// Sort is the active column key and direction.
type Sort struct {
	Key       string
	Direction Direction
}

// Config describes a table. Columns maps sort keys to comparators; a key
// without a comparator is accepted but leaves the filtered order unchanged.
type Config[T any] struct {
	PageSize    int
	InitialSort *Sort
	Filter      func(record T, query string) bool
	Columns     map[string]Comparator[T]
}

// Page is one view of the table.
type Page[T any] struct {
	Rows        []T
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PageSize    int
	Query       string
	Sort        *Sort
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.CurrentPage < p.TotalPages }

// Pages lists page numbers for a pager control.
func (p Page[T]) Pages() []int {
	out := make([]int, p.TotalPages)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Range returns the 1-based numbers of the first and last rows shown, or
// zeros for an empty page.
func (p Page[T]) Range() (from, to int) {
	if len(p.Rows) == 0 {
		return 0, 0
	}
	from = (p.CurrentPage-1)*p.PageSize + 1
	return from, from + len(p.Rows) - 1
}

const DefaultPageSize = 10

type Table[T any] struct {
	cfg      Config[T]
	data     []T
	query    string
	page     int
	pageSize int
	sort     *Sort
}

func New[T any](cfg Config[T]) *Table[T] {
	t := &Table[T]{cfg: cfg, page: 1, pageSize: cfg.PageSize}
	if t.pageSize < 1 {
		t.pageSize = DefaultPageSize
	}
	if cfg.InitialSort != nil {
		s := *cfg.InitialSort
		t.sort = &s
	}
	return t
}

// SetData replaces the full record list. Query, sort and page are kept.
func (t *Table[T]) SetData(data []T) {
	t.data = data
}

// SetQuery replaces the search query and returns to the first page.
func (t *Table[T]) SetQuery(q string) {
	t.query = q
	t.page = 1
}

// ToggleSort flips the direction when key is already active, otherwise
// switches to key in ascending order.
func (t *Table[T]) ToggleSort(key string) {
	if t.sort != nil && t.sort.Key == key {
		if t.sort.Direction == Asc {
			t.sort.Direction = Desc
		} else {
			t.sort.Direction = Asc
		}
		return
	}
	t.sort = &Sort{Key: key, Direction: Asc}
}

// SetSort replaces the active sort. Used to restore state from a request.
func (t *Table[T]) SetSort(s *Sort) {
	if s == nil {
		t.sort = nil
		return
	}
	c := *s
	t.sort = &c
}

// SetPageSize ignores n < 1.
func (t *Table[T]) SetPageSize(n int) {
	if n < 1 {
		return
	}
	t.pageSize = n
	t.page = 1
}

// GoToPage clamps p into the valid page range.
func (t *Table[T]) GoToPage(p int) {
	t.page = clamp(p, 1, t.totalPages(len(t.filtered())))
}

func (t *Table[T]) View() Page[T] {
	rows := t.filtered()
	t.sortRows(rows)

	total := len(rows)
	pages := t.totalPages(total)
	// Data may have shrunk since the page was chosen.
	current := clamp(t.page, 1, pages)

	start := (current - 1) * t.pageSize
	end := min(start+t.pageSize, total)

	var s *Sort
	if t.sort != nil {
		c := *t.sort
		s = &c
	}
	return Page[T]{
		Rows:        rows[start:end],
		CurrentPage: current,
		TotalPages:  pages,
		TotalItems:  total,
		PageSize:    t.pageSize,
		Query:       t.query,
		Sort:        s,
	}
}

// filtered always returns a fresh slice so sorting never reorders the
// caller's data.
func (t *Table[T]) filtered() []T {
	if t.query == "" || t.cfg.Filter == nil {
		return slices.Clone(t.data)
	}
	out := make([]T, 0, len(t.data))
	for _, r := range t.data {
		if t.cfg.Filter(r, t.query) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T]) sortRows(rows []T) {
	if t.sort == nil {
		return
	}
	cmp, ok := t.cfg.Columns[t.sort.Key]
	if !ok || cmp == nil {
		return
	}
	if t.sort.Direction == Desc {
		cmp = Reverse(cmp)
	}
	slices.SortStableFunc(rows, cmp)
}

func (t *Table[T]) totalPages(items int) int {
	return max(1, (items+t.pageSize-1)/t.pageSize)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
