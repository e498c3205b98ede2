package table

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

type row struct {
	ID    int
	Name  string
	Date  string
	Group int
	Price decimal.Decimal
}

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{ID: i + 1, Name: fmt.Sprintf("item-%02d", i+1), Group: i % 3, Price: decimal.NewFromInt(int64(n - i))}
	}
	return out
}

func newTable(pageSize int) *Table[row] {
	return New(Config[row]{
		PageSize: pageSize,
		Filter:   Contains(func(r row) string { return r.Name }),
		Columns: map[string]Comparator[row]{
			"id":    ByNumber(func(r row) int { return r.ID }),
			"name":  ByString(func(r row) string { return r.Name }),
			"group": ByNumber(func(r row) int { return r.Group }),
			"price": ByDecimal(func(r row) decimal.Decimal { return r.Price }),
			"date":  ByDate(func(r row) string { return r.Date }),
		},
	})
}

func ids(rs []row) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestPagination(t *testing.T) {
	tb := newTable(5)
	tb.SetData(rows(12))

	v := tb.View()
	if v.TotalPages != 3 || v.TotalItems != 12 || v.CurrentPage != 1 || len(v.Rows) != 5 {
		t.Fatalf("first view = pages %d items %d current %d rows %d", v.TotalPages, v.TotalItems, v.CurrentPage, len(v.Rows))
	}
	if v.HasPrev() || !v.HasNext() {
		t.Fatal("page 1 should have next only")
	}

	tb.GoToPage(5)
	v = tb.View()
	if v.CurrentPage != 3 || len(v.Rows) != 2 {
		t.Fatalf("clamped view current %d rows %d, want 3 and 2", v.CurrentPage, len(v.Rows))
	}
	if from, to := v.Range(); from != 11 || to != 12 {
		t.Fatalf("range = %d-%d, want 11-12", from, to)
	}

	tb.GoToPage(0)
	if v = tb.View(); v.CurrentPage != 1 {
		t.Fatalf("GoToPage(0) current = %d, want 1", v.CurrentPage)
	}
	if got := v.Pages(); len(got) != 3 || got[2] != 3 {
		t.Fatalf("Pages() = %v", got)
	}
}

func TestEmptyData(t *testing.T) {
	tb := newTable(5)
	v := tb.View()
	if v.TotalPages != 1 || v.TotalItems != 0 || v.CurrentPage != 1 || len(v.Rows) != 0 {
		t.Fatalf("empty view = %+v", v)
	}
	if from, to := v.Range(); from != 0 || to != 0 {
		t.Fatalf("empty range = %d-%d", from, to)
	}
}

func TestQueryResetsPage(t *testing.T) {
	tb := newTable(5)
	tb.SetData(rows(12))
	tb.GoToPage(3)

	tb.SetQuery("ITEM-1")
	v := tb.View()
	if v.CurrentPage != 1 {
		t.Fatalf("current = %d, want 1 after query", v.CurrentPage)
	}
	// item-10, item-11, item-12
	if v.TotalItems != 3 || v.TotalPages != 1 {
		t.Fatalf("filtered items %d pages %d", v.TotalItems, v.TotalPages)
	}
	if v.Query != "ITEM-1" {
		t.Fatalf("query = %q", v.Query)
	}

	tb.SetQuery("")
	if v = tb.View(); v.TotalItems != 12 {
		t.Fatalf("empty query should disable filtering, got %d", v.TotalItems)
	}
}

func TestToggleSort(t *testing.T) {
	tb := newTable(20)
	tb.SetData(rows(4))

	tb.ToggleSort("price")
	v := tb.View()
	if v.Sort == nil || v.Sort.Key != "price" || v.Sort.Direction != Asc {
		t.Fatalf("sort = %+v, want price asc", v.Sort)
	}
	if got := ids(v.Rows); fmt.Sprint(got) != "[4 3 2 1]" {
		t.Fatalf("price asc = %v", got)
	}

	tb.ToggleSort("price")
	v = tb.View()
	if v.Sort.Direction != Desc || fmt.Sprint(ids(v.Rows)) != "[1 2 3 4]" {
		t.Fatalf("price desc = %v %v", v.Sort, ids(v.Rows))
	}

	tb.ToggleSort("name")
	if v = tb.View(); v.Sort.Key != "name" || v.Sort.Direction != Asc {
		t.Fatalf("new key should start asc, got %+v", v.Sort)
	}
}

func TestSortIsStable(t *testing.T) {
	tb := newTable(20)
	tb.SetData(rows(7))

	tb.ToggleSort("group")
	asc := ids(tb.View().Rows)
	if fmt.Sprint(asc) != "[1 4 7 2 5 3 6]" {
		t.Fatalf("group asc = %v", asc)
	}

	tb.ToggleSort("group")
	desc := ids(tb.View().Rows)
	if fmt.Sprint(desc) != "[3 6 2 5 1 4 7]" {
		t.Fatalf("group desc = %v, ties must keep original order", desc)
	}

	tb.ToggleSort("group")
	if again := ids(tb.View().Rows); fmt.Sprint(again) != fmt.Sprint(asc) {
		t.Fatalf("toggling twice changed order: %v vs %v", again, asc)
	}
}

func TestSortDoesNotMutateData(t *testing.T) {
	data := rows(5)
	tb := newTable(5)
	tb.SetData(data)
	tb.ToggleSort("price")
	_ = tb.View()
	if fmt.Sprint(ids(data)) != "[1 2 3 4 5]" {
		t.Fatalf("source data reordered: %v", ids(data))
	}
}

func TestUnknownSortKey(t *testing.T) {
	tb := newTable(5)
	tb.SetData(rows(3))
	tb.ToggleSort("missing")
	if got := ids(tb.View().Rows); fmt.Sprint(got) != "[1 2 3]" {
		t.Fatalf("unknown key should keep order, got %v", got)
	}
}

func TestInitialSortAndSetPageSize(t *testing.T) {
	tb := New(Config[row]{
		PageSize:    2,
		InitialSort: &Sort{Key: "id", Direction: Desc},
		Columns:     map[string]Comparator[row]{"id": ByNumber(func(r row) int { return r.ID })},
	})
	tb.SetData(rows(5))
	if got := ids(tb.View().Rows); fmt.Sprint(got) != "[5 4]" {
		t.Fatalf("initial sort rows = %v", got)
	}

	tb.GoToPage(2)
	tb.SetPageSize(0)
	if v := tb.View(); v.PageSize != 2 || v.CurrentPage != 2 {
		t.Fatalf("invalid page size should be ignored, got size %d page %d", v.PageSize, v.CurrentPage)
	}
	tb.SetPageSize(3)
	if v := tb.View(); v.PageSize != 3 || v.CurrentPage != 1 || v.TotalPages != 2 {
		t.Fatalf("after SetPageSize(3): %+v", v)
	}
}

func TestDataShrinkClampsView(t *testing.T) {
	tb := newTable(5)
	tb.SetData(rows(12))
	tb.GoToPage(3)
	tb.SetData(rows(6))
	v := tb.View()
	if v.CurrentPage != 2 || len(v.Rows) != 1 {
		t.Fatalf("after shrink current %d rows %d, want 2 and 1", v.CurrentPage, len(v.Rows))
	}
}

func TestByDate(t *testing.T) {
	tb := newTable(10)
	tb.SetData([]row{
		{ID: 1, Date: "2024-03-01"},
		{ID: 2, Date: "bogus"},
		{ID: 3, Date: "2024-01-15T08:00:00Z"},
		{ID: 4, Date: "2/1/2024"},
	})
	tb.ToggleSort("date")
	if got := ids(tb.View().Rows); fmt.Sprint(got) != "[3 4 1 2]" {
		t.Fatalf("date asc = %v", got)
	}
}

func TestParseDirection(t *testing.T) {
	if ParseDirection("desc") != Desc || ParseDirection("DESC") != Asc || ParseDirection("") != Asc {
		t.Fatal("ParseDirection mismatch")
	}
}
