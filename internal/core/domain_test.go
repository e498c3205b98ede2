package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionNormalize(t *testing.T) {
	tx := Transaction{Date: " 2024-01-01 ", Product: "  Cupcake ", Qty: 3, Price: decimal.NewFromInt(5000), Total: decimal.NewFromInt(1)}
	tx.Normalize()
	if tx.Product != "Cupcake" {
		t.Fatalf("product = %q, want Cupcake", tx.Product)
	}
	if tx.Date != "2024-01-01" {
		t.Fatalf("date = %q", tx.Date)
	}
	if !tx.Total.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("total = %s, want 15000", tx.Total)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Date: "2024-01-01", Product: "Roti", Qty: 1, Price: decimal.NewFromInt(8000)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"empty date", Transaction{Product: "Roti", Qty: 1}, ErrEmptyDate},
		{"bad date", Transaction{Date: "yesterday", Product: "Roti", Qty: 1}, ErrInvalidDate},
		{"empty product", Transaction{Date: "2024-01-01", Qty: 1}, ErrEmptyProduct},
		{"blank product", Transaction{Date: "2024-01-01", Product: "   ", Qty: 1}, ErrEmptyProduct},
		{"zero qty", Transaction{Date: "2024-01-01", Product: "Roti", Qty: 0}, ErrInvalidQty},
		{"negative price", Transaction{Date: "2024-01-01", Product: "Roti", Qty: 1, Price: decimal.NewFromInt(-1)}, ErrInvalidAmount},
		{"long product", Transaction{Date: "2024-01-01", Product: strings.Repeat("x", 121), Qty: 1}, ErrFieldTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestProductValidateAndMargin(t *testing.T) {
	p := Product{Name: "Donat", Price: decimal.NewFromInt(7000), CostPrice: Some(decimal.NewFromInt(3000)), Stock: 4}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !p.Margin().Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("margin = %s, want 4000", p.Margin())
	}

	legacy := Product{Name: "Roti", Price: decimal.NewFromInt(8000)}
	if !legacy.Margin().Equal(decimal.NewFromInt(8000)) {
		t.Fatalf("legacy margin = %s, want full price", legacy.Margin())
	}

	if err := (Product{Name: "x", Stock: -1}).Validate(); !errors.Is(err, ErrInvalidStock) {
		t.Fatalf("negative stock: got %v", err)
	}
	if err := (Product{Name: "x", CostPrice: Some(decimal.NewFromInt(-5))}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative cost: got %v", err)
	}
}

func TestProfileValidate(t *testing.T) {
	if err := GuestProfile.Validate(); err != nil {
		t.Fatalf("guest profile invalid: %v", err)
	}
	if err := (Profile{Name: "Sari", Email: "not-an-email"}).Validate(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad email: got %v", err)
	}
	if err := (Profile{Name: " "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank name: got %v", err)
	}
}

func TestOptionalJSON(t *testing.T) {
	var p Product
	if err := json.Unmarshal([]byte(`{"id":1,"name":"Cake","price":"10","costPrice":null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.CostPrice.IsSet() {
		t.Fatal("null cost price should be absent")
	}
	if err := json.Unmarshal([]byte(`{"id":1,"name":"Cake","price":"10","costPrice":"4.5"}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c, ok := p.CostPrice.Get()
	if !ok || !c.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("cost price = %v %v", c, ok)
	}
	b, err := json.Marshal(None[int]())
	if err != nil || string(b) != "null" {
		t.Fatalf("marshal none = %s %v", b, err)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-01", true},
		{"2024-01-01T10:00:00Z", true},
		{"2024-01-01T10:00:00.123Z", true},
		{"2024-01-01 10:00:00", true},
		{"1/15/2024", true},
		{"", false},
		{"not a date", false},
		{"2024-13-01", false},
	}
	for _, tc := range cases {
		if _, ok := ParseDate(tc.in); ok != tc.ok {
			t.Fatalf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
	}
}
