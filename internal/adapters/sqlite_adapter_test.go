package adapters

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
	"baketrack/internal/services"
	"baketrack/internal/storage"
)

func TestSQLiteAdapter_RoundTrip(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "baketrack.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	a := NewSQLiteAdapter(repo, services.NewTransactionService(repo, nil, nil))
	ctx := context.Background()

	id, err := a.SubmitTransaction(ctx, core.Transaction{Date: "2024-05-30", Product: "Croissant", Qty: 1, Price: decimal.NewFromInt(18000)}, false)
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	txs, err := a.ListTransactions(ctx)
	if err != nil || len(txs) != 1 || txs[0].ID != id {
		t.Fatalf("ListTransactions = %+v, %v", txs, err)
	}
	if err := a.DeleteTransaction(ctx, id); err != nil {
		t.Fatal(err)
	}

	pid, err := a.SubmitProduct(ctx, core.Product{Name: "Bolu", Price: decimal.NewFromInt(20000)}, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.DeleteProduct(ctx, pid); err != nil {
		t.Fatal(err)
	}
	if err := a.UpdateProfile(ctx, core.Profile{Name: "Sari"}); err != nil {
		t.Fatal(err)
	}
	if p, _ := a.GetProfile(ctx); p.Name != "Sari" {
		t.Fatalf("profile = %+v", p)
	}
}
