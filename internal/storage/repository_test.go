package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "baketrack.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	repo.SetClock(func() time.Time { return time.Date(2024, 5, 30, 8, 0, 0, 0, time.UTC) })
	return repo
}

func sale() core.Transaction {
	return core.Transaction{Date: "2024-05-30", Product: "Croissant", Qty: 2, Price: decimal.NewFromInt(18000), AddedBy: "Sari"}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec, err := repo.CreateTransaction(ctx, sale())
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if rec.Transaction.ID == "" || rec.Version != 1 || rec.SyncStatus != SyncPending {
		t.Fatalf("record = %+v", rec)
	}
	if !rec.Transaction.Total.Equal(decimal.NewFromInt(36000)) {
		t.Fatalf("total = %s", rec.Transaction.Total)
	}
	if rec.Transaction.Timestamp != "2024-05-30T08:00:00Z" {
		t.Fatalf("timestamp = %q", rec.Transaction.Timestamp)
	}

	upd := rec.Transaction
	upd.Qty = 3
	rec2, err := repo.UpdateTransaction(ctx, upd)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if rec2.Version != 2 || !rec2.Transaction.Total.Equal(decimal.NewFromInt(54000)) {
		t.Fatalf("updated = %+v", rec2)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListTransactions = %d, %v", len(list), err)
	}

	del, err := repo.DeleteTransaction(ctx, upd.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if !del.Deleted || del.Version != 3 {
		t.Fatalf("deleted = %+v", del)
	}
	if list, _ := repo.ListTransactions(ctx); len(list) != 0 {
		t.Fatalf("deleted transaction still listed")
	}
	if _, err := repo.DeleteTransaction(ctx, upd.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := repo.UpdateTransaction(ctx, upd); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update of deleted err = %v", err)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	repo := newTestRepo(t)
	tx := sale()
	tx.Product = "  "
	if _, err := repo.CreateTransaction(context.Background(), tx); !errors.Is(err, core.ErrEmptyProduct) {
		t.Fatalf("err = %v, want ErrEmptyProduct", err)
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a, _ := repo.CreateTransaction(ctx, sale())
	b, _ := repo.CreateTransaction(ctx, sale())

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending = %v, %v", pending, err)
	}

	ok, err := repo.MarkSynced(ctx, a.ID, a.Version)
	if err != nil || !ok {
		t.Fatalf("MarkSynced = %v, %v", ok, err)
	}

	// b changes before its first push lands: the stale version must not
	// mark it synced.
	upd := b.Transaction
	upd.Qty = 5
	if _, err := repo.UpdateTransaction(ctx, upd); err != nil {
		t.Fatal(err)
	}
	if ok, _ := repo.MarkSynced(ctx, b.ID, b.Version); ok {
		t.Fatal("stale version marked synced")
	}

	if err := repo.MarkSyncError(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	counts, err := repo.SyncCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[SyncSynced] != 1 || counts[SyncError] != 1 {
		t.Fatalf("counts = %v", counts)
	}
	if pending, _ := repo.GetPendingSync(ctx, 10); len(pending) != 1 || pending[0].ID != b.ID {
		t.Fatalf("pending after sync = %v", pending)
	}

	// A synced deletion purges the row.
	del, _ := repo.DeleteTransaction(ctx, a.Transaction.ID)
	if ok, _ := repo.MarkSynced(ctx, del.ID, del.Version); !ok {
		t.Fatal("deletion not acknowledged")
	}
	if _, err := repo.GetTransaction(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("purged row err = %v", err)
	}
}

func TestProductsAndProfile(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seeded, err := repo.ListProducts(ctx)
	if err != nil || len(seeded) != 5 {
		t.Fatalf("seeded products = %d, %v", len(seeded), err)
	}
	if cost, ok := seeded[0].CostPrice.Get(); !ok || !cost.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("seed cost = %v %v", cost, ok)
	}

	id, err := repo.SaveProduct(ctx, core.Product{Name: " Bolu ", Price: decimal.NewFromInt(20000), Stock: 4}, false)
	if err != nil {
		t.Fatalf("SaveProduct: %v", err)
	}
	if _, err := repo.SaveProduct(ctx, core.Product{ID: id, Name: "Bolu Pandan", Price: decimal.NewFromInt(22000)}, true); err != nil {
		t.Fatalf("update product: %v", err)
	}
	products, _ := repo.ListProducts(ctx)
	last := products[len(products)-1]
	if last.Name != "Bolu Pandan" || last.CostPrice.IsSet() {
		t.Fatalf("updated product = %+v", last)
	}
	if _, err := repo.SaveProduct(ctx, core.Product{ID: 999, Name: "x", Price: decimal.Zero}, true); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if err := repo.DeleteProduct(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteProduct(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing err = %v", err)
	}

	p, err := repo.GetProfile(ctx)
	if err != nil || p != core.GuestProfile {
		t.Fatalf("profile = %+v, %v", p, err)
	}
	if err := repo.UpdateProfile(ctx, core.Profile{Name: "Sari", Email: "sari@bakery.com"}); err != nil {
		t.Fatal(err)
	}
	if p, _ := repo.GetProfile(ctx); p.Name != "Sari" {
		t.Fatalf("profile after update = %+v", p)
	}
	if err := repo.UpdateProfile(ctx, core.Profile{Name: "Sari", Email: "nope"}); !errors.Is(err, core.ErrInvalidEmail) {
		t.Fatalf("bad email err = %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baketrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateTransaction(context.Background(), sale()); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	list, _ := repo.ListTransactions(context.Background())
	if len(list) != 1 {
		t.Fatalf("transactions after reopen = %d", len(list))
	}
	if products, _ := repo.ListProducts(context.Background()); len(products) != 5 {
		t.Fatalf("seed applied twice: %d products", len(products))
	}
}
