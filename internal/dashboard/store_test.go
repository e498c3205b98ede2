package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
	ports "baketrack/internal/sheets"
	"baketrack/internal/sheets/memory"
)

// countingService wraps a DataService, counting list calls and optionally
// failing reads or writes.
type countingService struct {
	ports.DataService
	lists     atomic.Int32
	failRead  atomic.Bool
	failWrite atomic.Bool
}

var errBoom = errors.New("boom")

func (c *countingService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	c.lists.Add(1)
	if c.failRead.Load() {
		return nil, errBoom
	}
	return c.DataService.ListTransactions(ctx)
}

func (c *countingService) SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	if c.failWrite.Load() {
		return "", errBoom
	}
	return c.DataService.SubmitTransaction(ctx, tx, isUpdate)
}

func newStore(t *testing.T) (*Store, *countingService) {
	t.Helper()
	svc := &countingService{DataService: memory.New(memory.DefaultProducts())}
	return New(svc, time.Minute, nil), svc
}

func sale(product string, qty int) core.Transaction {
	return core.Transaction{Date: "2024-05-30", Product: product, Qty: qty, Price: decimal.NewFromInt(1000)}
}

func TestSnapshot_CachesUntilInvalidated(t *testing.T) {
	s, svc := newStore(t)
	ctx := context.Background()

	d, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(d.Products) != len(memory.DefaultProducts()) {
		t.Fatalf("products = %d", len(d.Products))
	}
	if d.Profile != core.GuestProfile {
		t.Fatalf("profile = %+v, want guest", d.Profile)
	}
	if _, err := s.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if svc.lists.Load() != 1 {
		t.Fatalf("lists = %d, want 1 (second read cached)", svc.lists.Load())
	}

	s.Invalidate()
	if _, err := s.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}
	if svc.lists.Load() != 2 {
		t.Fatalf("lists = %d, want 2 after invalidate", svc.lists.Load())
	}
}

func TestSnapshot_ConcurrentMissesShareFetch(t *testing.T) {
	s, svc := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Snapshot(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n := svc.lists.Load(); n < 1 || n > 8 {
		t.Fatalf("lists = %d", n)
	}
	if _, ok := s.cache.Get(cacheKey); !ok {
		t.Fatal("dashboard should be cached")
	}
}

func TestSnapshot_FetchErrorNotCached(t *testing.T) {
	s, svc := newStore(t)
	svc.failRead.Store(true)
	if _, err := s.Snapshot(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
	svc.failRead.Store(false)
	if _, err := s.Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot after recovery: %v", err)
	}
}

func TestSubmitTransaction_RefreshesAfterWrite(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	if _, err := s.Snapshot(ctx); err != nil {
		t.Fatal(err)
	}

	id, err := s.SubmitTransaction(ctx, sale("Croissant", 2), false)
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	d, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Transactions) != 1 || d.Transactions[0].ID != id {
		t.Fatalf("transactions = %+v", d.Transactions)
	}
	if !d.Transactions[0].Total.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("total = %s, want 2000", d.Transactions[0].Total)
	}

	if err := s.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	d, _ = s.Snapshot(ctx)
	if len(d.Transactions) != 0 {
		t.Fatalf("transactions after delete = %d", len(d.Transactions))
	}
}

func TestSubmitTransaction_FailureKeepsCache(t *testing.T) {
	s, svc := newStore(t)
	ctx := context.Background()
	before, _ := s.Snapshot(ctx)

	svc.failWrite.Store(true)
	if _, err := s.SubmitTransaction(ctx, sale("Croissant", 1), false); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want boom", err)
	}
	after, _ := s.Snapshot(ctx)
	if !after.FetchedAt.Equal(before.FetchedAt) || svc.lists.Load() != 1 {
		t.Fatal("failed write must not refresh the dataset")
	}
}

func TestRefreshFailureAfterWrite(t *testing.T) {
	s, svc := newStore(t)
	ctx := context.Background()
	s.Snapshot(ctx)

	svc.failRead.Store(true)
	if _, err := s.SubmitTransaction(ctx, sale("Donat Gula", 1), false); err != nil {
		t.Fatalf("write itself succeeded, got %v", err)
	}
	if _, ok := s.cache.Get(cacheKey); ok {
		t.Fatal("cache should be empty after failed refresh")
	}
	svc.failRead.Store(false)
	d, err := s.Snapshot(ctx)
	if err != nil || len(d.Transactions) != 1 {
		t.Fatalf("Snapshot = %d txs, %v", len(d.Transactions), err)
	}
}

func TestProductsAndProfile(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	id, err := s.SubmitProduct(ctx, core.Product{Name: "Bolu", Price: decimal.NewFromInt(20000), Stock: 3}, false)
	if err != nil {
		t.Fatalf("SubmitProduct: %v", err)
	}
	if err := s.UpdateProfile(ctx, core.Profile{Name: "Sari", Email: "sari@bakery.com"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	d, _ := s.Snapshot(ctx)
	if d.Profile.Name != "Sari" {
		t.Fatalf("profile = %+v", d.Profile)
	}
	found := false
	for _, p := range d.Products {
		found = found || p.ID == id
	}
	if !found {
		t.Fatalf("product %d missing", id)
	}

	if err := s.DeleteProduct(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProduct(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
