// Package dashboard owns the cached remote dataset shown by every page:
// transactions, products and the profile. Reads are served from a TTL cache
// filled by one wholesale fetch; every successful write is followed by a
// full refresh instead of patching the cache locally.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"baketrack/internal/cache"
	"baketrack/internal/core"
	"baketrack/internal/log"
	ports "baketrack/internal/sheets"
)

const cacheKey = "dashboard"

type Store struct {
	backend ports.DataService
	cache   *cache.LRUCache[core.Dashboard]
	group   singleflight.Group
	logger  *log.Logger
	now     func() time.Time

	// Serialises writes so a refresh never interleaves with another write.
	writeMu sync.Mutex
}

func New(backend ports.DataService, ttl time.Duration, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		backend: backend,
		cache:   cache.NewLRUCache[core.Dashboard](1, ttl),
		logger:  logger.WithComponent(log.ComponentDashboard),
		now:     time.Now,
	}
}

// Cache exposes the underlying cache for periodic cleanup registration.
func (s *Store) Cache() cache.Cleaner { return s.cache }

// Snapshot returns the cached dashboard, fetching it when the cache is
// empty or expired. Concurrent misses share one fetch.
func (s *Store) Snapshot(ctx context.Context) (core.Dashboard, error) {
	if d, ok := s.cache.Get(cacheKey); ok {
		return d, nil
	}
	return s.load(ctx)
}

// Refresh discards the cached dashboard and fetches a new one. On failure
// the cache stays empty and the error is returned.
func (s *Store) Refresh(ctx context.Context) (core.Dashboard, error) {
	s.Invalidate()
	return s.load(ctx)
}

func (s *Store) Invalidate() {
	s.cache.Delete(cacheKey)
}

func (s *Store) load(ctx context.Context) (core.Dashboard, error) {
	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		d, err := s.fetchAll(ctx)
		if err != nil {
			return core.Dashboard{}, err
		}
		s.cache.Set(cacheKey, d)
		return d, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Dashboard fetch failed", log.FieldOperation, log.OpRefresh, log.FieldError, err)
		return core.Dashboard{}, err
	}
	return v.(core.Dashboard), nil
}

// fetchAll reads the three datasets concurrently. Any failure fails the
// whole fetch.
func (s *Store) fetchAll(ctx context.Context) (core.Dashboard, error) {
	var d core.Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.backend.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		d.Transactions = txs
		return nil
	})
	g.Go(func() error {
		products, err := s.backend.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		d.Products = products
		return nil
	})
	g.Go(func() error {
		profile, err := s.backend.GetProfile(gctx)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		d.Profile = profile
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, err
	}
	d.FetchedAt = s.now()
	s.logger.DebugContext(ctx, "Dashboard fetched",
		"transactions", len(d.Transactions),
		"products", len(d.Products))
	return d, nil
}

// afterWrite refreshes the dataset once a write succeeded. A failed refresh
// leaves the cache empty so the next read retries the fetch; the write
// itself is still reported as successful.
func (s *Store) afterWrite(ctx context.Context, op string) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "Refresh after write failed", log.FieldOperation, op, log.FieldError, err)
	}
}

func (s *Store) SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	op := log.OpCreate
	if isUpdate {
		op = log.OpUpdate
	}
	id, err := s.backend.SubmitTransaction(ctx, tx, isUpdate)
	if err != nil {
		s.logger.ErrorContext(ctx, "Transaction write failed", log.FieldOperation, op, log.FieldError, err)
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	s.afterWrite(ctx, op)
	return id, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.DeleteTransaction(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Transaction delete failed", log.FieldTransactionID, id, log.FieldError, err)
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.afterWrite(ctx, log.OpDelete)
	return nil
}

func (s *Store) SubmitProduct(ctx context.Context, p core.Product, isUpdate bool) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, err := s.backend.SubmitProduct(ctx, p, isUpdate)
	if err != nil {
		s.logger.ErrorContext(ctx, "Product write failed", log.FieldProduct, p.Name, log.FieldError, err)
		return 0, fmt.Errorf("submit product: %w", err)
	}
	s.afterWrite(ctx, log.OpUpdate)
	return id, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "Product delete failed", log.FieldProductID, id, log.FieldError, err)
		return fmt.Errorf("delete product: %w", err)
	}
	s.afterWrite(ctx, log.OpDelete)
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, p core.Profile) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.backend.UpdateProfile(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "Profile update failed", log.FieldError, err)
		return fmt.Errorf("update profile: %w", err)
	}
	s.afterWrite(ctx, log.OpUpdate)
	return nil
}
