package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"baketrack/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// TransactionRecord is a stored transaction with its sync bookkeeping.
type TransactionRecord struct {
	ID          int64
	Transaction core.Transaction
	Version     int64
	SyncStatus  string
	Deleted     bool
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer avoids SQLITE_BUSY between the web process goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SetClock overrides the timestamp source.
func (r *SQLiteRepository) SetClock(now func() time.Time) { r.now = now }

func (r *SQLiteRepository) stamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// CreateTransaction stores a new pending transaction. A caller supplied ID is
// kept; otherwise a UUID is assigned.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (TransactionRecord, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return TransactionRecord{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	createdAt := tx.Timestamp
	if createdAt == "" {
		createdAt = r.stamp()
	}

	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		UID:       tx.ID,
		Date:      tx.Date,
		Product:   tx.Product,
		Qty:       int64(tx.Qty),
		Price:     tx.Price.String(),
		Total:     tx.Total.String(),
		AddedBy:   tx.AddedBy,
		CreatedAt: createdAt,
	})
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"uid", row.UID,
		"product", row.Product,
		"qty", row.Qty,
		"total", row.Total)

	return toRecord(row), nil
}

// UpdateTransaction replaces the live transaction with tx.ID and marks it
// pending again.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (TransactionRecord, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return TransactionRecord{}, err
	}
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		UID:       tx.ID,
		Date:      tx.Date,
		Product:   tx.Product,
		Qty:       int64(tx.Qty),
		Price:     tx.Price.String(),
		Total:     tx.Total.String(),
		AddedBy:   tx.AddedBy,
		UpdatedAt: r.stamp(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return TransactionRecord{}, fmt.Errorf("transaction %q: %w", tx.ID, core.ErrNotFound)
	}
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("update transaction: %w", err)
	}
	return toRecord(row), nil
}

// DeleteTransaction soft deletes the transaction. The row is purged once
// the deletion has been synced.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, uid string) (TransactionRecord, error) {
	row, err := r.queries.SoftDeleteTransaction(ctx, uid, r.stamp())
	if errors.Is(err, sql.ErrNoRows) {
		return TransactionRecord{}, fmt.Errorf("transaction %q: %w", uid, core.ErrNotFound)
	}
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("delete transaction: %w", err)
	}
	return toRecord(row), nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (TransactionRecord, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return TransactionRecord{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}
	return toRecord(row), nil
}

// ListTransactions returns live transactions in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toRecord(row).Transaction
	}
	return out, nil
}

// PendingSync is the minimal data needed for a sync queue message.
type PendingSync struct {
	ID      int64
	Version int64
	Deleted bool
}

// GetPendingSync returns rows still waiting to reach the remote sheet,
// including rows whose last attempt failed.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	rows, err := r.queries.ListPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync: %w", err)
	}
	out := make([]PendingSync, len(rows))
	for i, row := range rows {
		out[i] = PendingSync{ID: row.ID, Version: row.Version, Deleted: row.DeletedAt.Valid}
	}
	return out, nil
}

// MarkSynced records a successful push of the given version. Deleted rows
// are purged. It reports false when the row moved on to a newer version.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, version int64) (bool, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbtx.Rollback()
	q := r.queries.WithTx(dbtx)

	n, err := q.PurgeTransaction(ctx, id, version)
	if err != nil {
		return false, fmt.Errorf("purge transaction: %w", err)
	}
	if n == 0 {
		if n, err = q.MarkSynced(ctx, id, version); err != nil {
			return false, fmt.Errorf("mark transaction synced: %w", err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Transaction changed since sync started", "id", id, "version", version)
		return false, nil
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id, "version", version)
	return true, nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

// SyncCounts returns the number of rows per sync state.
func (r *SQLiteRepository) SyncCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := r.queries.CountBySyncStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sync status: %w", err)
	}
	return counts, nil
}

func (r *SQLiteRepository) ListProducts(ctx context.Context) ([]core.Product, error) {
	rows, err := r.queries.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]core.Product, len(rows))
	for i, row := range rows {
		out[i] = toProduct(row)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveProduct(ctx context.Context, p core.Product, isUpdate bool) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return 0, err
	}
	row := fromProduct(p)
	if !isUpdate {
		id, err := r.queries.CreateProduct(ctx, row)
		if err != nil {
			return 0, fmt.Errorf("create product: %w", err)
		}
		return id, nil
	}
	n, err := r.queries.UpdateProduct(ctx, row)
	if err != nil {
		return 0, fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("product %d: %w", p.ID, core.ErrNotFound)
	}
	return p.ID, nil
}

func (r *SQLiteRepository) DeleteProduct(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// GetProfile returns the stored profile, or the guest profile when none was
// saved.
func (r *SQLiteRepository) GetProfile(ctx context.Context) (core.Profile, error) {
	row, err := r.queries.GetProfile(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GuestProfile, nil
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return core.Profile{Name: row.Name, Email: row.Email, PhotoURL: row.PhotoURL}, nil
}

func (r *SQLiteRepository) UpdateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.queries.UpsertProfile(ctx, ProfileRow{Name: p.Name, Email: p.Email, PhotoURL: p.PhotoURL}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func toRecord(row TransactionRow) TransactionRecord {
	return TransactionRecord{
		ID: row.ID,
		Transaction: core.Transaction{
			ID:        row.UID,
			Timestamp: row.CreatedAt,
			Date:      row.Date,
			Product:   row.Product,
			Qty:       int(row.Qty),
			Price:     core.ParseCellAmount(row.Price),
			Total:     core.ParseCellAmount(row.Total),
			AddedBy:   row.AddedBy,
		},
		Version:    row.Version,
		SyncStatus: row.SyncStatus,
		Deleted:    row.DeletedAt.Valid,
	}
}

func toProduct(row ProductRow) core.Product {
	p := core.Product{
		ID:    row.ID,
		Name:  row.Name,
		Price: core.ParseCellAmount(row.Price),
		Stock: int(row.Stock),
		Image: row.Image,
		Sold:  int(row.Sold),
	}
	if row.CostPrice.Valid {
		if d, err := decimal.NewFromString(row.CostPrice.String); err == nil {
			p.CostPrice = core.Some(d)
		}
	}
	return p
}

func fromProduct(p core.Product) ProductRow {
	row := ProductRow{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.String(),
		Stock: int64(p.Stock),
		Image: p.Image,
		Sold:  int64(p.Sold),
	}
	if cost, ok := p.CostPrice.Get(); ok {
		row.CostPrice = sql.NullString{String: cost.String(), Valid: true}
	}
	return row
}
