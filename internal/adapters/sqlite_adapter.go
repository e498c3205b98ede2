package adapters

import (
	"context"

	"baketrack/internal/core"
	ports "baketrack/internal/sheets"
	"baketrack/internal/services"
	"baketrack/internal/storage"
)

var _ ports.DataService = (*SQLiteAdapter)(nil)

// SQLiteAdapter serves the DataService boundary from SQLite. Transaction
// writes go through TransactionService so they are queued for the sync
// worker; the catalog and profile live only in SQLite.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.TransactionService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.TransactionService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	return a.service.SaveTransaction(ctx, tx, isUpdate)
}

func (a *SQLiteAdapter) DeleteTransaction(ctx context.Context, id string) error {
	return a.service.DeleteTransaction(ctx, id)
}

func (a *SQLiteAdapter) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx)
}

func (a *SQLiteAdapter) ListProducts(ctx context.Context) ([]core.Product, error) {
	return a.storage.ListProducts(ctx)
}

func (a *SQLiteAdapter) SubmitProduct(ctx context.Context, p core.Product, isUpdate bool) (int64, error) {
	return a.storage.SaveProduct(ctx, p, isUpdate)
}

func (a *SQLiteAdapter) DeleteProduct(ctx context.Context, id int64) error {
	return a.storage.DeleteProduct(ctx, id)
}

func (a *SQLiteAdapter) GetProfile(ctx context.Context) (core.Profile, error) {
	return a.storage.GetProfile(ctx)
}

func (a *SQLiteAdapter) UpdateProfile(ctx context.Context, p core.Profile) error {
	return a.storage.UpdateProfile(ctx, p)
}
