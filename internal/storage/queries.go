package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const transactionColumns = `id, uid, date, product, qty, price, total, added_by, created_at, updated_at, deleted_at, sync_status, version`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.UID, &t.Date, &t.Product, &t.Qty, &t.Price, &t.Total,
		&t.AddedBy, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt, &t.SyncStatus, &t.Version)
	return t, err
}

type CreateTransactionParams struct {
	UID       string
	Date      string
	Product   string
	Qty       int64
	Price     string
	Total     string
	AddedBy   string
	CreatedAt string
}

const createTransaction = `
INSERT INTO transactions (uid, date, product, qty, price, total, added_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UID, arg.Date, arg.Product, arg.Qty, arg.Price, arg.Total, arg.AddedBy, arg.CreatedAt, arg.CreatedAt)
	return scanTransaction(row)
}

type UpdateTransactionParams struct {
	UID       string
	Date      string
	Product   string
	Qty       int64
	Price     string
	Total     string
	AddedBy   string
	UpdatedAt string
}

const updateTransaction = `
UPDATE transactions
SET date = ?, product = ?, qty = ?, price = ?, total = ?, added_by = ?, updated_at = ?,
    sync_status = 'pending', version = version + 1
WHERE uid = ? AND deleted_at IS NULL
RETURNING ` + transactionColumns

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Date, arg.Product, arg.Qty, arg.Price, arg.Total, arg.AddedBy, arg.UpdatedAt, arg.UID)
	return scanTransaction(row)
}

const softDeleteTransaction = `
UPDATE transactions
SET deleted_at = ?, updated_at = ?, sync_status = 'pending', version = version + 1
WHERE uid = ? AND deleted_at IS NULL
RETURNING ` + transactionColumns

func (q *Queries) SoftDeleteTransaction(ctx context.Context, uid, at string) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, softDeleteTransaction, at, at, uid))
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listTransactions = `SELECT ` + transactionColumns + ` FROM transactions WHERE deleted_at IS NULL ORDER BY id`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	return q.queryTransactions(ctx, listTransactions)
}

const listPendingSync = `
SELECT ` + transactionColumns + ` FROM transactions
WHERE sync_status IN ('pending', 'error')
ORDER BY id
LIMIT ?`

func (q *Queries) ListPendingSync(ctx context.Context, limit int64) ([]TransactionRow, error) {
	return q.queryTransactions(ctx, listPendingSync, limit)
}

func (q *Queries) queryTransactions(ctx context.Context, query string, args ...any) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// MarkSynced only matches the version that was pushed, so a newer local
// edit stays pending.
const markSynced = `UPDATE transactions SET sync_status = 'synced' WHERE id = ? AND version = ?`

func (q *Queries) MarkSynced(ctx context.Context, id, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSynced, id, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markSyncError = `UPDATE transactions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncError, id)
	return err
}

const purgeTransaction = `DELETE FROM transactions WHERE id = ? AND version = ? AND deleted_at IS NOT NULL`

func (q *Queries) PurgeTransaction(ctx context.Context, id, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, purgeTransaction, id, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countBySyncStatus = `SELECT sync_status, COUNT(*) FROM transactions GROUP BY sync_status`

func (q *Queries) CountBySyncStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countBySyncStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

const productColumns = `id, name, price, cost_price, stock, image, sold`

func scanProduct(row interface{ Scan(...any) error }) (ProductRow, error) {
	var p ProductRow
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.CostPrice, &p.Stock, &p.Image, &p.Sold)
	return p, err
}

const listProducts = `SELECT ` + productColumns + ` FROM products ORDER BY id`

func (q *Queries) ListProducts(ctx context.Context) ([]ProductRow, error) {
	rows, err := q.db.QueryContext(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductRow
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createProduct = `
INSERT INTO products (name, price, cost_price, stock, image, sold)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`

func (q *Queries) CreateProduct(ctx context.Context, p ProductRow) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, createProduct, p.Name, p.Price, p.CostPrice, p.Stock, p.Image, p.Sold).Scan(&id)
	return id, err
}

const updateProduct = `
UPDATE products SET name = ?, price = ?, cost_price = ?, stock = ?, image = ?, sold = ?
WHERE id = ?`

func (q *Queries) UpdateProduct(ctx context.Context, p ProductRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProduct, p.Name, p.Price, p.CostPrice, p.Stock, p.Image, p.Sold, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProduct = `DELETE FROM products WHERE id = ?`

func (q *Queries) DeleteProduct(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProduct, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getProfile = `SELECT name, email, photo_url FROM profile WHERE id = 1`

func (q *Queries) GetProfile(ctx context.Context) (ProfileRow, error) {
	var p ProfileRow
	err := q.db.QueryRowContext(ctx, getProfile).Scan(&p.Name, &p.Email, &p.PhotoURL)
	return p, err
}

const upsertProfile = `
INSERT INTO profile (id, name, email, photo_url) VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email, photo_url = excluded.photo_url`

func (q *Queries) UpsertProfile(ctx context.Context, p ProfileRow) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, p.Name, p.Email, p.PhotoURL)
	return err
}
