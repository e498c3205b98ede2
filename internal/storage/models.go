package storage

import "database/sql"

// Sync states of a transaction row.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// Row types mirror the tables one to one; conversion to core types happens
// in the repository.

type TransactionRow struct {
	ID         int64
	UID        string
	Date       string
	Product    string
	Qty        int64
	Price      string
	Total      string
	AddedBy    string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  sql.NullString
	SyncStatus string
	Version    int64
}

type ProductRow struct {
	ID        int64
	Name      string
	Price     string
	CostPrice sql.NullString
	Stock     int64
	Image     string
	Sold      int64
}

type ProfileRow struct {
	Name     string
	Email    string
	PhotoURL string
}
