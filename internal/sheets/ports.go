package sheets

import (
	"context"

	"baketrack/internal/core"
)

// Ports for outbound adapters. A backend reports failure through the
// returned error; callers surface it without retrying.
type (
	TransactionWriter interface {
		// SubmitTransaction creates the transaction, or replaces the one with
		// the same ID when isUpdate is set. It returns the stored ID.
		SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (id string, err error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	TransactionLister interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	ProductStore interface {
		ListProducts(ctx context.Context) ([]core.Product, error)
		SubmitProduct(ctx context.Context, p core.Product, isUpdate bool) (id int64, err error)
		DeleteProduct(ctx context.Context, id int64) error
	}

	ProfileStore interface {
		GetProfile(ctx context.Context) (core.Profile, error)
		UpdateProfile(ctx context.Context, p core.Profile) error
	}

	// DataService is the full remote boundary of the dashboard.
	DataService interface {
		TransactionWriter
		TransactionLister
		ProductStore
		ProfileStore
	}
)
