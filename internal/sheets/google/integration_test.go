//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"baketrack/internal/core"
)

// Integration tests require a real spreadsheet and service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_TransactionRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" && os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	id, err := client.SubmitTransaction(ctx, core.Transaction{
		Date:    time.Now().Format(core.DateLayout),
		Product: "Integration Test Cupcake",
		Qty:     1,
		Price:   decimal.NewFromInt(1),
		AddedBy: "integration-test",
	}, false)
	if err != nil {
		t.Fatalf("SubmitTransaction: %v", err)
	}
	t.Logf("created transaction %s", id)

	txs, err := client.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	found := false
	for _, tx := range txs {
		if tx.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("transaction %s not listed", id)
	}

	if err := client.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
}
