package worker

import (
	"context"
	"errors"
	"fmt"

	"baketrack/internal/amqp"
	"baketrack/internal/core"
	"baketrack/internal/log"
	ports "baketrack/internal/sheets"
	"baketrack/internal/storage"
)

// SyncStore is the local bookkeeping the worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id int64) (storage.TransactionRecord, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	MarkSynced(ctx context.Context, id, version int64) (bool, error)
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker pushes local transaction rows to Google Sheets.
type SyncWorker struct {
	storage   SyncStore
	remote    ports.TransactionWriter
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(store SyncStore, remote ports.TransactionWriter, batchSize int, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		storage:   store,
		remote:    remote,
		batchSize: max(batchSize, 1),
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage processes one queue message. A returned error nacks the
// delivery for redelivery.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.DebugContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version,
		"deleted", msg.Deleted)

	rec, err := w.storage.GetTransaction(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Purged after an earlier delete was synced.
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if rec.Version > msg.Version {
		// A newer message for the same row is queued.
		w.logger.DebugContext(ctx, "Skipping stale sync message", "id", msg.ID, "version", msg.Version, "current", rec.Version)
		return nil
	}
	if rec.SyncStatus == storage.SyncSynced {
		return nil
	}
	return w.syncRecord(ctx, rec)
}

// syncRecord pushes rec and records the outcome locally.
func (w *SyncWorker) syncRecord(ctx context.Context, rec storage.TransactionRecord) error {
	var err error
	if rec.Deleted {
		err = w.deleteRemote(ctx, rec.Transaction.ID)
	} else {
		err = w.upsertRemote(ctx, rec.Transaction)
	}
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, rec.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("sync transaction %d: %w", rec.ID, err)
	}

	if _, err := w.storage.MarkSynced(ctx, rec.ID, rec.Version); err != nil {
		// The remote write happened; a redelivery is an idempotent upsert.
		w.logger.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, log.FieldError, err)
	}
	w.logger.InfoContext(ctx, "Synced transaction",
		log.FieldTransactionID, rec.Transaction.ID,
		"id", rec.ID,
		"version", rec.Version,
		"deleted", rec.Deleted)
	return nil
}

// upsertRemote updates the sheet row with the same ID, appending it when
// the sheet does not have it yet.
func (w *SyncWorker) upsertRemote(ctx context.Context, tx core.Transaction) error {
	_, err := w.remote.SubmitTransaction(ctx, tx, true)
	if errors.Is(err, core.ErrNotFound) {
		_, err = w.remote.SubmitTransaction(ctx, tx, false)
	}
	return err
}

func (w *SyncWorker) deleteRemote(ctx context.Context, uid string) error {
	err := w.remote.DeleteTransaction(ctx, uid)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	return err
}

// ProcessPending pushes up to one batch of pending rows directly, without
// going through the queue. It is used at startup to recover from missed
// messages or worker downtime.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced, failed int, err error) {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending transactions: %w", err)
	}
	for _, p := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		rec, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, log.FieldError, err)
			failed++
			continue
		}
		if err := w.syncRecord(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID, log.FieldError, err)
			failed++
			continue
		}
		synced++
	}
	if len(pending) > 0 {
		w.logger.InfoContext(ctx, "Pending sync completed",
			"total", len(pending),
			"synced", synced,
			"errors", failed)
	}
	return synced, failed, nil
}
