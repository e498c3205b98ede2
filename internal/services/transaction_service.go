package services

import (
	"context"
	"errors"
	"fmt"

	"baketrack/internal/amqp"
	"baketrack/internal/core"
	"baketrack/internal/log"
	"baketrack/internal/storage"
)

// LocalStore is the SQLite side of transaction writes.
type LocalStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (storage.TransactionRecord, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (storage.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, uid string) (storage.TransactionRecord, error)
}

// TransactionService saves transactions locally and queues them for the
// sync worker. A publish failure never fails the request: the row stays
// pending and the periodic sweep picks it up.
type TransactionService struct {
	store     LocalStore
	publisher amqp.Publisher
	logger    *log.Logger
}

func NewTransactionService(store LocalStore, publisher amqp.Publisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentTransaction),
	}
}

// SaveTransaction creates or updates a transaction and returns its ID.
func (s *TransactionService) SaveTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	var (
		rec storage.TransactionRecord
		err error
	)
	if isUpdate {
		rec, err = s.store.UpdateTransaction(ctx, tx)
	} else {
		rec, err = s.store.CreateTransaction(ctx, tx)
	}
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	t := rec.Transaction
	log.NewStructuredLogger(s.logger).LogTransactionSaved(ctx, t.ID, t.Product, t.Qty, t.Total.String(), isUpdate)
	s.publish(ctx, rec)
	return t.ID, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, uid string) error {
	rec, err := s.store.DeleteTransaction(ctx, uid)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, rec)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, rec storage.TransactionRecord) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping sync message", "id", rec.ID)
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, rec.ID, rec.Version, rec.Deleted); err != nil {
		level := s.logger.ErrorContext
		if errors.Is(err, amqp.ErrCircuitOpen) {
			level = s.logger.WarnContext
		}
		level(ctx, "Failed to publish sync message",
			"id", rec.ID,
			"version", rec.Version,
			log.FieldError, err)
	}
}
