package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"baketrack/internal/amqp"
	"baketrack/internal/log"
	"baketrack/internal/storage"
)

// PendingLister lists rows that have not reached the remote sheet.
type PendingLister interface {
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often pending rows are re-published (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of rows per sweep (default: 10)
	BatchSize int
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// SyncProcessor periodically re-publishes pending rows, covering messages
// lost while the broker or the worker was down.
type SyncProcessor struct {
	storage   PendingLister
	publisher amqp.Publisher
	config    SyncProcessorConfig
	logger    *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(storage PendingLister, publisher amqp.Publisher, config SyncProcessorConfig, logger *log.Logger) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncProcessor{
		storage:   storage,
		publisher: publisher,
		config:    config,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.Sweep(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep re-publishes one batch of pending rows and returns how many were
// published.
func (p *SyncProcessor) Sweep(ctx context.Context) (int, error) {
	if p.publisher == nil {
		return 0, nil
	}
	items, err := p.storage.GetPendingSync(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to list pending rows", log.FieldError, err)
		return 0, fmt.Errorf("list pending: %w", err)
	}
	published := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := p.publisher.PublishTransactionSync(ctx, item.ID, item.Version, item.Deleted); err != nil {
			p.logger.WarnContext(ctx, "Re-publish failed", "id", item.ID, log.FieldError, err)
			// The broker is likely down; the next tick retries the batch.
			return published, err
		}
		published++
	}
	if published > 0 {
		p.logger.InfoContext(ctx, "Re-published pending rows", log.FieldCount, published)
	}
	return published, nil
}
