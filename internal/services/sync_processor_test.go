package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultSyncProcessorConfig(t *testing.T) {
	config := DefaultSyncProcessorConfig()

	if config.PollInterval != 30*time.Second {
		t.Errorf("expected PollInterval 30s, got %v", config.PollInterval)
	}
	if config.BatchSize != 10 {
		t.Errorf("expected BatchSize 10, got %d", config.BatchSize)
	}
}

func TestNewSyncProcessor_FillsDefaults(t *testing.T) {
	processor := NewSyncProcessor(nil, nil, SyncProcessorConfig{BatchSize: 20}, nil)

	if processor.config.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want default", processor.config.PollInterval)
	}
	if processor.config.BatchSize != 20 {
		t.Errorf("BatchSize = %d, want 20", processor.config.BatchSize)
	}
}

func TestSyncProcessor_StartTwice(t *testing.T) {
	processor := NewSyncProcessor(newRepo(t), &fakePublisher{}, SyncProcessorConfig{PollInterval: time.Hour}, nil)
	ctx := context.Background()

	if err := processor.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if !processor.IsRunning() {
		t.Fatal("processor should be running")
	}
	if err := processor.Start(ctx); err == nil {
		t.Error("expected error when starting already running processor")
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := processor.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if processor.IsRunning() {
		t.Error("processor should be stopped")
	}
}

func TestSyncProcessor_StopNotRunning(t *testing.T) {
	processor := NewSyncProcessor(nil, nil, DefaultSyncProcessorConfig(), nil)
	if err := processor.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestSyncProcessor_Sweep(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.CreateTransaction(ctx, sale()); err != nil {
			t.Fatal(err)
		}
	}
	pub := &fakePublisher{}
	processor := NewSyncProcessor(repo, pub, SyncProcessorConfig{BatchSize: 2}, nil)

	n, err := processor.Sweep(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Sweep = %d, %v; want 2", n, err)
	}
	if got := pub.sent(); got[0].id != 1 || got[1].id != 2 {
		t.Fatalf("published %v", got)
	}

	pub.err = errors.New("broker down")
	if _, err := processor.Sweep(ctx); err == nil {
		t.Fatal("Sweep should report publish failure")
	}
}

func TestSyncProcessor_SweepWithoutPublisher(t *testing.T) {
	processor := NewSyncProcessor(nil, nil, DefaultSyncProcessorConfig(), nil)
	if n, err := processor.Sweep(context.Background()); n != 0 || err != nil {
		t.Fatalf("Sweep = %d, %v", n, err)
	}
}
