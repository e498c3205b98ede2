package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestExponentialBackoff(t *testing.T) {
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second, maxBackoff}
	for attempt, d := range want {
		if got := exponentialBackoff(attempt); got != d {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, d)
		}
	}
	if got := exponentialBackoff(40); got != maxBackoff {
		t.Errorf("exponentialBackoff(40) = %v, want cap %v", got, maxBackoff)
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{amqp091.ErrClosed, true},
		{fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{errors.New("dial tcp: Connection refused"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("use of closed network connection"), true},
		{errors.New("PRECONDITION_FAILED - inequivalent arg 'durable'"), false},
	}
	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCircuitBreaker(t *testing.T) {
	tests := []struct {
		name      string
		state     int32
		failures  int64
		since     time.Duration
		act       func(c *Client)
		wantOpen  bool
		wantState int32
	}{
		{name: "closed by default", act: func(*Client) {}, wantState: StateClosed},
		{
			name: "opens at threshold",
			act: func(c *Client) {
				for i := 0; i < maxFailures; i++ {
					c.recordFailure()
				}
			},
			wantOpen: true, wantState: StateOpen,
		},
		{
			name:     "stays closed below threshold",
			failures: maxFailures - 2,
			act:      func(c *Client) { c.recordFailure() },
			wantState: StateClosed,
		},
		{
			name:  "half-open after timeout",
			state: StateOpen, since: openTimeout + time.Second,
			act:       func(*Client) {},
			wantState: StateHalfOpen,
		},
		{
			name:  "open within timeout",
			state: StateOpen,
			act:   func(*Client) {},
			wantOpen: true, wantState: StateOpen,
		},
		{
			name:  "half-open failure reopens",
			state: StateHalfOpen,
			act:   func(c *Client) { c.recordFailure() },
			wantOpen: true, wantState: StateOpen,
		},
		{
			name:  "success closes",
			state: StateOpen, failures: maxFailures,
			act:       func(c *Client) { c.recordSuccess() },
			wantState: StateClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{state: tt.state, failureCount: tt.failures, lastFailure: time.Now().Add(-tt.since)}
			tt.act(c)
			if got := c.isCircuitOpen(); got != tt.wantOpen {
				t.Errorf("isCircuitOpen() = %v, want %v", got, tt.wantOpen)
			}
			if got := atomic.LoadInt32(&c.state); got != tt.wantState {
				t.Errorf("state = %d, want %d", got, tt.wantState)
			}
		})
	}
}

func TestPublishTransactionSync_Guards(t *testing.T) {
	open := &Client{state: StateOpen, lastFailure: time.Now()}
	if err := open.PublishTransactionSync(context.Background(), 7, 1, false); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open circuit: err = %v, want ErrCircuitOpen", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&Client{}).PublishTransactionSync(ctx, 7, 1, false); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx: err = %v, want context.Canceled", err)
	}
}

func TestTransactionSyncMessage(t *testing.T) {
	msg := NewTransactionSyncMessage(42, 3, true)
	if msg.ID != 42 || msg.Version != 3 || !msg.Deleted || time.Since(msg.Timestamp) > time.Second {
		t.Fatalf("NewTransactionSyncMessage = %+v", msg)
	}

	live := &TransactionSyncMessage{ID: 42, Version: 3, Timestamp: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)}
	raw, err := live.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "deleted") {
		t.Errorf("deleted should be omitted for live rows: %s", raw)
	}
	back, err := TransactionSyncMessageFromJSON(raw)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID != 42 || back.Version != 3 || back.Deleted || !back.Timestamp.Equal(live.Timestamp) {
		t.Errorf("round trip = %+v", back)
	}

	if _, err := TransactionSyncMessageFromJSON([]byte(`{"id":"x"}`)); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	c := &Client{closed: make(chan struct{})}
	for i := 0; i < 2; i++ {
		if err := c.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
}
