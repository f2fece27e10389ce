package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/metgate/pkg/utils/poller"
)

func TestPollerInvokesImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	called := make(chan struct{}, 1)
	p := poller.New(time.Hour, func(ctx context.Context) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-called:
	case <-time.After(1 * time.Second):
		t.Fatal("function was not invoked immediately")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}

func TestPollerKeepsRunningOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	p := poller.New(10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("refresh failed")
	})

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 invocations, got %d", calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("poller did not stop after cancellation")
	}

	gt.Number(t, calls.Load()).GreaterOrEqual(3)
}
