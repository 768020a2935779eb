package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"solana-pump-sniper/internal/domain"
)

func creationWithMint(mint string) Creation {
	return Creation{Event: domain.TokenEvent{Mint: mint}}
}

func TestDispatcher_DropsOldestWhenFull(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	d := NewDispatcher(func(_ context.Context, c Creation) {
		mu.Lock()
		handled = append(handled, c.Event.Mint)
		mu.Unlock()
	}, 2, 1)

	// Workers not started yet: queue fills, third dispatch evicts first
	d.Dispatch(creationWithMint("mint-1"))
	d.Dispatch(creationWithMint("mint-2"))
	d.Dispatch(creationWithMint("mint-3"))

	if depth := d.QueueDepth(); depth != 2 {
		t.Fatalf("expected queue depth 2, got %d", depth)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	})

	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	if handled[0] != "mint-2" || handled[1] != "mint-3" {
		t.Errorf("expected [mint-2 mint-3], got %v", handled)
	}
}

func TestDispatcher_DeliversInArrivalOrder(t *testing.T) {
	var mu sync.Mutex
	var handled []string

	// Single worker preserves arrival order
	d := NewDispatcher(func(_ context.Context, c Creation) {
		mu.Lock()
		handled = append(handled, c.Event.Mint)
		mu.Unlock()
	}, 16, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	mints := []string{"a", "b", "c", "d", "e"}
	for _, m := range mints {
		d.Dispatch(creationWithMint(m))
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == len(mints)
	})

	d.Stop()

	mu.Lock()
	defer mu.Unlock()
	for i, m := range mints {
		if handled[i] != m {
			t.Fatalf("expected %v in order, got %v", mints, handled)
		}
	}
}

func TestDispatcher_StopPreventsDispatch(t *testing.T) {
	d := NewDispatcher(func(_ context.Context, _ Creation) {}, 4, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	d.Stop()

	// Must not panic or block
	d.Dispatch(creationWithMint("late"))

	if depth := d.QueueDepth(); depth != 0 {
		t.Errorf("expected empty queue after stop, got depth %d", depth)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
