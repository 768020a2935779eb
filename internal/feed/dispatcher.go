package feed

import (
	"context"
	"log"
	"sync"

	"solana-pump-sniper/internal/observability"
)

// DefaultQueueSize bounds the dispatch queue.
const DefaultQueueSize = 256

// DefaultWorkers is the default handler worker count.
const DefaultWorkers = 4

// Handler processes one token launch. Handlers run on worker goroutines
// and must not block ingestion.
type Handler func(ctx context.Context, c Creation)

// Dispatcher fans launches out to a fixed worker pool through a bounded
// queue. When the queue is full the oldest queued launch is dropped:
// fresh launches are worth more than stale ones.
type Dispatcher struct {
	handler   Handler
	queue     chan Creation
	workers   int
	queueMu   sync.Mutex // serializes the drop-oldest exchange
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher with the given handler.
func NewDispatcher(handler Handler, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{
		handler: handler,
		queue:   make(chan Creation, queueSize),
		workers: workers,
		done:    make(chan struct{}),
	}
}

// Start launches the worker pool. Workers exit when the context is
// cancelled or Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.worker(ctx)
		}
	})
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case c, ok := <-d.queue:
			if !ok {
				return
			}
			d.handler(ctx, c)
		}
	}
}

// Dispatch enqueues a launch. If the queue is full, the oldest queued
// launch is evicted to make room and counted as dropped.
func (d *Dispatcher) Dispatch(c Creation) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()

	select {
	case <-d.done:
		return
	default:
	}

	for {
		select {
		case d.queue <- c:
			return
		default:
		}

		// Queue full: evict the oldest entry. A worker may race us for
		// it, in which case the next send attempt succeeds.
		select {
		case dropped := <-d.queue:
			observability.RecordLaunchDropped()
			log.Printf("[feed] queue full, dropped launch mint=%s", dropped.Event.Mint)
		default:
		}
	}
}

// Stop stops accepting launches and waits for workers to drain.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

// QueueDepth reports the number of launches waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}
