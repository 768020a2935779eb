package stub

import (
	"context"
	"sync"

	"solana-pump-sniper/internal/solana"
)

// WSClient implements solana.WSClient for testing. Notifications pushed
// via Publish are delivered to the subscriber channel.
type WSClient struct {
	mu     sync.Mutex
	ch     chan solana.LogNotification
	filter solana.LogsFilter
	closed bool
}

// NewWSClient creates a new stub WebSocket client.
func NewWSClient() *WSClient {
	return &WSClient{
		ch: make(chan solana.LogNotification, 256),
	}
}

var _ solana.WSClient = (*WSClient)(nil)

// SubscribeLogs returns the notification channel and records the filter.
func (c *WSClient) SubscribeLogs(_ context.Context, filter solana.LogsFilter) (<-chan solana.LogNotification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = filter
	return c.ch, nil
}

// Publish delivers a notification to the subscriber.
func (c *WSClient) Publish(n solana.LogNotification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.ch <- n
}

// Filter returns the filter passed to SubscribeLogs.
func (c *WSClient) Filter() solana.LogsFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Close closes the notification channel.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.ch)
	return nil
}
