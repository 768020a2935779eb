package feed

import (
	"context"
	"log"
	"time"

	"solana-pump-sniper/internal/observability"
	"solana-pump-sniper/internal/solana"
)

const (
	maxTxRetries     = 3
	baseTxRetryDelay = 500 * time.Millisecond
)

// Monitor subscribes to pump.fun program logs and feeds parsed launches
// into the dispatcher.
type Monitor struct {
	ws         solana.WSClient
	rpc        solana.RPCClient
	parser     *CreateParser
	dispatcher *Dispatcher
}

// NewMonitor creates a launch monitor.
func NewMonitor(ws solana.WSClient, rpc solana.RPCClient, dispatcher *Dispatcher) *Monitor {
	return &Monitor{
		ws:         ws,
		rpc:        rpc,
		parser:     NewCreateParser(),
		dispatcher: dispatcher,
	}
}

// Run subscribes and processes notifications until the context is
// cancelled or the subscription channel closes.
func (m *Monitor) Run(ctx context.Context) error {
	logsCh, err := m.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions: []string{solana.PumpFunProgram},
	})
	if err != nil {
		return err
	}
	log.Printf("[feed] subscribed to program: %s", solana.PumpFunProgram)

	m.dispatcher.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-logsCh:
			if !ok {
				log.Println("[feed] log channel closed")
				return nil
			}
			m.processNotification(ctx, notif)
		}
	}
}

// processNotification parses a single log notification into a launch.
func (m *Monitor) processNotification(ctx context.Context, notif solana.LogNotification) {
	// Skip failed transactions
	if notif.Err != nil {
		return
	}

	observedAt := time.Now().UnixMilli()

	creation := m.parser.ParseCreation(notif.Logs, notif.Signature, notif.Slot, observedAt)
	if creation == nil {
		return
	}

	// Program data carried no creator in rare cases; fall back to the
	// fee payer from the full transaction.
	if creation.Event.Creator == "" {
		if tx, err := m.retryGetTransaction(ctx, notif.Signature); err == nil && tx != nil {
			if tx.Message != nil && len(tx.Message.AccountKeys) > 0 {
				creation.Event.Creator = tx.Message.AccountKeys[0]
			}
		}
	}

	observability.RecordLaunchSeen()
	log.Printf("[feed] launch: mint=%s symbol=%q tx=%s slot=%d",
		creation.Event.Mint, creation.Symbol, creation.Event.TxSignature, creation.Event.Slot)

	m.dispatcher.Dispatch(*creation)
}

// retryGetTransaction fetches a transaction with exponential backoff retry.
func (m *Monitor) retryGetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	var lastErr error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		tx, err := m.rpc.GetTransaction(ctx, signature)
		if err == nil {
			return tx, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Exponential backoff: 500ms, 1s, 2s
		delay := baseTxRetryDelay * time.Duration(1<<attempt)
		log.Printf("[feed] retry %d/%d for GetTransaction %s after %v: %v", attempt+1, maxTxRetries, signature, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
