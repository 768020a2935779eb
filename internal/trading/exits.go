package trading

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/observability"
	"solana-pump-sniper/internal/oracle"
)

// DefaultExitInterval is how often the exit engine re-prices positions.
const DefaultExitInterval = 5 * time.Second

// ExitEngine polls open positions and fires full exits when a target
// triggers. Triggers are level-based, not edge-based: a position whose
// sell was rejected stays triggered and is retried on the next tick.
type ExitEngine struct {
	trader   *Trader
	interval time.Duration
}

func NewExitEngine(trader *Trader, interval time.Duration) *ExitEngine {
	if interval <= 0 {
		interval = DefaultExitInterval
	}
	return &ExitEngine{trader: trader, interval: interval}
}

// Run blocks until ctx is cancelled, checking exits every interval.
func (e *ExitEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	log.Printf("[exit] engine started, interval %s", e.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[exit] engine stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			e.CheckOnce(ctx)
		}
	}
}

// CheckOnce re-prices every open position and sells whatever has
// crossed a target. Exposed for tests and manual ticks.
func (e *ExitEngine) CheckOnce(ctx context.Context) {
	for _, pos := range e.trader.ledger.ListOpen() {
		price, err := e.trader.oracle.GetPrice(ctx, pos.Mint)
		if err != nil {
			// A stale price must never trigger an exit. Skip the
			// position this tick and keep the last known price.
			if errors.Is(err, oracle.ErrDataUnavailable) {
				log.Printf("[exit] %s: price unavailable, skipping tick", pos.Mint)
			} else {
				log.Printf("[exit] %s: price fetch failed: %v", pos.Mint, err)
			}
			continue
		}

		updated, err := e.trader.ledger.RefreshPrice(pos.Mint, price)
		if err != nil {
			// Position closed between ListOpen and here.
			continue
		}

		reason := exitReason(updated)
		if reason == "" {
			continue
		}
		observability.RecordExitTrigger(reason)

		if err := e.trader.ExecuteSell(ctx, pos.Mint, reason); err != nil {
			var rej *RejectionError
			if errors.As(err, &rej) {
				// Level-triggered: the condition re-fires next tick.
				observability.RecordSellRejected(string(rej.Reason))
				log.Printf("[exit] %s: sell rejected (%s), will retry", pos.Mint, rej.Reason)
				continue
			}
			log.Printf("[exit] %s: sell failed: %v", pos.Mint, err)
		}
	}
}

// exitReason decides which exit, if any, the position's current price
// triggers. Take-profit wins over any stop when both are crossed. The
// effective stop is the higher of the fixed stop-loss and the trailing
// stop; the reason names whichever level actually fired.
func exitReason(p *domain.Position) string {
	if p.TakeProfitPrice != nil && p.CurrentPrice >= *p.TakeProfitPrice {
		return domain.ExitReasonTakeProfit
	}

	var stop float64
	reason := ""
	if p.StopLossPrice != nil {
		stop = *p.StopLossPrice
		reason = domain.ExitReasonStopLoss
	}
	if p.TrailingStopPrice != nil && *p.TrailingStopPrice > stop {
		stop = *p.TrailingStopPrice
		reason = domain.ExitReasonTrailingStop
	}
	if reason != "" && p.CurrentPrice <= stop {
		return reason
	}
	return ""
}
