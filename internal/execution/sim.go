package execution

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimGateway synthesizes successful receipts without touching the chain.
type SimGateway struct {
	mu      sync.Mutex
	balance float64
	latency time.Duration

	// FailNextBuy / FailNextSell inject a one-shot failure, for tests.
	FailNextBuy  bool
	FailNextSell bool

	buys  int
	sells int
}

// NewSimGateway creates a simulated gateway with a starting balance.
func NewSimGateway(balanceSOL float64) *SimGateway {
	return &SimGateway{balance: balanceSOL}
}

var _ Gateway = (*SimGateway)(nil)

// WithLatency makes every submission sleep, approximating network delay.
func (g *SimGateway) WithLatency(d time.Duration) *SimGateway {
	g.latency = d
	return g
}

// SubmitBuy synthesizes a buy receipt and debits the simulated balance.
func (g *SimGateway) SubmitBuy(ctx context.Context, mint string, solAmount, maxSlippagePct float64) (*Receipt, error) {
	if err := g.sleep(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailNextBuy {
		g.FailNextBuy = false
		return nil, fmt.Errorf("%w: injected buy failure", ErrExecution)
	}

	if g.balance < solAmount {
		return nil, fmt.Errorf("%w: insufficient simulated balance %.4f < %.4f", ErrExecution, g.balance, solAmount)
	}

	g.balance -= solAmount
	g.buys++

	receipt := g.receipt()
	log.Printf("[sim] BUY mint=%s amount=%.4f SOL sig=%s", mint, solAmount, receipt.Signature)
	return receipt, nil
}

// SubmitSell synthesizes a sell receipt and credits minSolOut.
func (g *SimGateway) SubmitSell(ctx context.Context, mint string, tokenAmount uint64, minSolOut float64) (*Receipt, error) {
	if err := g.sleep(ctx); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.FailNextSell {
		g.FailNextSell = false
		return nil, fmt.Errorf("%w: injected sell failure", ErrExecution)
	}

	g.balance += minSolOut
	g.sells++

	receipt := g.receipt()
	log.Printf("[sim] SELL mint=%s amount=%d sig=%s", mint, tokenAmount, receipt.Signature)
	return receipt, nil
}

// GetBalance returns the simulated balance.
func (g *SimGateway) GetBalance(_ context.Context) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balance, nil
}

// Trades reports the number of simulated buys and sells.
func (g *SimGateway) Trades() (buys, sells int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buys, g.sells
}

func (g *SimGateway) receipt() *Receipt {
	return &Receipt{
		Signature:   "sim-" + uuid.NewString(),
		SubmittedAt: time.Now().UnixMilli(),
		Simulated:   true,
	}
}

func (g *SimGateway) sleep(ctx context.Context) error {
	if g.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(g.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
