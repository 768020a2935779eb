package trading

import (
	"context"
	"fmt"
	"testing"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/oracle"
)

func f64(v float64) *float64 { return &v }

func TestExitReason(t *testing.T) {
	tests := []struct {
		name string
		pos  domain.Position
		want string
	}{
		{
			name: "no targets",
			pos:  domain.Position{CurrentPrice: 1.0},
			want: "",
		},
		{
			name: "take profit crossed",
			pos:  domain.Position{CurrentPrice: 2.0, TakeProfitPrice: f64(2.0), StopLossPrice: f64(0.7)},
			want: domain.ExitReasonTakeProfit,
		},
		{
			name: "stop loss crossed",
			pos:  domain.Position{CurrentPrice: 0.7, TakeProfitPrice: f64(2.0), StopLossPrice: f64(0.7)},
			want: domain.ExitReasonStopLoss,
		},
		{
			name: "between targets",
			pos:  domain.Position{CurrentPrice: 1.0, TakeProfitPrice: f64(2.0), StopLossPrice: f64(0.7)},
			want: "",
		},
		{
			// Ratcheted trailing stop sits above the fixed stop and
			// above the take profit; TP still wins when both trigger.
			name: "take profit wins over trailing",
			pos:  domain.Position{CurrentPrice: 3.5, TakeProfitPrice: f64(3.0), StopLossPrice: f64(0.7), TrailingStopPrice: f64(4.5)},
			want: domain.ExitReasonTakeProfit,
		},
		{
			// Effective stop is the higher of fixed and trailing; the
			// reason names the level that actually fired.
			name: "trailing above fixed stop",
			pos:  domain.Position{CurrentPrice: 1.7, StopLossPrice: f64(0.7), TrailingStopPrice: f64(1.8)},
			want: domain.ExitReasonTrailingStop,
		},
		{
			name: "fixed stop above trailing",
			pos:  domain.Position{CurrentPrice: 0.9, StopLossPrice: f64(1.0), TrailingStopPrice: f64(0.5)},
			want: domain.ExitReasonStopLoss,
		},
		{
			name: "trailing only",
			pos:  domain.Position{CurrentPrice: 1.0, TrailingStopPrice: f64(1.2)},
			want: domain.ExitReasonTrailingStop,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitReason(&tt.pos); got != tt.want {
				t.Errorf("exitReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitEngine_TakeProfitSellsPosition(t *testing.T) {
	h := newTestHarness(defaultTestConfig())
	ctx := context.Background()
	engine := NewExitEngine(h.trader, 0)

	h.trader.HandleLaunch(ctx, testLaunch("mint-a"))

	// Below the 2e-6 target: nothing happens.
	h.oracle.setPrice(1.5e-6, nil)
	engine.CheckOnce(ctx)
	if p, _ := h.trader.Ledger().Get("mint-a"); p.Status != domain.PositionStatusOpen {
		t.Fatalf("status below target = %s, want OPEN", p.Status)
	}

	h.oracle.setPrice(2.5e-6, nil)
	engine.CheckOnce(ctx)

	p, _ := h.trader.Ledger().Get("mint-a")
	if p.Status != domain.PositionStatusClosed {
		t.Fatalf("status after take profit = %s, want CLOSED", p.Status)
	}
	recs, _ := h.store.GetByMint(ctx, "mint-a")
	found := false
	for _, r := range recs {
		if r.Side == domain.TradeSideSell && r.ExitReason == domain.ExitReasonTakeProfit {
			found = true
		}
	}
	if !found {
		t.Error("no TAKE_PROFIT sell journalled")
	}
}

func TestExitEngine_TrailingStopAfterRunUp(t *testing.T) {
	h := newTestHarness(defaultTestConfig())
	ctx := context.Background()
	engine := NewExitEngine(h.trader, 0)

	cfg := defaultTestConfig()
	cfg.TakeProfitPct = 0 // isolate the trailing path
	h.trader.cfg = cfg

	h.trader.HandleLaunch(ctx, testLaunch("mint-a"))

	// Run-up ratchets the trailing stop to 0.9 * 1.8e-6.
	h.oracle.setPrice(1.8e-6, nil)
	engine.CheckOnce(ctx)
	p, _ := h.trader.Ledger().Get("mint-a")
	if p.Status != domain.PositionStatusOpen {
		t.Fatalf("sold during run-up, trailing = %v", p.TrailingStopPrice)
	}

	// Pullback below the ratcheted stop but above the fixed 7e-7.
	h.oracle.setPrice(1.5e-6, nil)
	engine.CheckOnce(ctx)

	p, _ = h.trader.Ledger().Get("mint-a")
	if p.Status != domain.PositionStatusClosed {
		t.Fatalf("status after pullback = %s, want CLOSED", p.Status)
	}
	recs, _ := h.store.GetByMint(ctx, "mint-a")
	found := false
	for _, r := range recs {
		if r.Side == domain.TradeSideSell && r.ExitReason == domain.ExitReasonTrailingStop {
			found = true
		}
	}
	if !found {
		t.Error("no TRAILING_STOP sell journalled")
	}
}

func TestExitEngine_RetriesRejectedSellNextTick(t *testing.T) {
	h := newTestHarness(defaultTestConfig())
	ctx := context.Background()
	engine := NewExitEngine(h.trader, 0)

	h.trader.HandleLaunch(ctx, testLaunch("mint-a"))
	h.oracle.setPrice(2.5e-6, nil)

	// Another sell holds the slot: the exit is rejected this tick.
	if err := h.trader.Gate().BeginSell(); err != nil {
		t.Fatalf("BeginSell() error: %v", err)
	}
	engine.CheckOnce(ctx)
	if p, _ := h.trader.Ledger().Get("mint-a"); p.Status != domain.PositionStatusOpen {
		t.Fatalf("position sold while slot was held, status %s", p.Status)
	}

	// Slot freed: the still-crossed target fires on the next tick.
	h.trader.Gate().EndSell()
	engine.CheckOnce(ctx)
	if p, _ := h.trader.Ledger().Get("mint-a"); p.Status != domain.PositionStatusClosed {
		t.Fatalf("status after retry = %s, want CLOSED", p.Status)
	}
}

func TestExitEngine_SkipsWhenPriceUnavailable(t *testing.T) {
	h := newTestHarness(defaultTestConfig())
	ctx := context.Background()
	engine := NewExitEngine(h.trader, 0)

	h.trader.HandleLaunch(ctx, testLaunch("mint-a"))
	before, _ := h.trader.Ledger().Get("mint-a")

	h.oracle.setPrice(0, fmt.Errorf("curve fetch: %w", oracle.ErrDataUnavailable))
	engine.CheckOnce(ctx)

	after, _ := h.trader.Ledger().Get("mint-a")
	if after.Status != domain.PositionStatusOpen {
		t.Errorf("status = %s, want OPEN when price unavailable", after.Status)
	}
	if after.CurrentPrice != before.CurrentPrice {
		t.Errorf("price moved to %v on unavailable data, want %v kept", after.CurrentPrice, before.CurrentPrice)
	}
}

func TestExitEngine_FailedSellKeepsPosition(t *testing.T) {
	h := newTestHarness(defaultTestConfig())
	ctx := context.Background()
	engine := NewExitEngine(h.trader, 0)

	h.trader.HandleLaunch(ctx, testLaunch("mint-a"))
	h.oracle.setPrice(2.5e-6, nil)
	h.gw.FailNextSell = true

	engine.CheckOnce(ctx)
	if p, _ := h.trader.Ledger().Get("mint-a"); p.Status != domain.PositionStatusOpen {
		t.Fatalf("position lost on failed sell, status %s", p.Status)
	}

	// One-shot failure cleared: retry succeeds.
	engine.CheckOnce(ctx)
	if p, _ := h.trader.Ledger().Get("mint-a"); p.Status != domain.PositionStatusClosed {
		t.Fatalf("status after retry = %s, want CLOSED", p.Status)
	}
}
