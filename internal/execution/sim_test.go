package execution

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSimGateway_BuySellRoundTrip(t *testing.T) {
	g := NewSimGateway(1.0)
	ctx := context.Background()

	receipt, err := g.SubmitBuy(ctx, "mint1", 0.1, 5.0)
	if err != nil {
		t.Fatalf("SubmitBuy: %v", err)
	}

	if !strings.HasPrefix(receipt.Signature, "sim-") {
		t.Errorf("expected sim- signature, got %s", receipt.Signature)
	}
	if !receipt.Simulated {
		t.Error("expected simulated receipt")
	}
	if receipt.SubmittedAt == 0 {
		t.Error("expected SubmittedAt stamped")
	}

	balance, err := g.GetBalance(ctx)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if balance != 0.9 {
		t.Errorf("expected balance 0.9 after buy, got %g", balance)
	}

	if _, err := g.SubmitSell(ctx, "mint1", 1_000_000, 0.2); err != nil {
		t.Fatalf("SubmitSell: %v", err)
	}

	balance, _ = g.GetBalance(ctx)
	if balance != 1.1 {
		t.Errorf("expected balance 1.1 after sell, got %g", balance)
	}

	buys, sells := g.Trades()
	if buys != 1 || sells != 1 {
		t.Errorf("expected 1 buy / 1 sell, got %d / %d", buys, sells)
	}
}

func TestSimGateway_InsufficientBalance(t *testing.T) {
	g := NewSimGateway(0.05)

	_, err := g.SubmitBuy(context.Background(), "mint1", 0.1, 5.0)
	if !errors.Is(err, ErrExecution) {
		t.Errorf("expected ErrExecution, got %v", err)
	}
}

func TestSimGateway_InjectedFailures(t *testing.T) {
	g := NewSimGateway(1.0)
	ctx := context.Background()

	g.FailNextBuy = true
	if _, err := g.SubmitBuy(ctx, "mint1", 0.1, 5.0); !errors.Is(err, ErrExecution) {
		t.Errorf("expected injected buy failure, got %v", err)
	}

	// One-shot: next buy succeeds
	if _, err := g.SubmitBuy(ctx, "mint1", 0.1, 5.0); err != nil {
		t.Errorf("expected buy to succeed after injected failure, got %v", err)
	}

	g.FailNextSell = true
	if _, err := g.SubmitSell(ctx, "mint1", 1, 0.1); !errors.Is(err, ErrExecution) {
		t.Errorf("expected injected sell failure, got %v", err)
	}
}
