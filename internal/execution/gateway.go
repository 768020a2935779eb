// Package execution submits buy and sell orders. The simulated gateway
// is a first-class execution path: it runs through the identical
// admission/ledger/exit logic as the live one.
package execution

import (
	"context"
	"errors"
)

// ErrExecution wraps gateway failures. The trading core treats them as
// "trade did not happen": log, release the in-flight flag, continue.
var ErrExecution = errors.New("execution failed")

// Receipt confirms a submitted order.
type Receipt struct {
	Signature   string // transaction signature ("sim-..." in simulation)
	SubmittedAt int64  // Unix timestamp in milliseconds
	Simulated   bool
}

// Gateway submits orders for a wallet.
type Gateway interface {
	// SubmitBuy spends solAmount SOL on the mint's bonding curve.
	SubmitBuy(ctx context.Context, mint string, solAmount, maxSlippagePct float64) (*Receipt, error)
	// SubmitSell sells tokenAmount base units back to the curve.
	SubmitSell(ctx context.Context, mint string, tokenAmount uint64, minSolOut float64) (*Receipt, error)
	// GetBalance returns the wallet balance in SOL.
	GetBalance(ctx context.Context) (float64, error)
}
