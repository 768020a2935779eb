package domain

// PositionStatus is the lifecycle state of a position.
// Transitions are one-way: OPEN -> PARTIAL -> CLOSED, or OPEN -> CLOSED.
type PositionStatus string

const (
	PositionStatusOpen    PositionStatus = "OPEN"
	PositionStatusPartial PositionStatus = "PARTIAL"
	PositionStatusClosed  PositionStatus = "CLOSED"
)

// Position is a live holding tracked by the ledger, keyed by mint.
// At most one non-closed position exists per mint.
type Position struct {
	Mint         string  // token mint address
	Symbol       string  // token symbol
	Amount       uint64  // base token units held
	EntryPrice   float64 // SOL per token at entry (weighted on merge)
	CurrentPrice float64 // last observed price
	PnL          float64 // (current - entry) * amount
	PnLPct       float64 // (current - entry) / entry * 100
	OpenedAt     int64   // Unix timestamp ms
	LastUpdated  int64   // Unix timestamp ms, monotonically non-decreasing

	TakeProfitPrice   *float64 // full-exit trigger: price >= tp (nullable)
	StopLossPrice     *float64 // full-exit trigger: price <= sl (nullable)
	TrailingStopPrice *float64 // ratchets up with price, never down (nullable)

	Status PositionStatus
}

// IsLive reports whether the position still holds tokens.
func (p *Position) IsLive() bool {
	return p.Status != PositionStatusClosed
}
