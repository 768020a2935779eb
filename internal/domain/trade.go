package domain

// TradeSide distinguishes buys from sells.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Exit trigger codes recorded on sell trades.
const (
	ExitReasonTakeProfit   = "TAKE_PROFIT"
	ExitReasonStopLoss     = "STOP_LOSS"
	ExitReasonTrailingStop = "TRAILING_STOP"
	ExitReasonManual       = "MANUAL"
)

// TradeRecord journals one settled gateway call, successful or not.
// Corresponds to the trade_records table in PostgreSQL.
type TradeRecord struct {
	Signature  string    // transaction signature ("sim-..." in simulation)
	Mint       string    // token mint address
	Side       TradeSide // BUY | SELL
	Amount     uint64    // base token units
	Price      float64   // SOL per token at execution
	TotalValue float64   // amount * price in SOL
	FeeSOL     float64   // network + priority fees
	ExitReason string    // exit trigger for sells, empty for buys
	Timestamp  int64     // Unix timestamp ms
	Success    bool      // gateway reported success
	Error      string    // gateway error message, empty on success
}
