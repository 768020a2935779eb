package domain

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// TokenBaseUnits converts whole pump.fun tokens to base units.
// All pump.fun mints use 6 decimals.
const TokenBaseUnits = 1_000_000

// CurveState is a point-in-time view of a pump.fun bonding curve account.
// Reserve fields are raw on-chain units (lamports / base token units).
type CurveState struct {
	Address              string // bonding curve account address
	Mint                 string // token mint address
	VirtualSolReserves   uint64 // lamports
	VirtualTokenReserves uint64 // base token units
	RealSolReserves      uint64 // lamports
	RealTokenReserves    uint64 // base token units
	TokenTotalSupply     uint64 // base token units
	Complete             bool   // curve graduated to AMM
}

// TokenMetrics holds metrics derived deterministically from a CurveState.
type TokenMetrics struct {
	Price          float64 // SOL per token
	MarketCap      float64 // price * total supply
	Liquidity      float64 // SOL pooled in the curve
	Holders        int     // holder count (0 when unknown)
	Volume24h      float64 // 24h volume (0 when unknown)
	PriceChange24h float64 // 24h price change pct (0 when unknown)
}
