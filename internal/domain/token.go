package domain

// TokenEvent represents an observed pump.fun token launch.
// Delivered at-least-once: the feed does not deduplicate, and ordering
// across reconnects is not guaranteed.
type TokenEvent struct {
	Mint         string // token mint address
	BondingCurve string // bonding curve account address
	Creator      string // creator wallet address
	TxSignature  string // creation transaction signature
	Slot         int64  // Solana slot number
	ObservedAt   int64  // Unix timestamp in milliseconds
}

// TokenInfo represents token metadata resolved from on-chain accounts.
type TokenInfo struct {
	Mint      string  // token mint address
	Name      string  // token name
	Symbol    string  // token symbol
	Twitter   *string // twitter handle (nullable)
	Telegram  *string // telegram link (nullable)
	Website   *string // website URL (nullable)
	Creator   string  // creator wallet address
	CreatedAt int64   // launch timestamp (ms)
}

// HasSocialLinks reports whether any social link is present.
func (t *TokenInfo) HasSocialLinks() bool {
	return t.Twitter != nil || t.Telegram != nil || t.Website != nil
}
