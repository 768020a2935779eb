package solana

// Transaction is a confirmed Solana transaction in the shape the sniper
// needs: log messages for instruction matching and account keys for
// extracting the mint, bonding curve and creator.
type Transaction struct {
	Signature string
	Slot      int64
	BlockTime int64 // Unix seconds, 0 when unavailable
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta holds execution results of a transaction.
type TransactionMeta struct {
	Err         interface{} // nil on success
	LogMessages []string
}

// TransactionMessage holds the account keys referenced by a transaction.
type TransactionMessage struct {
	AccountKeys []string
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
