package solana

import "context"

// RPCClient defines the Solana JSON-RPC surface the sniper depends on.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetBalance retrieves the lamport balance of a wallet.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed, base64-encoded transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, signedTxBase64 string) (string, error)
}
