package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"solana-pump-sniper/internal/solana"
)

// ErrNotFound is returned when a transaction or account is not found.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	mu           sync.Mutex
	Transactions map[string]*solana.Transaction
	Accounts     map[string]*solana.AccountInfo
	Balances     map[string]uint64
	Blockhash    string
	SendErr      error
	sent         []string
	sendSeq      int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Accounts:     make(map[string]*solana.AccountInfo),
		Balances:     make(map[string]uint64),
		Blockhash:    "GfVcyD4kkTrj4bKc7WA9sZCin9JDbdT4Zkd3EittNR1W",
	}
}

var _ solana.RPCClient = (*RPCClient)(nil)

// GetTransaction retrieves a transaction by signature from the stub store.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.Transactions[signature]
	if !ok {
		return nil, ErrNotFound
	}
	return tx, nil
}

// GetAccountInfo retrieves account info from the stub store.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	return info, nil
}

// GetBalance retrieves a lamport balance from the stub store.
func (c *RPCClient) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Balances[pubkey], nil
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Blockhash, nil
}

// SendTransaction records the submitted transaction and returns a
// synthetic signature, or SendErr if configured.
func (c *RPCClient) SendTransaction(_ context.Context, signedTxBase64 string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return "", c.SendErr
	}
	c.sent = append(c.sent, signedTxBase64)
	c.sendSeq++
	return fmt.Sprintf("stub-sig-%d", c.sendSeq), nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Transactions[tx.Signature] = tx
}

// AddAccount adds an account to the stub store.
func (c *RPCClient) AddAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = info
}

// SetBalance sets a wallet balance in the stub store.
func (c *RPCClient) SetBalance(pubkey string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Balances[pubkey] = lamports
}

// Sent returns the base64 payloads submitted via SendTransaction.
func (c *RPCClient) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	copy(out, c.sent)
	return out
}
