package execution

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"time"

	"github.com/mr-tron/base58"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/solana"
)

// Well-known program IDs used when assembling instructions.
const (
	systemProgram        = "11111111111111111111111111111111"
	tokenProgram         = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	associatedTokenProg  = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	computeBudgetProgram = "ComputeBudget111111111111111111111111111111"
)

// Pump.fun anchor instruction discriminators.
var (
	buyDiscriminator  = []byte{102, 6, 61, 18, 1, 218, 235, 234}
	sellDiscriminator = []byte{51, 230, 133, 164, 1, 127, 131, 173}
)

// AccountMeta references an account in an instruction.
type AccountMeta struct {
	Pubkey   string
	Signer   bool
	Writable bool
}

// Instruction is one program invocation in a transaction draft.
type Instruction struct {
	ProgramID string
	Accounts  []AccountMeta
	Data      []byte
}

// TxDraft is an unsigned transaction handed to the signer.
type TxDraft struct {
	RecentBlockhash string
	FeePayer        string
	Instructions    []Instruction
}

// TxSigner signs transaction drafts. Key management stays outside the
// trading core; the gateway only sees the wallet pubkey and signed bytes.
type TxSigner interface {
	Pubkey() string
	// SignTransaction serializes, signs and base64-encodes the draft.
	SignTransaction(ctx context.Context, draft TxDraft) (string, error)
}

// PriceSource returns the current SOL price of a mint. The oracle
// satisfies this.
type PriceSource func(ctx context.Context, mint string) (float64, error)

// RPCGateway submits pump.fun transactions over RPC.
type RPCGateway struct {
	rpc    solana.RPCClient
	signer TxSigner
	price  PriceSource

	priorityFeeMicroLamports uint64
}

// NewRPCGateway creates a live execution gateway.
func NewRPCGateway(rpc solana.RPCClient, signer TxSigner, price PriceSource, priorityFeeMicroLamports uint64) *RPCGateway {
	return &RPCGateway{
		rpc:                      rpc,
		signer:                   signer,
		price:                    price,
		priorityFeeMicroLamports: priorityFeeMicroLamports,
	}
}

var _ Gateway = (*RPCGateway)(nil)

// SubmitBuy builds, signs and sends a pump.fun buy.
func (g *RPCGateway) SubmitBuy(ctx context.Context, mint string, solAmount, maxSlippagePct float64) (*Receipt, error) {
	price, err := g.price(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("%w: price for %s: %v", ErrExecution, mint, err)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: non-positive price for %s", ErrExecution, mint)
	}

	// Expected tokens at current price, reduced by tolerated slippage
	expectedTokens := solAmount / price
	tokenAmount := uint64(expectedTokens * (1 - maxSlippagePct/100) * domain.TokenBaseUnits)
	maxSolCost := uint64(solAmount * (1 + maxSlippagePct/100) * domain.LamportsPerSOL)

	data := make([]byte, 0, 24)
	data = append(data, buyDiscriminator...)
	data = binary.LittleEndian.AppendUint64(data, tokenAmount)
	data = binary.LittleEndian.AppendUint64(data, maxSolCost)

	sig, err := g.submit(ctx, mint, data)
	if err != nil {
		return nil, err
	}

	log.Printf("[exec] BUY mint=%s amount=%.4f SOL sig=%s", mint, solAmount, sig)
	return &Receipt{Signature: sig, SubmittedAt: time.Now().UnixMilli()}, nil
}

// SubmitSell builds, signs and sends a pump.fun sell.
func (g *RPCGateway) SubmitSell(ctx context.Context, mint string, tokenAmount uint64, minSolOut float64) (*Receipt, error) {
	data := make([]byte, 0, 24)
	data = append(data, sellDiscriminator...)
	data = binary.LittleEndian.AppendUint64(data, tokenAmount)
	data = binary.LittleEndian.AppendUint64(data, uint64(minSolOut*domain.LamportsPerSOL))

	sig, err := g.submit(ctx, mint, data)
	if err != nil {
		return nil, err
	}

	log.Printf("[exec] SELL mint=%s amount=%d sig=%s", mint, tokenAmount, sig)
	return &Receipt{Signature: sig, SubmittedAt: time.Now().UnixMilli()}, nil
}

// GetBalance returns the signer wallet balance in SOL.
func (g *RPCGateway) GetBalance(ctx context.Context) (float64, error) {
	lamports, err := g.rpc.GetBalance(ctx, g.signer.Pubkey())
	if err != nil {
		return 0, fmt.Errorf("%w: balance: %v", ErrExecution, err)
	}
	return float64(lamports) / domain.LamportsPerSOL, nil
}

// submit assembles the transaction around the trade instruction, signs
// it and sends it.
func (g *RPCGateway) submit(ctx context.Context, mint string, tradeData []byte) (string, error) {
	curve, err := solana.DeriveBondingCurveAddress(mint)
	if err != nil {
		return "", fmt.Errorf("%w: derive curve: %v", ErrExecution, err)
	}

	wallet := g.signer.Pubkey()

	walletATA, err := deriveAssociatedTokenAccount(wallet, mint)
	if err != nil {
		return "", fmt.Errorf("%w: derive wallet ata: %v", ErrExecution, err)
	}
	curveATA, err := deriveAssociatedTokenAccount(curve, mint)
	if err != nil {
		return "", fmt.Errorf("%w: derive curve ata: %v", ErrExecution, err)
	}

	blockhash, err := g.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: blockhash: %v", ErrExecution, err)
	}

	var instructions []Instruction
	if g.priorityFeeMicroLamports > 0 {
		instructions = append(instructions, computeUnitPriceInstruction(g.priorityFeeMicroLamports))
	}

	instructions = append(instructions, Instruction{
		ProgramID: solana.PumpFunProgram,
		Accounts: []AccountMeta{
			{Pubkey: solana.PumpFunGlobal},
			{Pubkey: solana.PumpFunFeeRecipient, Writable: true},
			{Pubkey: mint},
			{Pubkey: curve, Writable: true},
			{Pubkey: curveATA, Writable: true},
			{Pubkey: walletATA, Writable: true},
			{Pubkey: wallet, Signer: true, Writable: true},
			{Pubkey: systemProgram},
			{Pubkey: tokenProgram},
		},
		Data: tradeData,
	})

	signedTx, err := g.signer.SignTransaction(ctx, TxDraft{
		RecentBlockhash: blockhash,
		FeePayer:        wallet,
		Instructions:    instructions,
	})
	if err != nil {
		return "", fmt.Errorf("%w: sign: %v", ErrExecution, err)
	}

	sig, err := g.rpc.SendTransaction(ctx, signedTx)
	if err != nil {
		return "", fmt.Errorf("%w: send: %v", ErrExecution, err)
	}
	return sig, nil
}

// computeUnitPriceInstruction sets the priority fee.
func computeUnitPriceInstruction(microLamports uint64) Instruction {
	data := make([]byte, 0, 9)
	data = append(data, 3) // SetComputeUnitPrice
	data = binary.LittleEndian.AppendUint64(data, microLamports)
	return Instruction{ProgramID: computeBudgetProgram, Data: data}
}

// deriveAssociatedTokenAccount derives the ATA for (wallet, mint).
func deriveAssociatedTokenAccount(wallet, mint string) (string, error) {
	walletBytes, err := decode32(wallet)
	if err != nil {
		return "", err
	}
	tokenProgBytes, err := decode32(tokenProgram)
	if err != nil {
		return "", err
	}
	mintBytes, err := decode32(mint)
	if err != nil {
		return "", err
	}

	return solana.DerivePDA([][]byte{walletBytes, tokenProgBytes, mintBytes}, associatedTokenProg)
}

func decode32(pubkey string) ([]byte, error) {
	decoded, err := base58.Decode(pubkey)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("%s is not a 32-byte pubkey", pubkey)
	}
	return decoded, nil
}
