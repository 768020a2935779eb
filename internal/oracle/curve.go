package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/solana"
)

// Pump.fun BondingCurve account layout:
// discriminator(8) + virtual_token_reserves(8) + virtual_sol_reserves(8)
// + real_token_reserves(8) + real_sol_reserves(8) + token_total_supply(8)
// + complete(1)
const curveAccountMinLen = 49

// GetCurveState fetches and decodes the bonding curve account for a mint.
func (o *Oracle) GetCurveState(ctx context.Context, mint string) (*domain.CurveState, error) {
	address, err := solana.DeriveBondingCurveAddress(mint)
	if err != nil {
		return nil, unavailable("derive curve for %s: %v", mint, err)
	}

	account, err := o.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, unavailable("fetch curve %s: %v", address, err)
	}
	if account == nil {
		return nil, unavailable("curve account %s not found", address)
	}

	state, err := decodeCurveAccount(account.Data)
	if err != nil {
		return nil, unavailable("decode curve %s: %v", address, err)
	}

	state.Address = address
	state.Mint = mint
	return state, nil
}

// decodeCurveAccount parses base64 bonding curve account data.
func decodeCurveAccount(data string) (*domain.CurveState, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	if len(decoded) < curveAccountMinLen {
		return nil, fmt.Errorf("curve data too short: %d bytes", len(decoded))
	}

	offset := 8 // skip anchor discriminator
	state := &domain.CurveState{
		VirtualTokenReserves: binary.LittleEndian.Uint64(decoded[offset:]),
		VirtualSolReserves:   binary.LittleEndian.Uint64(decoded[offset+8:]),
		RealTokenReserves:    binary.LittleEndian.Uint64(decoded[offset+16:]),
		RealSolReserves:      binary.LittleEndian.Uint64(decoded[offset+24:]),
		TokenTotalSupply:     binary.LittleEndian.Uint64(decoded[offset+32:]),
		Complete:             decoded[offset+40] != 0,
	}
	return state, nil
}
