package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
)

// SPL Token Mint account layout:
// mintAuthorityOption(4) + mintAuthority(32) + supply(8) + decimals(1)
// + isInitialized(1) + freezeAuthorityOption(4) + freezeAuthority(32)
const (
	mintAccountLen        = 82
	freezeAuthorityOffset = 46
)

// mintState holds the safety-relevant fields of an SPL mint account.
type mintState struct {
	authorityRevoked bool // mint authority option is None
	freezeAuthority  bool // freeze authority option is Some
}

// getMintState fetches the mint account and reads its authority options.
func (o *Oracle) getMintState(ctx context.Context, mint string) (mintState, error) {
	account, err := o.rpc.GetAccountInfo(ctx, mint)
	if err != nil {
		return mintState{}, unavailable("fetch mint %s: %v", mint, err)
	}
	if account == nil {
		return mintState{}, unavailable("mint account %s not found", mint)
	}

	decoded, err := base64.StdEncoding.DecodeString(account.Data)
	if err != nil {
		return mintState{}, unavailable("decode mint %s: %v", mint, err)
	}
	if len(decoded) < mintAccountLen {
		return mintState{}, unavailable("mint %s data too short: %d", mint, len(decoded))
	}

	// COption tags are 4-byte little-endian: 0 = None, 1 = Some
	mintAuthTag := binary.LittleEndian.Uint32(decoded[0:4])
	freezeTag := binary.LittleEndian.Uint32(decoded[freezeAuthorityOffset : freezeAuthorityOffset+4])

	return mintState{
		authorityRevoked: mintAuthTag == 0,
		freezeAuthority:  freezeTag != 0,
	}, nil
}
