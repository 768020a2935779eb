package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mr-tron/base58"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/solana"
)

// GetTokenInfo resolves token metadata: on-chain Metaplex name/symbol/uri,
// then best-effort social links from the off-chain JSON the uri points at.
func (o *Oracle) GetTokenInfo(ctx context.Context, mint string) (*domain.TokenInfo, error) {
	address, err := solana.DeriveMetadataAddress(mint)
	if err != nil {
		return nil, unavailable("derive metadata for %s: %v", mint, err)
	}

	account, err := o.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, unavailable("fetch metadata %s: %v", address, err)
	}
	if account == nil {
		return nil, unavailable("metadata account %s not found", address)
	}

	info := &domain.TokenInfo{Mint: mint}

	uri, ok := parseMetaplexData(account.Data, info)
	if !ok {
		return nil, unavailable("metadata account %s malformed", address)
	}

	if uri != "" {
		// Socials live in the off-chain JSON; absence is not an error.
		o.fillSocialLinks(ctx, uri, info)
	}

	return info, nil
}

// parseMetaplexData parses a Metaplex Token Metadata account.
// Layout: key(1) + updateAuthority(32) + mint(32) + name(4+len)
// + symbol(4+len) + uri(4+len) + ...
func parseMetaplexData(data string, info *domain.TokenInfo) (uri string, ok bool) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", false
	}

	if len(decoded) < 100 {
		return "", false
	}

	if decoded[0] != 4 { // MetadataV1 key
		return "", false
	}

	// The update authority is the creator wallet for pump.fun launches.
	info.Creator = base58.Encode(decoded[1:33])

	// Skip key(1) + updateAuthority(32) + mint(32)
	offset := 65

	name, offset, ok := readMetaplexString(decoded, offset, 100)
	if !ok {
		return "", false
	}
	info.Name = name

	symbol, offset, ok := readMetaplexString(decoded, offset, 20)
	if !ok {
		return "", false
	}
	info.Symbol = symbol

	uri, _, ok = readMetaplexString(decoded, offset, 250)
	if !ok {
		return "", false
	}

	return uri, true
}

// readMetaplexString reads a borsh string and trims zero padding.
func readMetaplexString(data []byte, offset, maxLen int) (string, int, bool) {
	if offset+4 > len(data) {
		return "", offset, false
	}
	length := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	if int(length) > maxLen || offset+int(length) > len(data) {
		return "", offset, false
	}

	s := strings.TrimRight(string(data[offset:offset+int(length)]), "\x00")
	return s, offset + int(length), true
}

// offchainMetadata is the pump.fun off-chain metadata JSON shape.
type offchainMetadata struct {
	Twitter  string `json:"twitter"`
	Telegram string `json:"telegram"`
	Website  string `json:"website"`
}

// fillSocialLinks fetches the off-chain metadata JSON and copies any
// social links into info. Failures are swallowed: socials are advisory.
func (o *Oracle) fillSocialLinks(ctx context.Context, uri string, info *domain.TokenInfo) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return
	}

	resp, err := o.http.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var meta offchainMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return
	}

	if meta.Twitter != "" {
		info.Twitter = &meta.Twitter
	}
	if meta.Telegram != "" {
		info.Telegram = &meta.Telegram
	}
	if meta.Website != "" {
		info.Website = &meta.Website
	}
}
