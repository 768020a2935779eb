package oracle

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"

	"solana-pump-sniper/internal/solana"
	"solana-pump-sniper/internal/solana/stub"
)

const testMint = "4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf"

func encodeCurveAccount(virtualTok, virtualSol, realTok, realSol, supply uint64, complete bool) string {
	buf := make([]byte, 49)
	// discriminator left zero; the decoder skips it
	binary.LittleEndian.PutUint64(buf[8:], virtualTok)
	binary.LittleEndian.PutUint64(buf[16:], virtualSol)
	binary.LittleEndian.PutUint64(buf[24:], realTok)
	binary.LittleEndian.PutUint64(buf[32:], realSol)
	binary.LittleEndian.PutUint64(buf[40:], supply)
	if complete {
		buf[48] = 1
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func encodeMintAccount(authorityRevoked, hasFreezeAuthority bool) string {
	buf := make([]byte, 82)
	if !authorityRevoked {
		binary.LittleEndian.PutUint32(buf[0:], 1)
	}
	if hasFreezeAuthority {
		binary.LittleEndian.PutUint32(buf[46:], 1)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func encodeMetadataAccount(name, symbol, uri string) string {
	return encodeMetadataAccountWithAuthority(name, symbol, uri, make([]byte, 32))
}

func encodeMetadataAccountWithAuthority(name, symbol, uri string, authority []byte) string {
	buf := make([]byte, 0, 256)
	buf = append(buf, 4) // MetadataV1 key
	buf = append(buf, authority...)
	buf = append(buf, make([]byte, 32)...) // mint

	for _, s := range []string{name, symbol, uri} {
		var lenBytes [4]byte
		binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(s)))
		buf = append(buf, lenBytes[:]...)
		buf = append(buf, s...)
	}

	// pad to a plausible account size
	buf = append(buf, make([]byte, 64)...)
	return base64.StdEncoding.EncodeToString(buf)
}

// seedCurve installs a curve account for testMint into the stub.
func seedCurve(t *testing.T, rpc *stub.RPCClient, data string) {
	t.Helper()
	addr, err := solana.DeriveBondingCurveAddress(testMint)
	if err != nil {
		t.Fatalf("derive curve: %v", err)
	}
	rpc.AddAccount(addr, &solana.AccountInfo{Owner: solana.PumpFunProgram, Data: data})
}

func seedMetadata(t *testing.T, rpc *stub.RPCClient, data string) {
	t.Helper()
	addr, err := solana.DeriveMetadataAddress(testMint)
	if err != nil {
		t.Fatalf("derive metadata: %v", err)
	}
	rpc.AddAccount(addr, &solana.AccountInfo{Owner: solana.MetaplexTokenMetadata, Data: data})
}

func TestOracle_GetCurveState(t *testing.T) {
	rpc := stub.NewRPCClient()
	seedCurve(t, rpc, encodeCurveAccount(1_073_000_000_000_000, 30_000_000_000, 793_100_000_000_000, 0, 1_000_000_000_000_000, false))

	o := New(rpc)
	ctx := context.Background()

	curve, err := o.GetCurveState(ctx, testMint)
	if err != nil {
		t.Fatalf("GetCurveState: %v", err)
	}

	if curve.VirtualTokenReserves != 1_073_000_000_000_000 {
		t.Errorf("unexpected virtual token reserves: %d", curve.VirtualTokenReserves)
	}
	if curve.VirtualSolReserves != 30_000_000_000 {
		t.Errorf("unexpected virtual sol reserves: %d", curve.VirtualSolReserves)
	}
	if curve.Complete {
		t.Error("expected incomplete curve")
	}
	if curve.Mint != testMint {
		t.Errorf("expected mint %s, got %s", testMint, curve.Mint)
	}
}

func TestOracle_GetCurveState_NotFound(t *testing.T) {
	o := New(stub.NewRPCClient())

	_, err := o.GetCurveState(context.Background(), testMint)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestOracle_GetCurveState_Malformed(t *testing.T) {
	rpc := stub.NewRPCClient()
	seedCurve(t, rpc, base64.StdEncoding.EncodeToString([]byte{1, 2, 3}))

	o := New(rpc)

	_, err := o.GetCurveState(context.Background(), testMint)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Errorf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestOracle_GetPrice(t *testing.T) {
	rpc := stub.NewRPCClient()
	// 1 SOL quote, 1e9 whole tokens base
	seedCurve(t, rpc, encodeCurveAccount(1_000_000_000*1_000_000, 1_000_000_000, 0, 0, 1_000_000_000*1_000_000, false))

	o := New(rpc)

	price, err := o.GetPrice(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetPrice: %v", err)
	}

	if price <= 0 || price > 1e-8 {
		t.Errorf("expected price near 1e-9, got %g", price)
	}
}

func TestOracle_GetTokenInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"twitter":"https://x.com/test","website":"https://test.example"}`))
	}))
	defer server.Close()

	rpc := stub.NewRPCClient()
	seedMetadata(t, rpc, encodeMetadataAccount("Test Token", "TEST", server.URL))

	o := New(rpc)

	info, err := o.GetTokenInfo(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetTokenInfo: %v", err)
	}

	if info.Name != "Test Token" {
		t.Errorf("expected name Test Token, got %q", info.Name)
	}
	if info.Symbol != "TEST" {
		t.Errorf("expected symbol TEST, got %q", info.Symbol)
	}
	if info.Twitter == nil || *info.Twitter != "https://x.com/test" {
		t.Errorf("expected twitter link, got %v", info.Twitter)
	}
	if info.Telegram != nil {
		t.Errorf("expected no telegram, got %v", *info.Telegram)
	}
	if !info.HasSocialLinks() {
		t.Error("expected social links present")
	}
}

func TestOracle_GetTokenInfo_OffchainFailureTolerated(t *testing.T) {
	rpc := stub.NewRPCClient()
	seedMetadata(t, rpc, encodeMetadataAccount("Test", "TST", "http://127.0.0.1:1/unreachable"))

	o := New(rpc)

	info, err := o.GetTokenInfo(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetTokenInfo: %v", err)
	}

	if info.HasSocialLinks() {
		t.Error("expected no social links when off-chain fetch fails")
	}
}

func TestOracle_GetSnapshot(t *testing.T) {
	rpc := stub.NewRPCClient()
	seedCurve(t, rpc, encodeCurveAccount(1_073_000_000_000_000, 30_000_000_000, 0, 0, 1_000_000_000_000_000, false))
	rpc.AddAccount(testMint, &solana.AccountInfo{Data: encodeMintAccount(true, false)})
	seedMetadata(t, rpc, encodeMetadataAccount("Snap", "SNP", ""))

	o := New(rpc)

	snap, err := o.GetSnapshot(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if !snap.MintRevoked {
		t.Error("expected mint authority revoked")
	}
	if snap.IsHoneypot {
		t.Error("expected no freeze authority")
	}
	if snap.Curve == nil || snap.Curve.VirtualSolReserves != 30_000_000_000 {
		t.Errorf("unexpected curve: %+v", snap.Curve)
	}
	if snap.Info.Symbol != "SNP" {
		t.Errorf("expected symbol SNP, got %q", snap.Info.Symbol)
	}
}

func TestOracle_GetSnapshot_FreezeAuthorityIsHoneypot(t *testing.T) {
	rpc := stub.NewRPCClient()
	seedCurve(t, rpc, encodeCurveAccount(1, 1, 0, 0, 1, false))
	rpc.AddAccount(testMint, &solana.AccountInfo{Data: encodeMintAccount(false, true)})

	o := New(rpc)

	snap, err := o.GetSnapshot(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if snap.MintRevoked {
		t.Error("expected mint authority live")
	}
	if !snap.IsHoneypot {
		t.Error("expected freeze authority to flag honeypot")
	}
	// Metadata missing: info falls back to mint-only
	if snap.Info.Mint != testMint || snap.Info.Name != "" {
		t.Errorf("unexpected info fallback: %+v", snap.Info)
	}
}

func TestOracle_SuspiciousCreator(t *testing.T) {
	badCreator := solana.PumpFunGlobal
	creatorBytes, err := base58.Decode(badCreator)
	if err != nil {
		t.Fatalf("decode creator: %v", err)
	}

	rpc := stub.NewRPCClient()
	seedCurve(t, rpc, encodeCurveAccount(1, 1, 0, 0, 1, false))
	rpc.AddAccount(testMint, &solana.AccountInfo{Data: encodeMintAccount(true, false)})
	seedMetadata(t, rpc, encodeMetadataAccountWithAuthority("Rug", "RUG", "", creatorBytes))

	o := New(rpc, WithSuspiciousCreators([]string{badCreator}))

	snap, err := o.GetSnapshot(context.Background(), testMint)
	if err != nil {
		t.Fatalf("GetSnapshot: %v", err)
	}

	if snap.Info.Creator != badCreator {
		t.Errorf("expected creator %s, got %s", badCreator, snap.Info.Creator)
	}
	if !snap.SuspiciousCreator {
		t.Error("expected suspicious creator flag")
	}
}
