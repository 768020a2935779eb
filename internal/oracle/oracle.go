// Package oracle resolves on-chain token state: bonding curve reserves,
// metadata and safety signals. All failures surface as ErrDataUnavailable
// so callers can skip the token and continue.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"solana-pump-sniper/internal/analyzer"
	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/solana"
)

// ErrDataUnavailable is returned when on-chain state cannot be resolved.
var ErrDataUnavailable = errors.New("data unavailable")

// Oracle reads token state over RPC.
type Oracle struct {
	rpc                solana.RPCClient
	http               *http.Client
	suspiciousCreators map[string]struct{}
}

// Option configures the Oracle.
type Option func(*Oracle)

// WithSuspiciousCreators marks creator wallets whose launches are scored
// as suspicious.
func WithSuspiciousCreators(creators []string) Option {
	return func(o *Oracle) {
		for _, c := range creators {
			o.suspiciousCreators[c] = struct{}{}
		}
	}
}

// WithMetadataHTTPClient sets the client used for off-chain metadata.
func WithMetadataHTTPClient(client *http.Client) Option {
	return func(o *Oracle) {
		o.http = client
	}
}

// New creates an Oracle.
func New(rpc solana.RPCClient, opts ...Option) *Oracle {
	o := &Oracle{
		rpc:                rpc,
		http:               &http.Client{Timeout: 10 * time.Second},
		suspiciousCreators: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetSnapshot assembles the full snapshot the analyzer scores: curve
// state, metadata and on-chain safety signals.
func (o *Oracle) GetSnapshot(ctx context.Context, mint string) (analyzer.Snapshot, error) {
	curve, err := o.GetCurveState(ctx, mint)
	if err != nil {
		return analyzer.Snapshot{}, err
	}

	mintState, err := o.getMintState(ctx, mint)
	if err != nil {
		return analyzer.Snapshot{}, err
	}

	// Metadata is best-effort: a token without a metadata account still
	// gets scored, just without name/socials.
	info, err := o.GetTokenInfo(ctx, mint)
	if err != nil {
		info = &domain.TokenInfo{Mint: mint}
	}

	snap := analyzer.Snapshot{
		Info:        info,
		Curve:       curve,
		MintRevoked: mintState.authorityRevoked,
		// A live freeze authority can lock holder accounts, which is a
		// sell block in practice.
		IsHoneypot: mintState.freezeAuthority,
	}

	if info.Creator != "" {
		_, snap.SuspiciousCreator = o.suspiciousCreators[info.Creator]
	}

	return snap, nil
}

// GetPrice returns the current price in SOL derived from curve reserves.
func (o *Oracle) GetPrice(ctx context.Context, mint string) (float64, error) {
	curve, err := o.GetCurveState(ctx, mint)
	if err != nil {
		return 0, err
	}
	return analyzer.ComputeMetrics(curve).Price, nil
}

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataUnavailable, fmt.Sprintf(format, args...))
}
