package storage

import (
	"context"

	"solana-pump-sniper/internal/domain"
)

// TradeRecordStore journals settled trades. Implementations are
// append-only: records are never updated after insert.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// GetBySignature retrieves a trade by its transaction signature.
	// Returns ErrNotFound if not exists.
	GetBySignature(ctx context.Context, signature string) (*domain.TradeRecord, error)

	// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.TradeRecord, error)

	// GetByTimeRange retrieves trades within [start, end] ms (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TradeRecord, error)
}
