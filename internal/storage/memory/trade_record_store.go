package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
type TradeRecordStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecord // keyed by signature
}

// NewTradeRecordStore creates a new in-memory trade record store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{
		data: make(map[string]*domain.TradeRecord),
	}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeRecordStore) Insert(_ context.Context, t *domain.TradeRecord) error {
	if t == nil || t.Signature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *t
	s.data[t.Signature] = &recordCopy
	return nil
}

// GetBySignature retrieves a trade by signature. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetBySignature(_ context.Context, signature string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[signature]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *t
	return &recordCopy, nil
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeRecordStore) GetByMint(_ context.Context, mint string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.Mint == mint {
			recordCopy := *t
			result = append(result, &recordCopy)
		}
	}

	sortByTimestamp(result)
	return result, nil
}

// GetByTimeRange retrieves trades within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TradeRecordStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecord
	for _, t := range s.data {
		if t.Timestamp >= start && t.Timestamp <= end {
			recordCopy := *t
			result = append(result, &recordCopy)
		}
	}

	sortByTimestamp(result)
	return result, nil
}

func sortByTimestamp(trades []*domain.TradeRecord) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp == trades[j].Timestamp {
			return trades[i].Signature < trades[j].Signature
		}
		return trades[i].Timestamp < trades[j].Timestamp
	})
}
