package clickhouse

import (
	"context"
	"fmt"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using ClickHouse.
// Intended as an analytics archive next to the authoritative Postgres journal.
type TradeRecordStore struct {
	conn *Conn
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(conn *Conn) *TradeRecordStore {
	return &TradeRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
// ReplacingMergeTree does not enforce uniqueness, so existence is checked
// explicitly before insert.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.Signature == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, t.Signature)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO trade_records (
			signature, mint, side, amount, price, total_value,
			fee_sol, exit_reason, ts, success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		t.Signature, t.Mint, string(t.Side), t.Amount, t.Price, t.TotalValue,
		t.FeeSOL, t.ExitReason, t.Timestamp, boolToUInt8(t.Success), t.Error,
	)
	if err != nil {
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// GetBySignature retrieves a trade by signature. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetBySignature(ctx context.Context, signature string) (*domain.TradeRecord, error) {
	query := `
		SELECT signature, mint, side, amount, price, total_value,
		       fee_sol, exit_reason, ts, success, error
		FROM trade_records FINAL
		WHERE signature = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, signature)
	if err != nil {
		return nil, fmt.Errorf("query trade record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storage.ErrNotFound
	}
	return scanTradeRecord(rows)
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeRecordStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeRecord, error) {
	query := `
		SELECT signature, mint, side, amount, price, total_value,
		       fee_sol, exit_reason, ts, success, error
		FROM trade_records FINAL
		WHERE mint = ?
		ORDER BY ts ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query trades by mint: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetByTimeRange retrieves trades within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TradeRecordStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TradeRecord, error) {
	query := `
		SELECT signature, mint, side, amount, price, total_value,
		       fee_sol, exit_reason, ts, success, error
		FROM trade_records FINAL
		WHERE ts >= ? AND ts <= ?
		ORDER BY ts ASC, signature ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query trades by time range: %w", err)
	}
	defer rows.Close()

	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *TradeRecordStore) exists(ctx context.Context, signature string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM trade_records WHERE signature = ?`, signature)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// rowScanner abstracts driver.Rows for scanning a single record.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTradeRecord(row rowScanner) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var side string
	var success uint8

	err := row.Scan(
		&t.Signature, &t.Mint, &side, &t.Amount, &t.Price, &t.TotalValue,
		&t.FeeSOL, &t.ExitReason, &t.Timestamp, &success, &t.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("scan trade record: %w", err)
	}

	t.Side = domain.TradeSide(side)
	t.Success = success != 0
	return &t, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
