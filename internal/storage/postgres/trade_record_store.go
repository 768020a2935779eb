package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const insertTradeQuery = `
	INSERT INTO trade_records (
		signature, mint, side, amount, price, total_value,
		fee_sol, exit_reason, ts, success, error
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11
	)
`

const selectTradeColumns = `
	signature, mint, side, amount, price, total_value,
	fee_sol, exit_reason, ts, success, error
`

// Insert adds a new trade. Returns ErrDuplicateKey if the signature exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.Signature == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeQuery,
		t.Signature, t.Mint, string(t.Side), int64(t.Amount), t.Price, t.TotalValue,
		t.FeeSOL, t.ExitReason, t.Timestamp, t.Success, t.Error,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// GetBySignature retrieves a trade by signature. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetBySignature(ctx context.Context, signature string) (*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + ` FROM trade_records WHERE signature = $1`

	row := s.pool.QueryRow(ctx, query, signature)
	t, err := scanTradeRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record: %w", err)
	}
	return t, nil
}

// GetByMint retrieves all trades for a mint, ordered by timestamp ASC.
func (s *TradeRecordStore) GetByMint(ctx context.Context, mint string) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + ` FROM trade_records WHERE mint = $1 ORDER BY ts ASC, signature ASC`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query trades by mint: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetByTimeRange retrieves trades within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TradeRecordStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TradeRecord, error) {
	query := `SELECT ` + selectTradeColumns + ` FROM trade_records WHERE ts >= $1 AND ts <= $2 ORDER BY ts ASC, signature ASC`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query trades by time range: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// rowScanner abstracts pgx.Row and pgx.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTradeRecord(row rowScanner) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var side string
	var amount int64

	err := row.Scan(
		&t.Signature, &t.Mint, &side, &amount, &t.Price, &t.TotalValue,
		&t.FeeSOL, &t.ExitReason, &t.Timestamp, &t.Success, &t.Error,
	)
	if err != nil {
		return nil, err
	}

	t.Side = domain.TradeSide(side)
	t.Amount = uint64(amount)
	return &t, nil
}

func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var result []*domain.TradeRecord
	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade records: %w", err)
	}
	return result, nil
}
