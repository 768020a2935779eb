package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"solana-pump-sniper/internal/analyzer"
	"solana-pump-sniper/internal/domain"
	"solana-pump-sniper/internal/execution"
	"solana-pump-sniper/internal/feed"
	"solana-pump-sniper/internal/observability"
	"solana-pump-sniper/internal/oracle"
	"solana-pump-sniper/internal/storage"
)

// balanceReserveSOL is kept in the wallet on top of the buy amount to
// cover fees and rent.
const balanceReserveSOL = 0.01

// TokenOracle is the read side the trader and exit engine depend on.
// *oracle.Oracle satisfies it.
type TokenOracle interface {
	GetSnapshot(ctx context.Context, mint string) (analyzer.Snapshot, error)
	GetPrice(ctx context.Context, mint string) (float64, error)
}

var _ TokenOracle = (*oracle.Oracle)(nil)

// Config holds the sizing and exit parameters for the trader.
type Config struct {
	BuyAmountSOL    float64
	MaxSlippagePct  float64
	TakeProfitPct   float64 // 0 disables the take-profit target
	StopLossPct     float64 // 0 disables the stop-loss target
	TrailingStopPct float64 // 0 disables trailing stops
	SimulationMode  bool
}

// Trader turns admitted launches into positions and settles exits.
// All methods are safe for concurrent use.
type Trader struct {
	cfg     Config
	gate    *Gate
	ledger  *Ledger
	oracle  TokenOracle
	gateway execution.Gateway
	stores  []storage.TradeRecordStore

	now func() time.Time
}

func NewTrader(cfg Config, gate *Gate, ledger *Ledger, orc TokenOracle, gw execution.Gateway, stores ...storage.TradeRecordStore) *Trader {
	return &Trader{
		cfg:     cfg,
		gate:    gate,
		ledger:  ledger,
		oracle:  orc,
		gateway: gw,
		stores:  stores,
		now:     time.Now,
	}
}

// HandleLaunch evaluates a newly observed launch and buys when every
// admission check passes. Launches for mints we already hold are
// skipped, which makes at-least-once feed delivery safe.
func (t *Trader) HandleLaunch(ctx context.Context, c feed.Creation) {
	mint := c.Event.Mint

	if p, ok := t.ledger.Get(mint); ok && p.IsLive() {
		return
	}

	snap, err := t.oracle.GetSnapshot(ctx, mint)
	if err != nil {
		if errors.Is(err, oracle.ErrDataUnavailable) {
			log.Printf("[trader] %s: snapshot unavailable, skipping: %v", mint, err)
		} else {
			log.Printf("[trader] %s: snapshot failed: %v", mint, err)
		}
		return
	}

	metrics, safety, opp := analyzer.Evaluate(snap, t.now().UnixMilli())
	observability.RecordTokenEvaluated(string(safety.Status))
	log.Printf("[trader] %s (%s): safety=%d (%s) opportunity=%d price=%.9f mcap=%.2f",
		mint, c.Symbol, safety.Score, safety.Status, opp.Score, metrics.Price, metrics.MarketCap)

	if err := t.ExecuteBuy(ctx, mint, c.Symbol, &safety, &metrics, &snap); err != nil {
		var rej *RejectionError
		if errors.As(err, &rej) {
			observability.RecordBuyRejected(string(rej.Reason))
			log.Printf("[trader] %s: buy rejected: %v", mint, err)
			return
		}
		log.Printf("[trader] %s: buy failed: %v", mint, err)
	}
}

// ExecuteBuy runs admission, submits the buy and opens the position.
// A *RejectionError means the gate turned the trade down; any other
// error means the gateway failed after admission.
func (t *Trader) ExecuteBuy(ctx context.Context, mint, symbol string, safety *domain.SafetyReport, metrics *domain.TokenMetrics, snap *analyzer.Snapshot) error {
	if err := t.gate.AdmitBuy(safety, metrics, snap); err != nil {
		return err
	}
	success := false
	defer func() { t.gate.EndBuy(success) }()

	balance, err := t.gateway.GetBalance(ctx)
	if err != nil {
		return fmt.Errorf("balance check: %w", err)
	}
	if balance < t.cfg.BuyAmountSOL+balanceReserveSOL {
		return fmt.Errorf("insufficient balance: %.4f SOL, need %.4f", balance, t.cfg.BuyAmountSOL+balanceReserveSOL)
	}

	observability.RecordBuyAdmitted()
	receipt, err := t.gateway.SubmitBuy(ctx, mint, t.cfg.BuyAmountSOL, t.cfg.MaxSlippagePct)
	if err != nil {
		observability.RecordTrade(string(domain.TradeSideBuy), false)
		t.journal(ctx, &domain.TradeRecord{
			Signature: failureSignature(),
			Mint:      mint,
			Side:      domain.TradeSideBuy,
			Price:     metrics.Price,
			Timestamp: t.now().UnixMilli(),
			Success:   false,
			Error:     err.Error(),
		})
		return fmt.Errorf("submit buy: %w", err)
	}
	success = true

	entryPrice := metrics.Price
	tokenAmount := uint64(t.cfg.BuyAmountSOL / entryPrice * domain.TokenBaseUnits)

	pos := &domain.Position{
		Mint:         mint,
		Symbol:       symbol,
		Amount:       tokenAmount,
		EntryPrice:   entryPrice,
		CurrentPrice: entryPrice,
		OpenedAt:     receipt.SubmittedAt,
		Status:       domain.PositionStatusOpen,
	}
	if t.cfg.TakeProfitPct > 0 {
		tp := entryPrice * (1 + t.cfg.TakeProfitPct/100)
		pos.TakeProfitPrice = &tp
	}
	if t.cfg.StopLossPct > 0 {
		sl := entryPrice * (1 - t.cfg.StopLossPct/100)
		pos.StopLossPrice = &sl
	}
	if t.cfg.TrailingStopPct > 0 {
		trail := entryPrice * (1 - t.cfg.TrailingStopPct/100)
		pos.TrailingStopPrice = &trail
	}
	t.ledger.Open(pos)
	observability.SetOpenPositions(t.ledger.OpenCount())
	observability.RecordTrade(string(domain.TradeSideBuy), true)

	t.journal(ctx, &domain.TradeRecord{
		Signature:  receipt.Signature,
		Mint:       mint,
		Side:       domain.TradeSideBuy,
		Amount:     tokenAmount,
		Price:      entryPrice,
		TotalValue: t.cfg.BuyAmountSOL,
		Timestamp:  receipt.SubmittedAt,
		Success:    true,
	})

	log.Printf("[trader] %s: bought %d base units at %.9f SOL (sig %s)", mint, tokenAmount, entryPrice, receipt.Signature)
	return nil
}

// ExecuteSell exits a position in full. exitReason is journalled on the
// trade record; the position closes only after the gateway confirms.
func (t *Trader) ExecuteSell(ctx context.Context, mint, exitReason string) error {
	pos, ok := t.ledger.Get(mint)
	if !ok || !pos.IsLive() {
		return ErrPositionNotFound
	}

	if err := t.gate.BeginSell(); err != nil {
		return err
	}
	defer t.gate.EndSell()

	held := float64(pos.Amount) / float64(domain.TokenBaseUnits)
	minSolOut := held * pos.CurrentPrice * (1 - t.cfg.MaxSlippagePct/100)

	receipt, err := t.gateway.SubmitSell(ctx, mint, pos.Amount, minSolOut)
	if err != nil {
		observability.RecordTrade(string(domain.TradeSideSell), false)
		t.journal(ctx, &domain.TradeRecord{
			Signature:  failureSignature(),
			Mint:       mint,
			Side:       domain.TradeSideSell,
			Amount:     pos.Amount,
			Price:      pos.CurrentPrice,
			ExitReason: exitReason,
			Timestamp:  t.now().UnixMilli(),
			Success:    false,
			Error:      err.Error(),
		})
		return fmt.Errorf("submit sell: %w", err)
	}

	settled, err := t.ledger.ApplySellSettlement(mint, pos.Amount)
	if err != nil {
		// The sell went through but the ledger disagrees. Log and keep
		// going rather than leaving the sell slot dark.
		log.Printf("[trader] %s: sell settled on chain but ledger update failed: %v", mint, err)
		return err
	}
	observability.SetOpenPositions(t.ledger.OpenCount())
	observability.RecordTrade(string(domain.TradeSideSell), true)

	t.journal(ctx, &domain.TradeRecord{
		Signature:  receipt.Signature,
		Mint:       mint,
		Side:       domain.TradeSideSell,
		Amount:     pos.Amount,
		Price:      pos.CurrentPrice,
		TotalValue: held * pos.CurrentPrice,
		ExitReason: exitReason,
		Timestamp:  receipt.SubmittedAt,
		Success:    true,
	})

	log.Printf("[trader] %s: sold %d base units, reason %s, pnl %.4f SOL (%.2f%%), status %s",
		mint, pos.Amount, exitReason, pos.PnL, pos.PnLPct, settled.Status)
	return nil
}

// failureSignature keys a failed-trade record. Failed submissions have
// no transaction signature and the stores require a unique one.
func failureSignature() string {
	return "failed-" + uuid.NewString()
}

// journal writes the record to every configured store. Journal failures
// never block trading.
func (t *Trader) journal(ctx context.Context, rec *domain.TradeRecord) {
	for _, s := range t.stores {
		if err := s.Insert(ctx, rec); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			log.Printf("[trader] journal insert failed for %s: %v", rec.Mint, err)
		}
	}
}

// Ledger exposes the position ledger for status reporting.
func (t *Trader) Ledger() *Ledger { return t.ledger }

// Gate exposes the admission gate for status reporting.
func (t *Trader) Gate() *Gate { return t.gate }
