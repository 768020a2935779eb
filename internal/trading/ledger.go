package trading

import (
	"sync"
	"time"

	"solana-pump-sniper/internal/domain"
)

// Ledger tracks live positions keyed by mint. At most one non-closed
// position exists per mint; a buy into a mint that is already live
// merges into it with a weighted entry price.
type Ledger struct {
	mu          sync.RWMutex
	positions   map[string]*domain.Position
	trailingPct float64 // 0 disables trailing stops

	now func() time.Time
}

func NewLedger(trailingPct float64) *Ledger {
	return &Ledger{
		positions:   make(map[string]*domain.Position),
		trailingPct: trailingPct,
		now:         time.Now,
	}
}

// Open records a fill. A live position for the same mint absorbs the
// fill: amounts add, the entry price becomes the size-weighted average,
// and the original open time and exit targets are kept. A closed
// position for the mint is replaced outright.
func (l *Ledger) Open(p *domain.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.positions[p.Mint]
	if ok && existing.IsLive() {
		total := existing.Amount + p.Amount
		if total > 0 {
			existing.EntryPrice = (existing.EntryPrice*float64(existing.Amount) +
				p.EntryPrice*float64(p.Amount)) / float64(total)
		}
		existing.Amount = total
		existing.CurrentPrice = p.EntryPrice
		existing.LastUpdated = l.monotonicMs(existing.LastUpdated)
		return
	}

	cp := *p
	if cp.Status == "" {
		cp.Status = domain.PositionStatusOpen
	}
	if cp.LastUpdated == 0 {
		cp.LastUpdated = cp.OpenedAt
	}
	l.positions[p.Mint] = &cp
}

// ApplySellSettlement reduces a position after a confirmed sell. Selling
// the full remainder closes it; a partial sell moves it to PARTIAL.
func (l *Ledger) ApplySellSettlement(mint string, amount uint64) (*domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[mint]
	if !ok || !p.IsLive() {
		return nil, ErrPositionNotFound
	}
	if amount > p.Amount {
		return nil, ErrOverdraw
	}

	p.Amount -= amount
	if p.Amount == 0 {
		p.Status = domain.PositionStatusClosed
	} else {
		p.Status = domain.PositionStatusPartial
	}
	p.LastUpdated = l.monotonicMs(p.LastUpdated)

	cp := *p
	return &cp, nil
}

// RefreshPrice folds a fresh price into a live position: PnL recomputes
// and the trailing stop ratchets up when the new candidate exceeds the
// stored one. The trailing stop never moves down.
func (l *Ledger) RefreshPrice(mint string, price float64) (*domain.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[mint]
	if !ok || !p.IsLive() {
		return nil, ErrPositionNotFound
	}

	p.CurrentPrice = price
	held := float64(p.Amount) / float64(domain.TokenBaseUnits)
	p.PnL = (price - p.EntryPrice) * held
	if p.EntryPrice > 0 {
		p.PnLPct = (price - p.EntryPrice) / p.EntryPrice * 100
	}
	p.LastUpdated = l.monotonicMs(p.LastUpdated)

	if l.trailingPct > 0 {
		cand := price * (1 - l.trailingPct/100)
		if p.TrailingStopPrice == nil || cand > *p.TrailingStopPrice {
			p.TrailingStopPrice = &cand
		}
	}

	cp := *p
	return &cp, nil
}

// Get returns a copy of the position for mint, live or closed.
func (l *Ledger) Get(mint string) (*domain.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[mint]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

// ListOpen returns copies of every live position.
func (l *Ledger) ListOpen() []*domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*domain.Position, 0, len(l.positions))
	for _, p := range l.positions {
		if p.IsLive() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}

// OpenCount returns the number of live positions.
func (l *Ledger) OpenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, p := range l.positions {
		if p.IsLive() {
			n++
		}
	}
	return n
}

// monotonicMs returns the current unix-ms clock, never going backwards
// relative to prev.
func (l *Ledger) monotonicMs(prev int64) int64 {
	ms := l.now().UnixMilli()
	if ms < prev {
		return prev
	}
	return ms
}
