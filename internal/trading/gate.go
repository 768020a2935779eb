package trading

import (
	"sync"
	"time"

	"solana-pump-sniper/internal/analyzer"
	"solana-pump-sniper/internal/domain"
)

// GateConfig holds the admission thresholds. Zero values disable the
// corresponding optional checks where noted.
type GateConfig struct {
	MinSafetyScore int // positions score at or above pass

	MinMarketCapSOL float64
	MaxMarketCapSOL float64 // 0 disables the upper bound
	MinLiquiditySOL float64

	MinHolders int
	MaxHolders int // 0 disables the upper bound

	RequireSocialLinks         bool
	RequireCreatorVerification bool

	CooldownMs       int64
	MaxTradesPerHour int
}

// DefaultGateConfig mirrors the shipped defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinSafetyScore:   60,
		MinMarketCapSOL:  1_000,
		MaxMarketCapSOL:  50_000,
		MinLiquiditySOL:  5,
		CooldownMs:       5_000,
		MaxTradesPerHour: 10,
	}
}

// Gate serializes trade admission. At most one buy and one sell may be
// in flight across the whole process; every admitted buy also passes
// the quality filters, the cooldown and the daily cap.
type Gate struct {
	cfg GateConfig

	mu           sync.Mutex
	buyInFlight  bool
	sellInFlight bool
	lastBuyAt    int64 // unix ms of last successful buy
	dailyTrades  int
	dailyKey     string // UTC date the counter belongs to

	now func() time.Time
}

func NewGate(cfg GateConfig) *Gate {
	return &Gate{cfg: cfg, now: time.Now}
}

// dailyCap derives the per-day budget from the hourly knob. Not a
// rolling hourly limit: the knob scales straight to a day-wide budget.
func (g *Gate) dailyCap() int {
	return g.cfg.MaxTradesPerHour * 24
}

// AdmitBuy runs every buy-side admission check in order and, when all
// pass, atomically claims the process-wide buy slot. The caller must
// pair it with EndBuy.
func (g *Gate) AdmitBuy(safety *domain.SafetyReport, metrics *domain.TokenMetrics, snap *analyzer.Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if safety.Score < g.cfg.MinSafetyScore {
		return reject(ReasonBelowSafetyThreshold, "score %d below %d", safety.Score, g.cfg.MinSafetyScore)
	}
	if metrics.MarketCap < g.cfg.MinMarketCapSOL {
		return reject(ReasonMarketCapOutOfRange, "market cap %.2f below %.2f", metrics.MarketCap, g.cfg.MinMarketCapSOL)
	}
	if g.cfg.MaxMarketCapSOL > 0 && metrics.MarketCap > g.cfg.MaxMarketCapSOL {
		return reject(ReasonMarketCapOutOfRange, "market cap %.2f above %.2f", metrics.MarketCap, g.cfg.MaxMarketCapSOL)
	}
	if metrics.Liquidity < g.cfg.MinLiquiditySOL {
		return reject(ReasonInsufficientLiq, "liquidity %.2f below %.2f", metrics.Liquidity, g.cfg.MinLiquiditySOL)
	}
	// Holder bounds apply only when the oracle reports a count; a zero
	// means unknown, not an empty holder set.
	if snap.Holders > 0 {
		if snap.Holders < g.cfg.MinHolders {
			return reject(ReasonHoldersOutOfRange, "%d holders below %d", snap.Holders, g.cfg.MinHolders)
		}
		if g.cfg.MaxHolders > 0 && snap.Holders > g.cfg.MaxHolders {
			return reject(ReasonHoldersOutOfRange, "%d holders above %d", snap.Holders, g.cfg.MaxHolders)
		}
	}
	if g.cfg.RequireSocialLinks && (snap.Info == nil || !snap.Info.HasSocialLinks()) {
		return reject(ReasonMissingSocialLinks, "no social links in metadata")
	}
	if g.cfg.RequireCreatorVerification && !snap.CreatorVerified {
		return reject(ReasonCreatorUnverified, "creator not verified")
	}

	nowMs := g.now().UnixMilli()
	if g.cfg.CooldownMs > 0 && g.lastBuyAt > 0 && nowMs-g.lastBuyAt < g.cfg.CooldownMs {
		return reject(ReasonCooldownActive, "%dms since last buy, cooldown %dms", nowMs-g.lastBuyAt, g.cfg.CooldownMs)
	}

	g.rollDailyLocked()
	if g.cfg.MaxTradesPerHour > 0 && g.dailyTrades >= g.dailyCap() {
		return reject(ReasonDailyCapReached, "%d trades today, cap %d", g.dailyTrades, g.dailyCap())
	}

	if g.buyInFlight {
		return reject(ReasonOperationInFlight, "buy already in flight")
	}
	g.buyInFlight = true
	return nil
}

// EndBuy releases the buy slot. On success the cooldown clock and the
// daily counter advance; on failure nothing is consumed.
func (g *Gate) EndBuy(success bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buyInFlight = false
	if success {
		g.lastBuyAt = g.now().UnixMilli()
		g.rollDailyLocked()
		g.dailyTrades++
	}
}

// BeginSell claims the process-wide sell slot. Sells bypass the quality
// filters, cooldown and daily cap: an exit must never be blocked by
// entry-side limits.
func (g *Gate) BeginSell() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sellInFlight {
		return reject(ReasonOperationInFlight, "sell already in flight")
	}
	g.sellInFlight = true
	return nil
}

func (g *Gate) EndSell() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sellInFlight = false
}

// rollDailyLocked resets the trade counter when the UTC date changes.
// Callers must hold g.mu.
func (g *Gate) rollDailyLocked() {
	key := g.now().UTC().Format("2006-01-02")
	if key != g.dailyKey {
		g.dailyKey = key
		g.dailyTrades = 0
	}
}

// GateStatus is a point-in-time snapshot of the gate state.
type GateStatus struct {
	BuyInFlight  bool
	SellInFlight bool
	DailyTrades  int
	DailyCap     int
}

func (g *Gate) Status() GateStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rollDailyLocked()
	return GateStatus{
		BuyInFlight:  g.buyInFlight,
		SellInFlight: g.sellInFlight,
		DailyTrades:  g.dailyTrades,
		DailyCap:     g.dailyCap(),
	}
}
