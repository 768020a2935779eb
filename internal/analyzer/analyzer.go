// Package analyzer scores token launches for safety and opportunity.
// Evaluation is pure: identical snapshots yield identical verdicts aside
// from the age bonus, which depends on the caller-supplied clock.
package analyzer

import (
	"fmt"
	"math"

	"solana-pump-sniper/internal/domain"
)

// Safety score penalties per failed check.
const (
	penaltyNoLock            = 35
	penaltyMintNotRevoked    = 40
	penaltyHoneypot          = 60
	penaltyNoSocialLinks     = 10
	penaltyUnverifiedCreator = 10
	penaltySuspiciousCreator = 30
)

// Safety status thresholds.
const (
	safeThreshold       = 70
	suspiciousThreshold = 40
)

// Opportunity bonuses.
const (
	bonusSafetySafe       = 30
	bonusSafetySuspicious = 10
	bonusLowMarketCap     = 20
	bonusLiquidity        = 15
	bonusFreshUnderHour   = 25
	bonusFreshUnderSixH   = 15
)

// Opportunity bonus qualification bounds.
const (
	lowMarketCapCeiling = 10000.0
	liquidityBonusFloor = 5.0
	freshHourMs         = int64(60 * 60 * 1000)
	freshSixHoursMs     = 6 * freshHourMs
)

// Snapshot is the point-in-time view of a token the evaluator scores.
// The oracle assembles it; the analyzer never does I/O.
type Snapshot struct {
	Info  *domain.TokenInfo
	Curve *domain.CurveState

	// On-chain safety signals gathered by the oracle.
	MintRevoked       bool
	IsHoneypot        bool
	CreatorVerified   bool
	SuspiciousCreator bool
	Holders           int
}

// Evaluate derives metrics and scores a token. now is Unix milliseconds.
func Evaluate(snap Snapshot, now int64) (domain.TokenMetrics, domain.SafetyReport, domain.OpportunityReport) {
	metrics := ComputeMetrics(snap.Curve)
	metrics.Holders = snap.Holders

	checks := buildChecks(snap)
	safety := AssessSafety(checks)
	opportunity := AssessOpportunity(safety.Status, metrics, createdAt(snap.Info), now)

	return metrics, safety, opportunity
}

// ComputeMetrics derives price, market cap and liquidity from curve reserves.
// price = (virtual_quote + real_quote) / max(1, virtual_base - real_base),
// market_cap = price * total_supply, liquidity = virtual_quote + real_quote,
// all in SOL and whole-token terms.
func ComputeMetrics(curve *domain.CurveState) domain.TokenMetrics {
	if curve == nil {
		return domain.TokenMetrics{}
	}

	quoteSOL := float64(curve.VirtualSolReserves+curve.RealSolReserves) / domain.LamportsPerSOL
	baseTokens := (float64(curve.VirtualTokenReserves) - float64(curve.RealTokenReserves)) / float64(domain.TokenBaseUnits)
	supply := float64(curve.TokenTotalSupply) / float64(domain.TokenBaseUnits)

	price := quoteSOL / math.Max(1, baseTokens)

	return domain.TokenMetrics{
		Price:     price,
		MarketCap: price * supply,
		Liquidity: quoteSOL,
	}
}

// buildChecks assembles the safety checklist from the snapshot. Liquidity
// counts as locked while the bonding curve still holds it.
func buildChecks(snap Snapshot) domain.SafetyChecks {
	checks := domain.SafetyChecks{
		MintRevoked:       snap.MintRevoked,
		IsHoneypot:        snap.IsHoneypot,
		CreatorVerified:   snap.CreatorVerified,
		SuspiciousCreator: snap.SuspiciousCreator,
	}
	if snap.Curve != nil {
		checks.HasLock = !snap.Curve.Complete
	}
	if snap.Info != nil {
		checks.HasSocialLinks = snap.Info.HasSocialLinks()
	}
	return checks
}

// AssessSafety scores a checklist. The score starts at 100, each failed
// check subtracts its penalty, and the result is clamped to [0,100].
func AssessSafety(checks domain.SafetyChecks) domain.SafetyReport {
	score := 100

	if !checks.HasLock {
		score -= penaltyNoLock
	}
	if !checks.MintRevoked {
		score -= penaltyMintNotRevoked
	}
	if checks.IsHoneypot {
		score -= penaltyHoneypot
	}
	if !checks.HasSocialLinks {
		score -= penaltyNoSocialLinks
	}
	if !checks.CreatorVerified {
		score -= penaltyUnverifiedCreator
	}
	if checks.SuspiciousCreator {
		score -= penaltySuspiciousCreator
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return domain.SafetyReport{
		Status: statusForScore(score),
		Score:  score,
		Checks: checks,
	}
}

// statusForScore maps a safety score to its status tier.
func statusForScore(score int) domain.SafetyStatus {
	switch {
	case score >= safeThreshold:
		return domain.SafetyStatusSafe
	case score >= suspiciousThreshold:
		return domain.SafetyStatusSuspicious
	default:
		return domain.SafetyStatusDangerous
	}
}

// AssessOpportunity applies additive bonuses capped at 100, appending a
// reason for each bonus granted. createdAt and now are Unix milliseconds;
// createdAt <= 0 skips the freshness bonus.
func AssessOpportunity(status domain.SafetyStatus, metrics domain.TokenMetrics, createdAt, now int64) domain.OpportunityReport {
	score := 0
	var reasons []string

	switch status {
	case domain.SafetyStatusSafe:
		score += bonusSafetySafe
		reasons = append(reasons, "good safety rating")
	case domain.SafetyStatusSuspicious:
		score += bonusSafetySuspicious
		reasons = append(reasons, "acceptable safety rating")
	}

	if metrics.MarketCap > 0 && metrics.MarketCap < lowMarketCapCeiling {
		score += bonusLowMarketCap
		reasons = append(reasons, fmt.Sprintf("low market cap (%.2f SOL)", metrics.MarketCap))
	}

	if metrics.Liquidity >= liquidityBonusFloor {
		score += bonusLiquidity
		reasons = append(reasons, fmt.Sprintf("healthy liquidity (%.2f SOL)", metrics.Liquidity))
	}

	if createdAt > 0 && now >= createdAt {
		age := now - createdAt
		switch {
		case age < freshHourMs:
			score += bonusFreshUnderHour
			reasons = append(reasons, "very fresh launch (<1h)")
		case age < freshSixHoursMs:
			score += bonusFreshUnderSixH
			reasons = append(reasons, "fresh launch (<6h)")
		}
	}

	if score > 100 {
		score = 100
	}

	return domain.OpportunityReport{
		Score:   score,
		Reasons: reasons,
	}
}

func createdAt(info *domain.TokenInfo) int64 {
	if info == nil {
		return 0
	}
	return info.CreatedAt
}
