package analyzer

import (
	"math"
	"testing"

	"solana-pump-sniper/internal/domain"
)

func allPassChecks() domain.SafetyChecks {
	return domain.SafetyChecks{
		HasLock:           true,
		MintRevoked:       true,
		IsHoneypot:        false,
		HasSocialLinks:    true,
		CreatorVerified:   true,
		SuspiciousCreator: false,
	}
}

func TestAssessSafety_AllChecksPass(t *testing.T) {
	report := AssessSafety(allPassChecks())

	if report.Score != 100 {
		t.Errorf("expected score 100, got %d", report.Score)
	}
	if report.Status != domain.SafetyStatusSafe {
		t.Errorf("expected SAFE, got %s", report.Status)
	}
}

func TestAssessSafety_StatusThresholds(t *testing.T) {
	tests := []struct {
		name   string
		checks domain.SafetyChecks
		score  int
		status domain.SafetyStatus
	}{
		{
			name: "no socials only",
			checks: func() domain.SafetyChecks {
				c := allPassChecks()
				c.HasSocialLinks = false
				return c
			}(),
			score:  90,
			status: domain.SafetyStatusSafe,
		},
		{
			name: "exactly safe boundary",
			checks: func() domain.SafetyChecks {
				// 100 - 30 (suspicious creator) = 70
				c := allPassChecks()
				c.SuspiciousCreator = true
				return c
			}(),
			score:  70,
			status: domain.SafetyStatusSafe,
		},
		{
			name: "suspicious band",
			checks: func() domain.SafetyChecks {
				c := allPassChecks()
				c.HasLock = false
				c.HasSocialLinks = false
				return c
			}(),
			score:  55,
			status: domain.SafetyStatusSuspicious,
		},
		{
			name: "exactly suspicious boundary",
			checks: func() domain.SafetyChecks {
				// 100 - 40 (mint) - 10 (socials) - 10 (creator) = 40
				c := allPassChecks()
				c.MintRevoked = false
				c.HasSocialLinks = false
				c.CreatorVerified = false
				return c
			}(),
			score:  40,
			status: domain.SafetyStatusSuspicious,
		},
		{
			name: "dangerous",
			checks: func() domain.SafetyChecks {
				c := allPassChecks()
				c.IsHoneypot = true
				c.MintRevoked = false
				return c
			}(),
			score:  0,
			status: domain.SafetyStatusDangerous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := AssessSafety(tt.checks)
			if report.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, report.Score)
			}
			if report.Status != tt.status {
				t.Errorf("expected status %s, got %s", tt.status, report.Status)
			}
		})
	}
}

// Safety checks all false except has_social_links: 100-35-40-10-30 = -15,
// clamped to 0, status DANGEROUS.
func TestAssessSafety_ClampedToZero(t *testing.T) {
	checks := domain.SafetyChecks{HasSocialLinks: true}

	report := AssessSafety(checks)

	if report.Score != 0 {
		t.Errorf("expected clamped score 0, got %d", report.Score)
	}
	if report.Status != domain.SafetyStatusDangerous {
		t.Errorf("expected DANGEROUS, got %s", report.Status)
	}
}

// Snapshot with 1.0 SOL virtual quote, 1e9 virtual base tokens and 1e9
// total supply: price ~1e-9 SOL, market cap ~1.0 SOL, liquidity 1.0 SOL.
func TestComputeMetrics_ReferenceScenario(t *testing.T) {
	curve := &domain.CurveState{
		VirtualSolReserves:   1 * domain.LamportsPerSOL,
		VirtualTokenReserves: 1_000_000_000 * 1_000_000, // 1e9 tokens in base units
		RealSolReserves:      0,
		RealTokenReserves:    0,
		TokenTotalSupply:     1_000_000_000 * 1_000_000,
	}

	metrics := ComputeMetrics(curve)

	if math.Abs(metrics.Price-1e-9) > 1e-15 {
		t.Errorf("expected price ~1e-9, got %g", metrics.Price)
	}
	if math.Abs(metrics.MarketCap-1.0) > 1e-6 {
		t.Errorf("expected market cap ~1.0, got %g", metrics.MarketCap)
	}
	if metrics.Liquidity != 1.0 {
		t.Errorf("expected liquidity 1.0, got %g", metrics.Liquidity)
	}
}

func TestComputeMetrics_EmptyBaseDivisorFloor(t *testing.T) {
	// virtual base fully bought out: divisor floors at 1
	curve := &domain.CurveState{
		VirtualSolReserves:   2 * domain.LamportsPerSOL,
		VirtualTokenReserves: 1_000_000,
		RealTokenReserves:    1_000_000,
		TokenTotalSupply:     1_000_000,
	}

	metrics := ComputeMetrics(curve)

	if metrics.Price != 2.0 {
		t.Errorf("expected price 2.0 with floored divisor, got %g", metrics.Price)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	website := "https://example.com"
	snap := Snapshot{
		Info: &domain.TokenInfo{
			Mint:      "mint1",
			Symbol:    "TST",
			Website:   &website,
			CreatedAt: 1700000000000,
		},
		Curve: &domain.CurveState{
			VirtualSolReserves:   30 * domain.LamportsPerSOL,
			VirtualTokenReserves: 1_073_000_000 * 1_000_000,
			TokenTotalSupply:     1_000_000_000 * 1_000_000,
		},
		MintRevoked:     true,
		CreatorVerified: true,
		Holders:         12,
	}
	now := int64(1700000100000)

	m1, s1, o1 := Evaluate(snap, now)
	m2, s2, o2 := Evaluate(snap, now)

	if m1 != m2 {
		t.Errorf("metrics not deterministic: %+v vs %+v", m1, m2)
	}
	if s1.Score != s2.Score || s1.Status != s2.Status || s1.Checks != s2.Checks {
		t.Errorf("safety not deterministic: %+v vs %+v", s1, s2)
	}
	if o1.Score != o2.Score || len(o1.Reasons) != len(o2.Reasons) {
		t.Errorf("opportunity not deterministic: %+v vs %+v", o1, o2)
	}
	if m1.Holders != 12 {
		t.Errorf("expected holders carried into metrics, got %d", m1.Holders)
	}
}

func TestAssessOpportunity_Bonuses(t *testing.T) {
	now := int64(1700000000000)

	metrics := domain.TokenMetrics{
		MarketCap: 5000, // low cap bonus
		Liquidity: 10,   // liquidity bonus
	}

	// Safe tier + low cap + liquidity + <1h freshness = 30+20+15+25 = 90
	report := AssessOpportunity(domain.SafetyStatusSafe, metrics, now-30*60*1000, now)
	if report.Score != 90 {
		t.Errorf("expected score 90, got %d (reasons %v)", report.Score, report.Reasons)
	}
	if len(report.Reasons) != 4 {
		t.Errorf("expected 4 reasons, got %v", report.Reasons)
	}

	// Suspicious tier + 3h age = 10+20+15+15 = 60
	report = AssessOpportunity(domain.SafetyStatusSuspicious, metrics, now-3*60*60*1000, now)
	if report.Score != 60 {
		t.Errorf("expected score 60, got %d (reasons %v)", report.Score, report.Reasons)
	}

	// Dangerous tier, stale, huge cap, no liquidity: no bonuses
	report = AssessOpportunity(domain.SafetyStatusDangerous, domain.TokenMetrics{MarketCap: 50000}, now-24*60*60*1000, now)
	if report.Score != 0 {
		t.Errorf("expected score 0, got %d (reasons %v)", report.Score, report.Reasons)
	}
	if len(report.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", report.Reasons)
	}
}

func TestEvaluate_CurveCompleteDropsLock(t *testing.T) {
	snap := Snapshot{
		Curve: &domain.CurveState{
			VirtualSolReserves:   30 * domain.LamportsPerSOL,
			VirtualTokenReserves: 1_000_000_000,
			TokenTotalSupply:     1_000_000_000,
			Complete:             true,
		},
		MintRevoked:     true,
		CreatorVerified: true,
	}

	_, safety, _ := Evaluate(snap, 0)

	if safety.Checks.HasLock {
		t.Error("expected HasLock=false for completed curve")
	}
	// 100 - 35 (lock) - 10 (no socials) = 55
	if safety.Score != 55 {
		t.Errorf("expected score 55, got %d", safety.Score)
	}
}
