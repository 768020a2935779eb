package domain

// SafetyStatus classifies a token by its safety score.
type SafetyStatus string

const (
	SafetyStatusSafe       SafetyStatus = "SAFE"
	SafetyStatusSuspicious SafetyStatus = "SUSPICIOUS"
	SafetyStatusDangerous  SafetyStatus = "DANGEROUS"
)

// SafetyChecks holds the individual safety check results.
type SafetyChecks struct {
	HasLock           bool // liquidity locked (active bonding curve)
	MintRevoked       bool // mint authority revoked
	IsHoneypot        bool // sells blocked by token program
	HasSocialLinks    bool // any of twitter/telegram/website present
	CreatorVerified   bool // creator passed verification
	SuspiciousCreator bool // creator on a blacklist
}

// SafetyReport is the scored outcome of the safety checks.
// Score starts at 100 and fixed penalties are subtracted per failed
// check, clamped to [0, 100].
type SafetyReport struct {
	Status SafetyStatus
	Score  int // 0..100
	Checks SafetyChecks
}
