package domain

// OpportunityReport scores how attractive a launch is as an entry.
// Bonuses are additive, capped at 100; each applied bonus appends a
// human-readable reason in a fixed order.
type OpportunityReport struct {
	Score   int // 0..100
	Reasons []string
}
