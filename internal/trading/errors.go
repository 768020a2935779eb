// Package trading holds the decision-and-risk core: the admission gate,
// the position ledger, the trader orchestration and the exit engine.
package trading

import (
	"errors"
	"fmt"
)

// RejectReason identifies why admission turned a trade down.
type RejectReason string

const (
	ReasonBelowSafetyThreshold RejectReason = "BELOW_SAFETY_THRESHOLD"
	ReasonMarketCapOutOfRange  RejectReason = "MARKET_CAP_OUT_OF_RANGE"
	ReasonInsufficientLiq      RejectReason = "INSUFFICIENT_LIQUIDITY"
	ReasonHoldersOutOfRange    RejectReason = "HOLDERS_OUT_OF_RANGE"
	ReasonMissingSocialLinks   RejectReason = "MISSING_SOCIAL_LINKS"
	ReasonCreatorUnverified    RejectReason = "CREATOR_UNVERIFIED"
	ReasonCooldownActive       RejectReason = "COOLDOWN_ACTIVE"
	ReasonDailyCapReached      RejectReason = "DAILY_CAP_REACHED"
	ReasonOperationInFlight    RejectReason = "OPERATION_IN_FLIGHT"
)

// RejectionError is a soft admission failure: logged at info level,
// never retried by the caller that received it.
type RejectionError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("admission rejected: %s", e.Reason)
	}
	return fmt.Sprintf("admission rejected: %s (%s)", e.Reason, e.Detail)
}

func reject(reason RejectReason, format string, args ...interface{}) error {
	return &RejectionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// RejectionReason extracts the reason from an admission error, or "".
func RejectionReason(err error) RejectReason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

// ErrOverdraw marks an attempt to sell more than a position holds. This
// is a programming error: surfaced loudly, never silently swallowed.
var ErrOverdraw = errors.New("sell amount exceeds held amount")

// ErrPositionNotFound is returned for operations on unknown or closed
// positions.
var ErrPositionNotFound = errors.New("position not found")
