package trailing

import (
	"github.com/raykavin/mirrortrade/core"
)

// TickOutcome is the decision produced by applying one observed price to
// the trail state
type TickOutcome int

const (
	// OutcomeHold keeps tracking without any order
	OutcomeHold TickOutcome = iota

	// OutcomeTargetRebased means the aggressive target was touched and
	// moved further up instead of closing
	OutcomeTargetRebased

	// OutcomeTargetHit closes the position at the target
	OutcomeTargetHit

	// OutcomeStopHit closes the position at the trailing stop
	OutcomeStopHit
)

// TrailState tracks the trailing levels of one open position. It is owned
// exclusively by the engine managing that position and holds after every
// tick: StopPrice == HighestPrice * (1 - stopPercent), and HighestPrice is
// monotonically non-decreasing.
type TrailState struct {
	EntryPrice   float64
	HighestPrice float64
	StopPrice    float64
	TargetPrice  float64
	LastPrice    float64
	Closed       bool
}

// NewTrailState initializes the trail levels from the filled entry price
func NewTrailState(entryPrice float64, profile core.RiskProfile) *TrailState {
	return &TrailState{
		EntryPrice:   entryPrice,
		HighestPrice: entryPrice,
		StopPrice:    entryPrice * (1 - profile.StopPercent),
		TargetPrice:  entryPrice * (1 + profile.TargetPercent),
		LastPrice:    entryPrice,
	}
}

// Tick applies one observed price to the state and returns the decision.
// The evaluation order is fixed: the trailing stop basis is ratcheted
// first, then the target is evaluated, then the stop, so a single tick can
// never trigger both.
func (s *TrailState) Tick(price float64, profile core.RiskProfile) TickOutcome {
	if s.Closed {
		return OutcomeHold
	}

	s.LastPrice = price

	// The stop only ever ratchets upward with price, never down
	if price > s.HighestPrice {
		s.HighestPrice = price
		s.StopPrice = s.HighestPrice * (1 - profile.StopPercent)
	}

	outcome := OutcomeHold
	if price >= s.TargetPrice {
		if profile.IsAggressive() {
			// Running take-profit: move the target up and keep tracking
			s.TargetPrice = price * (1 + profile.TargetPercent)
			outcome = OutcomeTargetRebased
		} else {
			s.Closed = true
			return OutcomeTargetHit
		}
	}

	if price <= s.StopPrice {
		s.Closed = true
		return OutcomeStopHit
	}

	return outcome
}
