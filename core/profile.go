package core

// RiskProfile pairs the trailing stop-loss and take-profit percentages
// selected for a position. It is chosen once at entry and never mutated.
type RiskProfile struct {
	StopPercent   float64
	TargetPercent float64
	Label         string
}

// The two canonical risk:reward profiles. The aggressive profile keeps
// re-basing its target instead of closing on it.
var (
	ProfileConservative = RiskProfile{StopPercent: 0.01, TargetPercent: 0.02, Label: "1:2"}
	ProfileAggressive   = RiskProfile{StopPercent: 0.01, TargetPercent: 0.03, Label: "1:3"}
)

// IsAggressive reports whether the profile re-bases its target on touch
// rather than closing the position
func (p RiskProfile) IsAggressive() bool { return p.Label == ProfileAggressive.Label }
