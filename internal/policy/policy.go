package policy

import (
	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region result

// Reason tags the outcome of a Gate evaluation.
type Reason string

const (
	ReasonNoActiveIntents      Reason = "no_active_intents"
	ReasonHighestScoreSelected Reason = "highest_score_selected"
)

// Result is the pure output of Gate.Evaluate: the selected intent (if any),
// every candidate's score, and the rationale for the selection.
type Result struct {
	Selected *intent.Intent
	Scores   map[string]float64
	Reason   Reason
}

// #endregion result

// #region gate

// Gate scores active intents against system state and selects a winner.
// Evaluate is a pure function: it never mutates its inputs and repeated
// calls with identical inputs return identical output (§8 policy purity).
type Gate struct{}

// NewGate constructs a policy Gate. There is no configuration; the scoring
// formula is fixed by design.
func NewGate() *Gate {
	return &Gate{}
}

// Evaluate scores every active intent and selects the highest-scoring one,
// breaking ties by insertion order (active is expected in insertion order).
func (g *Gate) Evaluate(active []*intent.Intent, state sysstate.Snapshot) Result {
	scores := make(map[string]float64, len(active))
	for _, in := range active {
		scores[in.ID] = score(in, state)
	}

	if len(active) == 0 {
		return Result{
			Selected: nil,
			Scores:   scores,
			Reason:   ReasonNoActiveIntents,
		}
	}

	best := active[0]
	bestScore := scores[best.ID]
	for _, in := range active[1:] {
		if scores[in.ID] > bestScore {
			best = in
			bestScore = scores[in.ID]
		}
	}

	return Result{
		Selected: best,
		Scores:   scores,
		Reason:   ReasonHighestScoreSelected,
	}
}

// #endregion gate

// #region scoring

func score(in *intent.Intent, state sysstate.Snapshot) float64 {
	base := baseScore(in.IntentType, state)
	base += modeBias(in.IntentType, state.Mode)
	base -= 0.5 * float64(in.SafetyBlockCycles)
	return base
}

func baseScore(t intent.Type, state sysstate.Snapshot) float64 {
	switch t {
	case intent.TypeBatteryRecovery:
		target := sysstate.SafeExitBattery
		if state.Mode == sysstate.ModeLowPower {
			target = sysstate.LowPowerExit
		}
		return maxFloat(0, (target-state.BatteryLevel)/target) * 1000
	case intent.TypeThermalRecovery:
		return maxFloat(0, (state.Temperature-sysstate.SafeExitTemp)/sysstate.SafeExitTemp) * 1000
	case intent.TypeOrbitCorrection:
		return 100.0
	default:
		return 0
	}
}

func modeBias(t intent.Type, mode sysstate.Mode) float64 {
	if !t.IsRecovery() {
		return 0
	}
	switch mode {
	case sysstate.ModeLowPower:
		return 50.0
	case sysstate.ModeNominal:
		return -200.0
	default:
		return 0
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// #endregion scoring
