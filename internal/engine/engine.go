package engine

import (
	"log"

	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/metrics"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region engine-struct

// Engine is the only component that mutates sysstate.State. It advances
// mode hysteresis, applies the deterministic power model, applies mission
// or recovery physics, and marks intents COMPLETED when their goal
// condition holds.
type Engine struct {
	metrics *metrics.Recorder
}

// New constructs an Engine. rec may be nil; every metrics call is then a
// no-op.
func New(rec *metrics.Recorder) *Engine {
	return &Engine{metrics: rec}
}

// #endregion engine-struct

// #region apply

// Apply runs one cycle's worth of mutation against state: mode update
// (step A, unconditional), then, if candidate is non-nil, physics and the
// candidate's completion check (step C). store is used to transition the
// candidate's status (ACTIVE, and COMPLETED on goal satisfaction); store may
// be nil only in tests that do not care about status transitions.
//
// A candidate already in a terminal status (COMPLETED or DENIED) is treated
// as a no-op after the mode update.
//
// Apply returns whether a candidate was processed (false if candidate was
// nil or terminal) and a post-mutation InvariantReport.
func (e *Engine) Apply(candidate *intent.Intent, state *sysstate.State, store *intent.Store) (bool, InvariantReport) {
	e.updateMode(state)

	if candidate == nil || candidate.Status == intent.StatusCompleted || candidate.Status == intent.StatusDenied {
		return false, checkInvariants(state)
	}

	state.CycleCount++
	candidate.EvaluationCycles++
	if store != nil {
		store.MarkActive(candidate)
	} else {
		candidate.Status = intent.StatusActive
	}

	if state.Mode == sysstate.ModeSafe {
		e.applyPowerModel(state)
		e.applyRecoveryPhysics(candidate.IntentType, state)
	} else {
		if candidate.IntentType == intent.TypeOrbitCorrection {
			e.applyOrbitPhysics(state)
		}
		e.applyPowerModel(state)
		if candidate.IntentType.IsRecovery() {
			e.applyRecoveryPhysics(candidate.IntentType, state)
		}
	}

	if completionReached(candidate, *state) {
		if store != nil {
			store.MarkCompleted(candidate)
		} else {
			candidate.Status = intent.StatusCompleted
		}
		log.Printf("[PHYSICS] intent %s (%s) completed", candidate.ID, candidate.IntentType)
	}

	return true, checkInvariants(state)
}

// #endregion apply

// #region mode-update

// updateMode runs the four hysteresis clauses top-down; the first matching
// clause wins (§4.4 step A).
func (e *Engine) updateMode(state *sysstate.State) {
	prev := state.Mode

	switch {
	case state.BatteryLevel <= sysstate.SafeEntryBattery || state.Temperature >= sysstate.SafeEntryTemp:
		state.Mode = sysstate.ModeSafe
	case state.Mode == sysstate.ModeSafe &&
		state.BatteryLevel >= sysstate.SafeExitBattery-sysstate.SafeExitEpsilon &&
		state.Temperature <= sysstate.SafeExitTemp+sysstate.SafeExitTempEpsilon:
		state.Mode = sysstate.ModeNominal
	case state.BatteryLevel <= sysstate.LowPowerEntry:
		state.Mode = sysstate.ModeLowPower
	case state.Mode == sysstate.ModeLowPower && state.BatteryLevel >= sysstate.LowPowerExit-sysstate.LowPowerExitEpsilon:
		state.Mode = sysstate.ModeNominal
	}

	if state.Mode != prev {
		log.Printf("[MODE] %s -> %s (battery=%.2f temp=%.2f)", prev, state.Mode, state.BatteryLevel, state.Temperature)
		e.metrics.ModeTransition(state.Mode)
	}
	e.metrics.SetCurrentMode(state.Mode)
}

// #endregion mode-update

// #region power-model

func (e *Engine) applyPowerModel(state *sysstate.State) {
	p := state.CycleCount % sysstate.EclipsePeriod
	inSunlight := p < sysstate.EclipsePeriod-sysstate.EclipseDuration

	solar := 0.0
	if inSunlight {
		solar = sysstate.SolarChargeRate
	}
	charge := minFloat(sysstate.MaxChargeRate, solar) * sysstate.ChargeEfficiency
	state.BatteryLevel = maxFloat(sysstate.MinBattery, state.BatteryLevel+charge-sysstate.BaseLoad)
}

// #endregion power-model

// #region orbit-physics

func (e *Engine) applyOrbitPhysics(state *sysstate.State) {
	state.Position += 0.5
	state.BatteryLevel -= 1.0
	state.Temperature += 2.0
}

// #endregion orbit-physics

// #region recovery-physics

func (e *Engine) applyRecoveryPhysics(t intent.Type, state *sysstate.State) {
	switch t {
	case intent.TypeBatteryRecovery:
		target := batteryRecoveryTarget(*state)
		deficit := target - state.BatteryLevel
		if deficit > 0 {
			state.BatteryLevel = minFloat(target, state.BatteryLevel+0.1*deficit)
		}
	case intent.TypeThermalRecovery:
		excess := state.Temperature - sysstate.SafeExitTemp
		if excess > 0 {
			state.Temperature -= 0.1 * excess
		}
	}
}

// batteryRecoveryTarget applies the mode-dependent target selection rule
// shared by the recovery physics step and the completion check.
func batteryRecoveryTarget(state sysstate.State) float64 {
	switch state.Mode {
	case sysstate.ModeSafe:
		return sysstate.SafeExitBattery
	case sysstate.ModeLowPower:
		return sysstate.LowPowerExit
	default:
		if state.BatteryLevel < sysstate.LowPowerExit {
			return sysstate.LowPowerExit
		}
		return sysstate.SafeExitBattery
	}
}

// #endregion recovery-physics

// #region completion

func completionReached(in *intent.Intent, state sysstate.State) bool {
	switch in.IntentType {
	case intent.TypeOrbitCorrection:
		goal := 3.0
		if in.Goal.Metric == "position" && in.Goal.HasRef {
			goal = in.Goal.Reference
		}
		return state.Position >= goal
	case intent.TypeBatteryRecovery:
		return state.BatteryLevel >= batteryRecoveryTarget(state)
	case intent.TypeThermalRecovery:
		return state.Temperature <= sysstate.SafeExitTemp+sysstate.SafeExitTempEpsilon
	default:
		return false
	}
}

// #endregion completion

// #region invariants

func checkInvariants(state *sysstate.State) InvariantReport {
	checks := []InvariantCheck{
		{
			Name: "battery_floor",
			Pass: state.BatteryLevel >= sysstate.MinBattery,
			Detail: "battery_level must be >= MIN_BATTERY",
		},
		{
			Name: "temperature_ceiling",
			Pass: state.Temperature <= sysstate.MaxTemp,
			Detail: "temperature must be <= MAX_TEMP",
		},
		{
			Name: "position_bounds",
			Pass: state.Position >= sysstate.PositionMin && state.Position <= sysstate.PositionMax,
			Detail: "position must be within [POSITION_MIN, POSITION_MAX]",
		},
	}

	report := InvariantReport{Checks: checks}
	for _, c := range checks {
		if !c.Pass {
			report.Reason = c.Name
			break
		}
	}
	return report
}

// #endregion invariants

// #region numeric-helpers

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// #endregion numeric-helpers
