package safety

import (
	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region reasons

// Reason enumerates the block reasons the gate can return. The string
// payload is only present at the telemetry boundary; internally Reason is a
// closed enum.
type Reason string

const (
	ReasonNone Reason = ""

	ReasonBatteryDepleted        Reason = "battery_depleted"
	ReasonTemperatureMaxExceeded Reason = "temperature_max_exceeded"
	ReasonPositionBoundsExceeded Reason = "position_bounds_exceeded"

	ReasonSafeModeMissionBlocked       Reason = "safe_mode_mission_blocked"
	ReasonLowPowerEnergyIntensiveBlock Reason = "low_power_energy_intensive_blocked"

	ReasonBatteryUnsafeExecution Reason = "battery_unsafe_execution_blocked"
	ReasonThermalUnsafeExecution Reason = "thermal_unsafe_execution_blocked"
)

// #endregion reasons

// #region domain-map

// domainMap lists the physical domains each intent type affects. An
// unrecognized type maps to no domains, which can never trigger a
// domain-aware block (§7 "programmer errors").
var domainMap = map[intent.Type][]string{
	intent.TypeOrbitCorrection: {"battery", "thermal"},
	intent.TypeBatteryRecovery: {"battery"},
	intent.TypeThermalRecovery: {"thermal"},
}

// energyIntensive is the set of mission intent types forbidden in LOW_POWER.
var energyIntensive = map[intent.Type]bool{
	intent.TypeOrbitCorrection: true,
}

// #endregion domain-map

// #region decision

// Decision is the pure output of Gate.Evaluate.
type Decision struct {
	Blocked         bool
	Reason          Reason
	CriticalDomains []string
}

// #endregion decision

// #region gate

// Gate evaluates whether a candidate intent may execute against the current
// system state. Evaluate never mutates its inputs.
type Gate struct{}

// NewGate constructs a safety Gate. There is no configuration; thresholds
// are fixed by design (sysstate constants).
func NewGate() *Gate {
	return &Gate{}
}

// Evaluate runs the full procedure: critical detection, hard invariants,
// violated-domain detection, mode restrictions, and domain-aware blocking,
// in that fixed order. candidate may be nil for an idle evaluation.
func (g *Gate) Evaluate(candidate *intent.Intent, state sysstate.Snapshot) Decision {
	var critical []string
	if state.BatteryLevel <= sysstate.CriticalBattery {
		critical = append(critical, "battery")
	}
	if state.Temperature >= sysstate.CriticalTemp {
		critical = append(critical, "thermal")
	}

	if state.BatteryLevel <= sysstate.MinBattery {
		return Decision{Blocked: true, Reason: ReasonBatteryDepleted, CriticalDomains: critical}
	}
	if state.Temperature >= sysstate.MaxTemp {
		return Decision{Blocked: true, Reason: ReasonTemperatureMaxExceeded, CriticalDomains: critical}
	}
	if state.Position < sysstate.PositionMin || state.Position > sysstate.PositionMax {
		return Decision{Blocked: true, Reason: ReasonPositionBoundsExceeded, CriticalDomains: critical}
	}

	var violated []string
	if state.BatteryLevel <= sysstate.SafeEntryBattery {
		violated = append(violated, "battery")
	}
	if state.Temperature >= sysstate.SafeEntryTemp {
		violated = append(violated, "thermal")
	}

	if candidate == nil {
		return Decision{Blocked: false, CriticalDomains: critical}
	}

	if state.Mode == sysstate.ModeSafe && !candidate.IntentType.IsRecovery() {
		return Decision{Blocked: true, Reason: ReasonSafeModeMissionBlocked, CriticalDomains: critical}
	}
	if state.Mode == sysstate.ModeLowPower && energyIntensive[candidate.IntentType] {
		return Decision{Blocked: true, Reason: ReasonLowPowerEnergyIntensiveBlock, CriticalDomains: critical}
	}

	affected := domainMap[candidate.IntentType]
	for _, domain := range violated {
		if !contains(affected, domain) {
			continue
		}
		if candidate.IntentType.IsRecovery() {
			continue
		}
		return Decision{Blocked: true, Reason: domainBlockReason(domain), CriticalDomains: critical}
	}

	return Decision{Blocked: false, CriticalDomains: critical}
}

func domainBlockReason(domain string) Reason {
	switch domain {
	case "battery":
		return ReasonBatteryUnsafeExecution
	case "thermal":
		return ReasonThermalUnsafeExecution
	default:
		return ReasonNone
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// #endregion gate
