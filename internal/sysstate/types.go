package sysstate

// #region mode

// Mode is the coarse operational state of the satellite.
type Mode string

const (
	ModeNominal  Mode = "NOMINAL"
	ModeLowPower Mode = "LOW_POWER"
	ModeSafe     Mode = "SAFE"
)

// #endregion mode

// #region thresholds

// Physical and policy thresholds, fixed by the control design.
const (
	PositionMin = -10.0
	PositionMax = 10.0
	MinBattery  = 0.0
	MaxTemp     = 150.0

	SafeEntryBattery    = 10.0
	SafeExitBattery     = 20.0
	SafeExitEpsilon     = 0.5
	SafeEntryTemp       = 120.0
	SafeExitTemp        = 100.0
	SafeExitTempEpsilon = 1.0

	LowPowerEntry       = 25.0
	LowPowerExit        = 30.0
	LowPowerExitEpsilon = 0.5

	CriticalBattery = 5.0
	CriticalTemp    = 140.0
)

// Power model constants.
const (
	BaseLoad         = 0.6
	SolarChargeRate  = 1.2
	MaxChargeRate    = 1.5
	ChargeEfficiency = 0.95
	EclipsePeriod    = 20
	EclipseDuration  = 6
)

// #endregion thresholds

// #region state

// State is the mutable physical record of the satellite. Only engine.Engine
// mutates it; every other component sees a Snapshot.
type State struct {
	Position     float64
	BatteryLevel float64
	Temperature  float64
	Mode         Mode
	CycleCount   int64
}

// New returns the initial state per the design's starting values.
func New() *State {
	return &State{
		Position:     0.0,
		BatteryLevel: 100.0,
		Temperature:  25.0,
		Mode:         ModeNominal,
		CycleCount:   0,
	}
}

// Snapshot is an immutable value copy of State, safe to hand to pure
// components (policy, safety) and to telemetry.
type Snapshot struct {
	Position     float64
	BatteryLevel float64
	Temperature  float64
	Mode         Mode
	CycleCount   int64
}

// Snapshot takes a value-copy projection of the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Position:     s.Position,
		BatteryLevel: s.BatteryLevel,
		Temperature:  s.Temperature,
		Mode:         s.Mode,
		CycleCount:   s.CycleCount,
	}
}

// #endregion state
