package intent

import "time"

// #region intent-type

// Type is a closed enum of intent kinds. The "_recovery" suffix is
// semantically significant: safety.Gate keys off it to exempt recovery
// intents from mode restrictions, and orchestrator.Orchestrator keys off it
// to subject them to the recovery lock.
type Type string

const (
	TypeOrbitCorrection  Type = "orbit_correction"
	TypeBatteryRecovery  Type = "battery_recovery"
	TypeThermalRecovery  Type = "thermal_recovery"
)

// IsRecovery reports whether t is a recovery intent by the "_recovery" suffix
// convention. Any unrecognized type that happens to carry the suffix is still
// treated as a recovery intent; this mirrors the design's tolerance for
// extensible intent types (§3).
func (t Type) IsRecovery() bool {
	const suffix = "_recovery"
	return len(t) > len(suffix) && string(t)[len(t)-len(suffix):] == suffix
}

// Domain returns the physical domain a recovery type targets, or "" if t is
// not a "<domain>_recovery" type.
func (t Type) Domain() string {
	if !t.IsRecovery() {
		return ""
	}
	return string(t)[:len(t)-len("_recovery")]
}

// #endregion intent-type

// #region status

// Status tracks an intent's position in the PENDING → ACTIVE → {COMPLETED,
// DENIED} lifecycle DAG. Transitions are monotonic; there is no path back to
// an earlier status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusDenied    Status = "DENIED"
)

// #endregion status

// #region goal

// Goal is the optional outcome descriptor a StateEngine completion check
// interprets. All fields are optional; a zero Goal means "no explicit goal,
// use the type's default."
type Goal struct {
	Target    string
	Reference float64
	HasRef    bool
	Metric    string
	Tolerance float64
}

// #endregion goal

// #region intent

// Intent is a durable, outcome-oriented record of a desired change to
// sysstate.State. intent_id is opaque and immutable once assigned.
type Intent struct {
	ID          string
	IntentType  Type
	CreatedAt   time.Time
	LastUpdated time.Time

	Goal Goal

	Status Status

	EvaluationCycles         int
	SafetyBlockCycles        int
	ConsecutiveSelectedCycles int
	StableNominalCycles      int

	BlockReason string
}

// #endregion intent
