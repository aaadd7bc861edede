package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region recorder

// Recorder wraps a small set of prometheus collectors tracking cycle-level
// orchestration events. It is registered against a private
// prometheus.Registry owned by the caller; this package never touches the
// default global registry and never exposes an HTTP handler (serving
// /metrics is dashboard territory, out of scope per the spec).
//
// Every method is nil-safe: calling them on a nil *Recorder is a no-op, so
// Orchestrator and StateEngine can hold an optional recorder without a
// branch at every call site.
type Recorder struct {
	cyclesRun          prometheus.Counter
	safetyBlocks       prometheus.Counter
	criticalOverrides  prometheus.Counter
	recoveryLocks      prometheus.Counter
	modeTransitions    *prometheus.CounterVec
	currentMode        *prometheus.GaugeVec
}

// #endregion recorder

// #region constructor

// NewRecorder creates and registers collectors against reg. reg must be a
// registry the caller owns (e.g. prometheus.NewRegistry()); this function
// never touches prometheus.DefaultRegisterer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		cyclesRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbitctl_cycles_run_total",
			Help: "Total orchestration cycles executed.",
		}),
		safetyBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbitctl_safety_blocks_total",
			Help: "Total cycles where the finalized selection was safety-blocked.",
		}),
		criticalOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbitctl_critical_overrides_total",
			Help: "Total cycles where a critical-domain override changed the selection.",
		}),
		recoveryLocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbitctl_recovery_lock_activations_total",
			Help: "Total cycles where the recovery lock forced a selection.",
		}),
		modeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitctl_mode_transitions_total",
			Help: "Total mode transitions, labeled by the destination mode.",
		}, []string{"mode"}),
		currentMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orbitctl_current_mode",
			Help: "1 for the satellite's current mode, 0 otherwise, labeled by mode.",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		r.cyclesRun,
		r.safetyBlocks,
		r.criticalOverrides,
		r.recoveryLocks,
		r.modeTransitions,
		r.currentMode,
	)
	return r
}

// #endregion constructor

// #region observers

// CycleRun increments the cycles-run counter. Called once per orchestration
// cycle, regardless of outcome.
func (r *Recorder) CycleRun() {
	if r == nil {
		return
	}
	r.cyclesRun.Inc()
}

// SafetyBlock increments the safety-blocks counter.
func (r *Recorder) SafetyBlock() {
	if r == nil {
		return
	}
	r.safetyBlocks.Inc()
}

// CriticalOverride increments the critical-override counter.
func (r *Recorder) CriticalOverride() {
	if r == nil {
		return
	}
	r.criticalOverrides.Inc()
}

// RecoveryLock increments the recovery-lock counter.
func (r *Recorder) RecoveryLock() {
	if r == nil {
		return
	}
	r.recoveryLocks.Inc()
}

// ModeTransition increments the per-mode transition counter for the
// destination mode.
func (r *Recorder) ModeTransition(mode sysstate.Mode) {
	if r == nil {
		return
	}
	r.modeTransitions.WithLabelValues(string(mode)).Inc()
}

// SetCurrentMode sets the current-mode gauge to 1 for mode and 0 for every
// other known mode.
func (r *Recorder) SetCurrentMode(mode sysstate.Mode) {
	if r == nil {
		return
	}
	for _, m := range []sysstate.Mode{sysstate.ModeNominal, sysstate.ModeLowPower, sysstate.ModeSafe} {
		v := 0.0
		if m == mode {
			v = 1.0
		}
		r.currentMode.WithLabelValues(string(m)).Set(v)
	}
}

// #endregion observers
