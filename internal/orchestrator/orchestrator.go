package orchestrator

import (
	"log"

	"github.com/danielpatrickdp/orbitctl/internal/config"
	"github.com/danielpatrickdp/orbitctl/internal/engine"
	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/metrics"
	"github.com/danielpatrickdp/orbitctl/internal/policy"
	"github.com/danielpatrickdp/orbitctl/internal/safety"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
	"github.com/danielpatrickdp/orbitctl/internal/telemetry"
)

// #region recovery-type-map

// recoveryTypeForDomain maps a critical/violated physical domain to the
// recovery intent type that addresses it.
var recoveryTypeForDomain = map[string]intent.Type{
	"battery": intent.TypeBatteryRecovery,
	"thermal": intent.TypeThermalRecovery,
}

// #endregion recovery-type-map

// #region orchestrator-struct

// Orchestrator is the cycle driver. It composes IntentStore, PolicyGate,
// SafetyGate, and Engine in a fixed order per cycle, owns the recovery-lock
// and pending-injection state, and emits one telemetry frame per cycle.
type Orchestrator struct {
	cfg config.Config

	store *intent.Store
	state *sysstate.State

	policyGate *policy.Gate
	safetyGate *safety.Gate
	engine     *engine.Engine

	builder *telemetry.Builder
	bus     *telemetry.Bus
	metrics *metrics.Recorder

	lastSelected          *intent.Intent
	pendingSafeInjections map[intent.Type]bool
}

// #endregion orchestrator-struct

// #region constructor

// New constructs a fully wired Orchestrator with a fresh IntentStore and
// initial sysstate.State. rec may be nil to disable metrics entirely.
func New(cfg config.Config, rec *metrics.Recorder) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		store:      intent.NewStore(),
		state:      sysstate.New(),
		policyGate: policy.NewGate(),
		safetyGate: safety.NewGate(),
		engine:     engine.New(rec),
		builder:    telemetry.NewBuilder(),
		bus:        telemetry.NewBus(),
		metrics:    rec,
	}
}

// #endregion constructor

// #region accessors

// Store exposes the intent store for ingress (submitting intents) and test
// seeding.
func (o *Orchestrator) Store() *intent.Store { return o.store }

// State exposes the mutable system state for scenario seeding before the
// first cycle runs. Callers must not mutate it once Run has been called.
func (o *Orchestrator) State() *sysstate.State { return o.state }

// Bus exposes the telemetry bus for observers.
func (o *Orchestrator) Bus() *telemetry.Bus { return o.bus }

// #endregion accessors

// #region run

// Run advances the engine by cycles iterations synchronously and returns the
// frames emitted during this call (also retrievable in full via Bus).
func (o *Orchestrator) Run(cycles int) []telemetry.Frame {
	frames := make([]telemetry.Frame, 0, cycles)
	for i := 0; i < cycles; i++ {
		frames = append(frames, o.runCycle())
	}
	return frames
}

// #endregion run

// #region cycle

func (o *Orchestrator) runCycle() telemetry.Frame {
	o.applyStagedInjections()

	if !o.cfg.Enabled {
		return o.runDisabledCycle()
	}

	active := o.store.ListActive()
	snapshot := o.state.Snapshot()
	policyResult := o.policyGate.Evaluate(active, snapshot)

	selection := policyResult.Selected
	safetyFirst := o.safetyGate.Evaluate(selection, snapshot)

	overrideApplied := false
	if len(safetyFirst.CriticalDomains) > 0 {
		domain := safetyFirst.CriticalDomains[0]
		if target := o.overrideTarget(domain); target != nil {
			if selection == nil || target.ID != selection.ID {
				selection = target
				overrideApplied = true
			}
		}
	}

	lockApplied := false
	if !overrideApplied && o.lastSelected != nil && o.lastSelected.IntentType.IsRecovery() &&
		len(safetyFirst.CriticalDomains) == 0 &&
		o.lastSelected.ConsecutiveSelectedCycles < o.lockCycles() {
		selection = o.lastSelected
		lockApplied = true
	}

	// The frame reports the finalized selection (after override and lock),
	// not policy's raw pick.
	policyResult.Selected = selection

	safetyFinal := o.safetyGate.Evaluate(selection, snapshot)

	o.metrics.CycleRun()
	if overrideApplied {
		o.metrics.CriticalOverride()
		log.Printf("[ORCH] critical override -> %s", selection.IntentType)
	}
	if lockApplied {
		o.metrics.RecoveryLock()
		log.Printf("[ORCH] recovery lock holds -> %s", selection.IntentType)
	}

	if safetyFinal.Blocked {
		if selection != nil {
			selection.SafetyBlockCycles++
		}
		o.metrics.SafetyBlock()
		log.Printf("[SAFETY] blocked: %s", safetyFinal.Reason)
		o.restageSafeInjections()

		frame := o.builder.Build(telemetry.BuildInput{
			State:           o.state.Snapshot(),
			PolicyResult:    policyResult,
			SafetyDecision:  safetyFinal,
			OverrideApplied: overrideApplied,
			LockApplied:     lockApplied,
		})
		return o.bus.Append(frame)
	}

	var executedID *string
	executed, _ := o.engine.Apply(selection, o.state, o.store)
	if executed {
		id := selection.ID
		executedID = &id
	}

	o.updateLockTracking(selection)
	o.store.ArchiveCompleted()
	o.restageSafeInjections()

	frame := o.builder.Build(telemetry.BuildInput{
		State:            o.state.Snapshot(),
		PolicyResult:     policyResult,
		SafetyDecision:   safetyFinal,
		ExecutedIntentID: executedID,
		OverrideApplied:  overrideApplied,
		LockApplied:      lockApplied,
	})
	return o.bus.Append(frame)
}

// runDisabledCycle is the ARBITER_ENABLED=false path: selection logic is
// entirely skipped (forced to none), but mode advance (via a no-candidate
// Engine.Apply), lock-clearing, archival, and telemetry/metrics still run.
func (o *Orchestrator) runDisabledCycle() telemetry.Frame {
	executed, _ := o.engine.Apply(nil, o.state, o.store)
	_ = executed

	o.updateLockTracking(nil)
	o.store.ArchiveCompleted()
	o.restageSafeInjections()

	o.metrics.CycleRun()

	frame := o.builder.Build(telemetry.BuildInput{
		State: o.state.Snapshot(),
		PolicyResult: policy.Result{
			Selected: nil,
			Scores:   map[string]float64{},
			Reason:   policy.ReasonNoActiveIntents,
		},
		SafetyDecision: safety.Decision{Blocked: false},
	})
	return o.bus.Append(frame)
}

// #endregion cycle

// #region staging

// applyStagedInjections implements step 1: for each tag staged last cycle,
// submit a fresh intent of that type if none is currently active.
func (o *Orchestrator) applyStagedInjections() {
	for t := range o.pendingSafeInjections {
		if o.store.GetActiveByType(t) == nil {
			in := o.store.Submit(t)
			log.Printf("[ORCH] staged SAFE injection: submitted %s (%s)", t, in.ID)
		}
	}
}

// restageSafeInjections implements step 2: recompute the injection set that
// applyStagedInjections will consume at the start of the *next* cycle, from
// the mode and readings resulting from this cycle (run at cycle end rather
// than cycle start so it reflects any mode transition this cycle caused).
func (o *Orchestrator) restageSafeInjections() {
	next := make(map[intent.Type]bool)
	if o.state.Mode == sysstate.ModeSafe {
		if o.state.BatteryLevel <= sysstate.SafeEntryBattery {
			next[intent.TypeBatteryRecovery] = true
		}
		if o.state.Temperature >= sysstate.SafeEntryTemp {
			next[intent.TypeThermalRecovery] = true
		}
	}
	o.pendingSafeInjections = next
}

// #endregion staging

// #region override

// overrideTarget locates an active recovery intent for domain, or submits a
// fresh one, implementing step 5's "locate ... or submit one."
func (o *Orchestrator) overrideTarget(domain string) *intent.Intent {
	t, ok := recoveryTypeForDomain[domain]
	if !ok {
		return nil
	}
	if existing := o.store.GetActiveByType(t); existing != nil {
		return existing
	}
	return o.store.Submit(t)
}

// #endregion override

// #region lock

func (o *Orchestrator) lockCycles() int {
	if o.cfg.RecoveryLockCycles > 0 {
		return o.cfg.RecoveryLockCycles
	}
	return 3
}

// updateLockTracking implements step 10.
func (o *Orchestrator) updateLockTracking(selection *intent.Intent) {
	if selection == nil {
		o.lastSelected = nil
		return
	}
	if o.lastSelected != nil && o.lastSelected.ID == selection.ID {
		selection.ConsecutiveSelectedCycles++
	} else {
		selection.ConsecutiveSelectedCycles = 1
	}
	o.lastSelected = selection
}

// #endregion lock
