package orchestrator

import (
	"testing"

	"github.com/danielpatrickdp/orbitctl/internal/config"
	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

func newTestOrchestrator() *Orchestrator {
	return New(config.Config{Enabled: true, RecoveryLockCycles: 3}, nil)
}

func TestNominalOrbitCorrectionConverges(t *testing.T) {
	orch := newTestOrchestrator()
	orch.Store().Submit(intent.TypeOrbitCorrection, intent.WithGoalReference(3.0), intent.WithGoalMetric("position"))

	frames := orch.Run(6)

	last := frames[len(frames)-1]
	if last.Data.State.Position != 3.0 {
		t.Fatalf("expected position 3.0 after 6 cycles, got %v", last.Data.State.Position)
	}
}

func TestCriticalOverrideSubmitsAndSelectsRecovery(t *testing.T) {
	orch := newTestOrchestrator()
	orch.State().BatteryLevel = 4.0 // <= CRITICAL_BATTERY
	orch.Store().Submit(intent.TypeOrbitCorrection)

	frames := orch.Run(1)
	frame := frames[0]

	if !frame.Data.Execution.OverrideApplied {
		t.Fatal("expected override_applied=true")
	}
	if frame.Data.Policy.SelectedIntentID == nil {
		t.Fatal("expected a selection")
	}

	selected := orch.Store().Get(*frame.Data.Policy.SelectedIntentID)
	if selected == nil || selected.IntentType != intent.TypeBatteryRecovery {
		t.Fatalf("expected battery_recovery selected by override, got %+v", selected)
	}
}

func TestSafeInjectionStagesNextCycle(t *testing.T) {
	orch := newTestOrchestrator()
	orch.State().BatteryLevel = 4.0
	orch.Store().Submit(intent.TypeOrbitCorrection)

	orch.Run(1)

	if len(orch.pendingSafeInjections) == 0 || !orch.pendingSafeInjections[intent.TypeBatteryRecovery] {
		t.Fatalf("expected battery_recovery staged for next cycle, got %v", orch.pendingSafeInjections)
	}
	if orch.State().Mode != sysstate.ModeSafe {
		t.Fatalf("expected SAFE mode after cycle 1, got %s", orch.State().Mode)
	}
}

func TestHardInvariantBlockPreventsMutation(t *testing.T) {
	orch := newTestOrchestrator()
	orch.State().Temperature = 150.1
	orch.Store().Submit(intent.TypeOrbitCorrection)

	before := *orch.State()
	frames := orch.Run(1)
	frame := frames[0]

	if !frame.Data.Safety.Blocked {
		t.Fatal("expected safety.blocked=true")
	}
	if frame.Data.Safety.Reason == nil || *frame.Data.Safety.Reason != "temperature_max_exceeded" {
		t.Fatalf("expected temperature_max_exceeded, got %v", frame.Data.Safety.Reason)
	}
	if frame.Data.Execution.ExecutedIntentID != nil {
		t.Fatal("expected no executed intent")
	}
	after := *orch.State()
	if before != after {
		t.Fatalf("expected no state mutation, before=%+v after=%+v", before, after)
	}
}

func TestRecoveryLockHoldsForThreeCycles(t *testing.T) {
	orch := newTestOrchestrator()
	orch.State().BatteryLevel = 4.0
	br := orch.Store().Submit(intent.TypeBatteryRecovery)

	orch.Run(1) // selects br, consecutive=1

	for i := 0; i < 2; i++ {
		frames := orch.Run(1)
		frame := frames[0]
		if frame.Data.Policy.SelectedIntentID == nil || *frame.Data.Policy.SelectedIntentID != br.ID {
			t.Fatalf("expected recovery lock to hold battery_recovery at cycle %d, got %v", i, frame.Data.Policy.SelectedIntentID)
		}
	}
}

func TestEmptyActiveSetIsIdleCycle(t *testing.T) {
	orch := newTestOrchestrator()
	frames := orch.Run(1)
	frame := frames[0]

	if frame.Data.Policy.SelectedIntentID != nil {
		t.Fatal("expected no selection for empty active set")
	}
	if frame.Data.Safety.Blocked {
		t.Fatal("expected idle cycle to not be blocked")
	}
	if frame.Data.Execution.ExecutedIntentID != nil {
		t.Fatal("expected no execution for idle cycle")
	}
}

func TestKillSwitchForcesNoSelection(t *testing.T) {
	orch := New(config.Config{Enabled: false, RecoveryLockCycles: 3}, nil)
	orch.Store().Submit(intent.TypeOrbitCorrection)

	frames := orch.Run(1)
	frame := frames[0]

	if frame.Data.Policy.SelectedIntentID != nil {
		t.Fatal("expected disabled orchestrator to never select")
	}
	if frame.Data.Execution.ExecutedIntentID != nil {
		t.Fatal("expected disabled orchestrator to never execute")
	}
}

func TestSafeModeBlocksMissionIntentAfterInjection(t *testing.T) {
	orch := newTestOrchestrator()
	orch.State().BatteryLevel = 4.0
	orch.Store().Submit(intent.TypeOrbitCorrection)

	orch.Run(1) // mode -> SAFE, battery_recovery submitted via override
	frames := orch.Run(1)
	frame := frames[0]

	// battery_recovery should dominate policy scoring in SAFE mode; confirm
	// the mission intent never becomes the selection while SAFE persists.
	if frame.Data.Policy.SelectedIntentID != nil {
		selected := orch.Store().Get(*frame.Data.Policy.SelectedIntentID)
		if selected != nil && selected.IntentType == intent.TypeOrbitCorrection {
			t.Fatal("expected orbit_correction to not be selected while in SAFE mode")
		}
	}
}

func TestArchivalRemovesCompletedIntent(t *testing.T) {
	orch := newTestOrchestrator()
	in := orch.Store().Submit(intent.TypeOrbitCorrection, intent.WithGoalReference(0.5), intent.WithGoalMetric("position"))

	orch.Run(1)

	if orch.Store().Get(in.ID) != nil {
		t.Fatal("expected completed intent to be archived")
	}
}
