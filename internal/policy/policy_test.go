package policy

import (
	"testing"

	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

func newIntent(t intent.Type) *intent.Intent {
	return &intent.Intent{ID: string(t) + "-id", IntentType: t, Status: intent.StatusPending}
}

func TestEvaluateEmptyActiveSet(t *testing.T) {
	g := NewGate()
	result := g.Evaluate(nil, sysstate.Snapshot{Mode: sysstate.ModeNominal})

	if result.Selected != nil {
		t.Fatal("expected no selection on empty active set")
	}
	if result.Reason != ReasonNoActiveIntents {
		t.Fatalf("expected no_active_intents, got %s", result.Reason)
	}
}

func TestEvaluateSelectsHighestScore(t *testing.T) {
	g := NewGate()
	orbit := newIntent(intent.TypeOrbitCorrection)
	battery := newIntent(intent.TypeBatteryRecovery)

	state := sysstate.Snapshot{Mode: sysstate.ModeSafe, BatteryLevel: 1.0}
	result := g.Evaluate([]*intent.Intent{orbit, battery}, state)

	if result.Selected == nil || result.Selected.ID != battery.ID {
		t.Fatalf("expected battery_recovery to win on near-empty battery, got %+v", result.Selected)
	}
	if result.Reason != ReasonHighestScoreSelected {
		t.Fatalf("expected highest_score_selected, got %s", result.Reason)
	}
}

func TestEvaluateTiesBrokenByInsertionOrder(t *testing.T) {
	g := NewGate()
	a := newIntent(intent.TypeOrbitCorrection)
	a.ID = "a"
	b := newIntent(intent.TypeOrbitCorrection)
	b.ID = "b"

	state := sysstate.Snapshot{Mode: sysstate.ModeNominal}
	result := g.Evaluate([]*intent.Intent{a, b}, state)

	if result.Selected.ID != "a" {
		t.Fatalf("expected first intent to win tie, got %s", result.Selected.ID)
	}
}

func TestModeBiasFavorsRecoveryInLowPower(t *testing.T) {
	g := NewGate()
	orbit := newIntent(intent.TypeOrbitCorrection)
	thermal := newIntent(intent.TypeThermalRecovery)

	state := sysstate.Snapshot{Mode: sysstate.ModeLowPower, Temperature: 200}
	result := g.Evaluate([]*intent.Intent{orbit, thermal}, state)

	if result.Selected.ID != thermal.ID {
		t.Fatalf("expected thermal_recovery to win with mode bias, got %s", result.Selected.ID)
	}
	if result.Scores[thermal.ID] <= result.Scores[orbit.ID] {
		t.Fatalf("expected thermal score > orbit score, got %v", result.Scores)
	}
}

func TestModeBiasPenalizesRecoveryInNominal(t *testing.T) {
	g := NewGate()
	battery := newIntent(intent.TypeBatteryRecovery)
	state := sysstate.Snapshot{Mode: sysstate.ModeNominal, BatteryLevel: 5}

	result := g.Evaluate([]*intent.Intent{battery}, state)
	// base = (20-5)/20*1000 = 750, bias = -200 -> 550
	if result.Scores[battery.ID] < 549 || result.Scores[battery.ID] > 551 {
		t.Fatalf("expected score ~550, got %v", result.Scores[battery.ID])
	}
}

func TestHistoryPenaltyReducesScore(t *testing.T) {
	g := NewGate()
	orbit := newIntent(intent.TypeOrbitCorrection)
	orbit.SafetyBlockCycles = 4

	state := sysstate.Snapshot{Mode: sysstate.ModeNominal}
	result := g.Evaluate([]*intent.Intent{orbit}, state)

	// base 100, no mode bias (not recovery), -0.5*4 = -2 -> 98
	if result.Scores[orbit.ID] != 98 {
		t.Fatalf("expected score 98, got %v", result.Scores[orbit.ID])
	}
}

func TestEvaluatePure(t *testing.T) {
	g := NewGate()
	orbit := newIntent(intent.TypeOrbitCorrection)
	battery := newIntent(intent.TypeBatteryRecovery)
	state := sysstate.Snapshot{Mode: sysstate.ModeSafe, BatteryLevel: 8}

	r1 := g.Evaluate([]*intent.Intent{orbit, battery}, state)
	r2 := g.Evaluate([]*intent.Intent{orbit, battery}, state)

	if r1.Selected.ID != r2.Selected.ID {
		t.Fatal("expected identical selection across repeated calls")
	}
	for id, score := range r1.Scores {
		if r2.Scores[id] != score {
			t.Fatalf("expected identical score for %s, got %v vs %v", id, score, r2.Scores[id])
		}
	}
}
