package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/orbitctl/internal/intent"
	"github.com/danielpatrickdp/orbitctl/internal/orchestrator"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region scenario-types

// scenario is the JSON shape of a -scenario file: an initial SystemState
// override plus a list of intents to submit before the first simulated
// cycle, in the reference's fixture-file idiom.
type scenario struct {
	State   *scenarioState    `json:"state"`
	Intents []scenarioIntent  `json:"intents"`
}

// scenarioState overrides any subset of the initial sysstate.State fields.
// Pointers distinguish "not present in the file" from "explicitly zero."
type scenarioState struct {
	Position     *float64 `json:"position"`
	BatteryLevel *float64 `json:"battery_level"`
	Temperature  *float64 `json:"temperature"`
	Mode         *string  `json:"mode"`
}

// scenarioIntent describes one intent.Store.Submit call.
type scenarioIntent struct {
	Type          string   `json:"type"`
	GoalTarget    string   `json:"goal_target"`
	GoalReference *float64 `json:"goal_reference"`
	GoalMetric    string   `json:"goal_metric"`
	GoalTolerance float64  `json:"goal_tolerance"`
}

// #endregion scenario-types

// #region loader

// loadScenario reads and parses a JSON scenario file.
func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	var s scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return &s, nil
}

// apply seeds orch's state and intent store from the scenario, before the
// first cycle runs.
func (s *scenario) apply(orch *orchestrator.Orchestrator) {
	if s.State != nil {
		state := orch.State()
		if s.State.Position != nil {
			state.Position = *s.State.Position
		}
		if s.State.BatteryLevel != nil {
			state.BatteryLevel = *s.State.BatteryLevel
		}
		if s.State.Temperature != nil {
			state.Temperature = *s.State.Temperature
		}
		if s.State.Mode != nil {
			state.Mode = sysstate.Mode(*s.State.Mode)
		}
	}

	for _, si := range s.Intents {
		var opts []intent.SubmitOption
		if si.GoalTarget != "" {
			opts = append(opts, intent.WithGoalTarget(si.GoalTarget))
		}
		if si.GoalReference != nil {
			opts = append(opts, intent.WithGoalReference(*si.GoalReference))
		}
		if si.GoalMetric != "" {
			opts = append(opts, intent.WithGoalMetric(si.GoalMetric))
		}
		if si.GoalTolerance != 0 {
			opts = append(opts, intent.WithGoalTolerance(si.GoalTolerance))
		}
		orch.Store().Submit(intent.Type(si.Type), opts...)
	}
}

// #endregion loader
