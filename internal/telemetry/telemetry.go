package telemetry

import (
	"sync"
	"time"

	"github.com/danielpatrickdp/orbitctl/internal/policy"
	"github.com/danielpatrickdp/orbitctl/internal/safety"
	"github.com/danielpatrickdp/orbitctl/internal/sysstate"
)

// #region frame

// StateFrame is the JSON-encodable snapshot of sysstate.State carried on a
// Frame.
type StateFrame struct {
	Position     float64      `json:"position"`
	BatteryLevel float64      `json:"battery_level"`
	Temperature  float64      `json:"temperature"`
	Mode         sysstate.Mode `json:"mode"`
}

// PolicyFrame is the JSON-encodable projection of a policy.Result.
type PolicyFrame struct {
	SelectedIntentID *string            `json:"selected_intent_id"`
	Scores           map[string]float64 `json:"scores"`
}

// ExecutionFrame is the JSON-encodable record of what the cycle actually did.
type ExecutionFrame struct {
	ExecutedIntentID *string `json:"executed_intent_id"`
	OverrideApplied  bool    `json:"override_applied"`
	LockApplied      bool    `json:"lock_applied"`
}

// SafetyFrame is the JSON-encodable projection of a safety.Decision.
type SafetyFrame struct {
	Blocked         bool     `json:"blocked"`
	CriticalDomains []string `json:"critical_domains"`
	Reason          *string  `json:"reason"`
}

// Data is the per-cycle payload of a Frame.
type Data struct {
	State     StateFrame     `json:"state"`
	Policy    PolicyFrame    `json:"policy"`
	Execution ExecutionFrame `json:"execution"`
	Safety    SafetyFrame    `json:"safety"`
}

// Frame is one cycle's telemetry record, with the bit-exact field layout
// external observers (the dashboard, out of scope) decode as JSON.
type Frame struct {
	Timestamp float64 `json:"timestamp"`
	Type      string  `json:"type"`
	Data      Data    `json:"data"`
}

// #endregion frame

// #region builder

// Builder projects a cycle's decisions into a Frame. It holds no state of
// its own.
type Builder struct{}

// NewBuilder constructs a telemetry Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildInput bundles everything a single cycle's Build call needs.
type BuildInput struct {
	State            sysstate.Snapshot
	PolicyResult     policy.Result
	SafetyDecision   safety.Decision
	ExecutedIntentID *string
	OverrideApplied  bool
	LockApplied      bool
}

// Build constructs a Frame from one cycle's BuildInput.
func (b *Builder) Build(in BuildInput) Frame {
	var selected *string
	if in.PolicyResult.Selected != nil {
		id := in.PolicyResult.Selected.ID
		selected = &id
	}

	var reason *string
	if in.SafetyDecision.Reason != "" {
		r := string(in.SafetyDecision.Reason)
		reason = &r
	}

	domains := in.SafetyDecision.CriticalDomains
	if domains == nil {
		domains = []string{}
	}

	return Frame{
		Type: "cycle_frame",
		Data: Data{
			State: StateFrame{
				Position:     in.State.Position,
				BatteryLevel: in.State.BatteryLevel,
				Temperature:  in.State.Temperature,
				Mode:         in.State.Mode,
			},
			Policy: PolicyFrame{
				SelectedIntentID: selected,
				Scores:           in.PolicyResult.Scores,
			},
			Execution: ExecutionFrame{
				ExecutedIntentID: in.ExecutedIntentID,
				OverrideApplied:  in.OverrideApplied,
				LockApplied:      in.LockApplied,
			},
			Safety: SafetyFrame{
				Blocked:         in.SafetyDecision.Blocked,
				CriticalDomains: domains,
				Reason:          reason,
			},
		},
	}
}

// #endregion builder

// #region bus

// Bus is an append-only log of Frames. It is single-writer (Orchestrator)
// and many-reader; Frames returns a snapshot copy consistent with some
// prefix of the writer's appends, guarded by a mutex plus a monotonic
// sequence counter.
type Bus struct {
	mu   sync.Mutex
	seq  uint64
	data []Frame
}

// NewBus constructs an empty telemetry Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Append stamps frame with the current wall-clock timestamp and appends it.
func (bus *Bus) Append(frame Frame) Frame {
	frame.Timestamp = float64(time.Now().UnixNano()) / 1e9

	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.seq++
	bus.data = append(bus.data, frame)
	return frame
}

// Frames returns a snapshot copy of every frame appended so far.
func (bus *Bus) Frames() []Frame {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	out := make([]Frame, len(bus.data))
	copy(out, bus.data)
	return out
}

// Seq returns the bus's current monotonic sequence counter, useful for
// readers that want to detect new appends without copying the whole slice.
func (bus *Bus) Seq() uint64 {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return bus.seq
}

// #endregion bus
