package intent

import (
	"time"

	"github.com/google/uuid"
)

// #region store-struct

// Store holds every intent submitted to the system for the life of the
// orchestrator process. There is no persistence layer (out of scope); the
// store is a plain in-memory map plus a parallel id slice that preserves
// insertion order the way a SQL "ORDER BY created_at" would without needing
// a database.
type Store struct {
	byID  map[string]*Intent
	order []string
}

// NewStore creates an empty intent store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Intent),
	}
}

// #endregion store-struct

// #region submit-options

// SubmitOption configures an optional field of a submitted intent.
type SubmitOption func(*Intent)

// WithGoalTarget sets the goal's symbolic target (e.g. a named setpoint).
func WithGoalTarget(target string) SubmitOption {
	return func(i *Intent) { i.Goal.Target = target }
}

// WithGoalReference sets the goal's numeric reference value.
func WithGoalReference(ref float64) SubmitOption {
	return func(i *Intent) {
		i.Goal.Reference = ref
		i.Goal.HasRef = true
	}
}

// WithGoalMetric sets the physical metric the goal reference applies to
// (e.g. "position").
func WithGoalMetric(metric string) SubmitOption {
	return func(i *Intent) { i.Goal.Metric = metric }
}

// WithGoalTolerance sets the goal's completion tolerance.
func WithGoalTolerance(tolerance float64) SubmitOption {
	return func(i *Intent) { i.Goal.Tolerance = tolerance }
}

// #endregion submit-options

// #region submit

// Submit creates a PENDING intent of the given type with a fresh opaque id
// and the current timestamp, stores it, and returns it. All options are
// optional.
func (s *Store) Submit(intentType Type, opts ...SubmitOption) *Intent {
	now := time.Now()
	in := &Intent{
		ID:          uuid.New().String(),
		IntentType:  intentType,
		CreatedAt:   now,
		LastUpdated: now,
		Status:      StatusPending,
	}
	for _, opt := range opts {
		opt(in)
	}

	s.byID[in.ID] = in
	s.order = append(s.order, in.ID)
	return in
}

// #endregion submit

// #region queries

// ListActive returns every PENDING or ACTIVE intent, in insertion order.
func (s *Store) ListActive() []*Intent {
	var active []*Intent
	for _, id := range s.order {
		in := s.byID[id]
		if in == nil {
			continue
		}
		if in.Status == StatusPending || in.Status == StatusActive {
			active = append(active, in)
		}
	}
	return active
}

// GetActiveByType returns the first active (PENDING or ACTIVE) intent of the
// given type in insertion order, or nil if none exists.
func (s *Store) GetActiveByType(t Type) *Intent {
	for _, id := range s.order {
		in := s.byID[id]
		if in == nil {
			continue
		}
		if in.IntentType == t && (in.Status == StatusPending || in.Status == StatusActive) {
			return in
		}
	}
	return nil
}

// Get returns the intent with the given id, or nil if no such intent exists.
// An unknown id is a lookup miss, never an error (§7).
func (s *Store) Get(id string) *Intent {
	return s.byID[id]
}

// #endregion queries

// #region transitions

// MarkActive transitions in to ACTIVE and stamps LastUpdated.
func (s *Store) MarkActive(in *Intent) {
	if in == nil {
		return
	}
	in.Status = StatusActive
	in.LastUpdated = time.Now()
}

// MarkCompleted transitions in to COMPLETED and stamps LastUpdated.
func (s *Store) MarkCompleted(in *Intent) {
	if in == nil {
		return
	}
	in.Status = StatusCompleted
	in.LastUpdated = time.Now()
}

// MarkDenied transitions in to DENIED, records reason, and stamps
// LastUpdated.
func (s *Store) MarkDenied(in *Intent, reason string) {
	if in == nil {
		return
	}
	in.Status = StatusDenied
	in.BlockReason = reason
	in.LastUpdated = time.Now()
}

// #endregion transitions

// #region archive

// ArchiveCompleted removes every intent in a terminal status (COMPLETED or
// DENIED) from the store. Archived intents are thereafter invisible to every
// query, including Get.
func (s *Store) ArchiveCompleted() {
	kept := s.order[:0:0]
	for _, id := range s.order {
		in := s.byID[id]
		if in == nil {
			continue
		}
		if in.Status == StatusCompleted || in.Status == StatusDenied {
			delete(s.byID, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

// #endregion archive
