package domain

// Snapshot captures the observable state of a walk at one instant.
//
// Snapshots are immutable copies: mutating one never affects the
// sequencer, and the Moves slice is never shared with live state.
type Snapshot struct {
	// Position is the committed board position of the runner.
	Position int `json:"position"`

	// Phase indicates whether the runner is idle, mid-hop, or holding.
	Phase Phase `json:"phase"`

	// Pending is the hop currently winding up, if Phase is PhaseMoving.
	Pending *Pending `json:"pending,omitempty"`

	// Moves is the committed history of the current walk, oldest first.
	Moves []Move `json:"moves"`

	// StepIndex is the zero-based index of the step being executed.
	// It is only meaningful while a walk is active.
	StepIndex int `json:"step_index"`

	// StepCount is the total number of steps in the current walk,
	// or zero when no walk has started since the last reset.
	StepCount int `json:"step_count"`
}

// FinalPosition returns the landing position of the last committed move,
// or the current position when no move has committed yet.
func (s Snapshot) FinalPosition() int {
	if n := len(s.Moves); n > 0 {
		return s.Moves[n-1].To
	}
	return s.Position
}
