package domain

// Direction indicates which way a hop travels on the number line.
type Direction string

const (
	DirectionNone  Direction = "none"  // Saturated hop, position does not change
	DirectionLeft  Direction = "left"  // Toward MinPosition
	DirectionRight Direction = "right" // Toward MaxPosition
)

// DirectionOf returns the travel direction for an applied value.
func DirectionOf(applied int) Direction {
	switch {
	case applied < 0:
		return DirectionLeft
	case applied > 0:
		return DirectionRight
	default:
		return DirectionNone
	}
}

// Move is one committed hop on the number line.
//
// AppliedValue is always To - From, which differs from the requested step
// when the board limits truncated the hop. SequenceID is the zero-based
// index of the move within its walk.
type Move struct {
	From         int `json:"from"`
	To           int `json:"to"`
	AppliedValue int `json:"applied_value"`
	SequenceID   int `json:"sequence_id"`
}

// Absorbed reports whether the hop produced no displacement at all,
// either because the step was zero or because the runner was already
// pinned at the board limit it was pushed against.
func (m Move) Absorbed() bool {
	return m.AppliedValue == 0
}

// Pending describes the hop currently animating: the wind-up is visible
// before the position commits. Target is where the runner will land.
type Pending struct {
	From         int       `json:"from"`
	Target       int       `json:"target"`
	AppliedValue int       `json:"applied_value"`
	Direction    Direction `json:"direction"`
}
