package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart    EventType = "run_start"
	EventRunEnd      EventType = "run_end"
	EventMoveStart   EventType = "move_start"
	EventMoveEnd     EventType = "move_end"
	EventPhaseChange EventType = "phase_change"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// RunEvent marks the start or end of a walk.
type RunEvent struct {
	EventBase
	Steps     int           `json:"steps"`
	Completed bool          `json:"completed,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// MoveEvent marks the wind-up or commit of a single hop.
// Requested is the raw step value before board limits applied.
type MoveEvent struct {
	EventBase
	StepIndex int  `json:"step_index"`
	Requested int  `json:"requested"`
	Move      Move `json:"move"`
}

// PhaseEvent marks a sequencer phase transition.
type PhaseEvent struct {
	EventBase
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// LifecycleHooks defines callbacks for sequencer observability.
//
// Hooks run synchronously on the walk goroutine; implementations must
// not call back into the sequencer and should return quickly.
type LifecycleHooks struct {
	OnRunStart    func(context.Context, *RunEvent)
	OnRunEnd      func(context.Context, *RunEvent)
	OnMoveStart   func(context.Context, *MoveEvent)
	OnMoveEnd     func(context.Context, *MoveEvent)
	OnPhaseChange func(context.Context, *PhaseEvent)
}
