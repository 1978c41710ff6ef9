package domain

// Phase defines the current mode of the sequencer mechanics.
type Phase string

const (
	PhaseIdle   Phase = "idle"   // No walk in progress; initial and terminal mode
	PhaseMoving Phase = "moving" // A hop is animating toward its target
	PhasePaused Phase = "paused" // Holding between two hops of the same walk
)

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseMoving, PhasePaused:
		return true
	}
	return false
}
