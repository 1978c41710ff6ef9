package domain

// Board limits for the number line. Every position a walk can occupy,
// including intermediate ones, stays inside [MinPosition, MaxPosition].
const (
	MinPosition = -10
	MaxPosition = 10
)

// Clamp saturates a raw board position to the number-line limits.
func Clamp(pos int) int {
	if pos < MinPosition {
		return MinPosition
	}
	if pos > MaxPosition {
		return MaxPosition
	}
	return pos
}
