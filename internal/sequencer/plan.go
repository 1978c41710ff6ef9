package sequencer

import "github.com/numberhop/numberhop/pkg/domain"

// Plan computes the moves a walk over the given steps would commit,
// without running any timers. The fold over Plan is the ground truth
// for what Execute animates: same clamping, same sequence IDs.
func Plan(steps []int) []domain.Move {
	moves := make([]domain.Move, 0, len(steps))
	pos := 0
	for i, step := range steps {
		target := domain.Clamp(pos + step)
		moves = append(moves, domain.Move{
			From:         pos,
			To:           target,
			AppliedValue: target - pos,
			SequenceID:   i,
		})
		pos = target
	}
	return moves
}

// Final returns the landing position of a walk over the given steps.
func Final(steps []int) int {
	pos := 0
	for _, step := range steps {
		pos = domain.Clamp(pos + step)
	}
	return pos
}
