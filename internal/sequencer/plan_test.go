package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numberhop/numberhop/pkg/domain"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name  string
		steps []int
		want  []domain.Move
	}{
		{
			name:  "empty walk",
			steps: nil,
			want:  []domain.Move{},
		},
		{
			name:  "simple addition",
			steps: []int{3, 4},
			want: []domain.Move{
				{From: 0, To: 3, AppliedValue: 3, SequenceID: 0},
				{From: 3, To: 7, AppliedValue: 4, SequenceID: 1},
			},
		},
		{
			name:  "saturates at the upper limit",
			steps: []int{5, 5, 5},
			want: []domain.Move{
				{From: 0, To: 5, AppliedValue: 5, SequenceID: 0},
				{From: 5, To: 10, AppliedValue: 5, SequenceID: 1},
				{From: 10, To: 10, AppliedValue: 0, SequenceID: 2},
			},
		},
		{
			name:  "clamps a single oversized hop",
			steps: []int{-15},
			want: []domain.Move{
				{From: 0, To: -10, AppliedValue: -10, SequenceID: 0},
			},
		},
		{
			name:  "recovers from the boundary",
			steps: []int{12, -4},
			want: []domain.Move{
				{From: 0, To: 10, AppliedValue: 10, SequenceID: 0},
				{From: 10, To: 6, AppliedValue: -4, SequenceID: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moves := Plan(tt.steps)
			assert.Equal(t, tt.want, moves)

			// Every move chains onto the previous and stays on board.
			pos := 0
			for _, m := range moves {
				assert.Equal(t, pos, m.From)
				assert.Equal(t, m.To-m.From, m.AppliedValue)
				assert.GreaterOrEqual(t, m.To, domain.MinPosition)
				assert.LessOrEqual(t, m.To, domain.MaxPosition)
				pos = m.To
			}
			assert.Equal(t, Final(tt.steps), pos)
		})
	}
}

func TestFinal(t *testing.T) {
	assert.Equal(t, 0, Final(nil))
	assert.Equal(t, 7, Final([]int{3, 4}))
	assert.Equal(t, 10, Final([]int{5, 5, 5}))
	assert.Equal(t, -10, Final([]int{-15}))
	assert.Equal(t, -3, Final([]int{12, -3, -10}))
}
