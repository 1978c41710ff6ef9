package importer

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// Generate builds count practice questions for a difficulty level
// without needing a spreadsheet. Higher levels get more steps and
// larger jumps; every walk stays inside the board so beginners never
// see an edge absorb part of a hop. The same seed always yields the
// same questions.
func Generate(level, count int, seed int64) []domain.Question {
	rng := rand.New(rand.NewSource(seed))

	stepCount := level + 1
	if stepCount > 5 {
		stepCount = 5
	}
	magnitude := 3 * level
	if magnitude > domain.MaxPosition {
		magnitude = domain.MaxPosition
	}

	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		steps := rollSteps(rng, stepCount, magnitude)
		questions = append(questions, domain.Question{
			Level:  level,
			Prompt: formatSteps(steps),
			Answer: sequencer.Final(steps),
		})
	}
	return questions
}

// rollSteps picks nonzero jumps whose running position never leaves
// the board.
func rollSteps(rng *rand.Rand, stepCount, magnitude int) []int {
	steps := make([]int, 0, stepCount)
	pos := 0
	for len(steps) < stepCount {
		lo := domain.MinPosition - pos
		if lo < -magnitude {
			lo = -magnitude
		}
		hi := domain.MaxPosition - pos
		if hi > magnitude {
			hi = magnitude
		}
		v := lo + rng.Intn(hi-lo+1)
		if v == 0 {
			continue
		}
		pos += v
		steps = append(steps, v)
	}
	return steps
}

func formatSteps(steps []int) string {
	var b strings.Builder
	for i, v := range steps {
		if i > 0 && v >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
