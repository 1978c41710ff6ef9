package numberhop

import (
	_ "embed"
	"context"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// Version is the NumberHop release version, embedded from the VERSION
// file at the repository root.
//
//go:embed VERSION
var Version string

// Timings defines the rhythm of a walk: how long a hop animates, how
// long the animation window holds, and how long the board rests
// between two hops.
type Timings = sequencer.Timings

// DefaultTimings returns the classroom rhythm, tuned for following
// along rather than for throughput.
func DefaultTimings() Timings {
	return sequencer.DefaultTimings()
}

// Board is the high-level entry point for the NumberHop library.
// It wraps the internal sequencer and provides a simplified API for
// hosts that embed walks: parse an expression, execute it, and watch
// the snapshots it emits.
type Board struct {
	seq     *sequencer.Sequencer
	timings Timings
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	clk     clock.Clock
}

// Option defines a functional option for configuring the Board.
type Option func(*Board)

// WithTimings replaces the default walk rhythm.
func WithTimings(t Timings) Option {
	return func(b *Board) {
		b.timings = t
	}
}

// WithLifecycleHooks registers observability callbacks for walk and
// move boundaries.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Board) {
		b.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the board.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithClock substitutes the time source. Tests pass a mock clock and
// drive walks without waiting wall time.
func WithClock(c clock.Clock) Option {
	return func(b *Board) {
		b.clk = c
	}
}

// New initializes a Board at position zero, idle.
func New(opts ...Option) (*Board, error) {
	b := &Board{timings: sequencer.DefaultTimings()}
	for _, opt := range opts {
		opt(b)
	}

	seqOpts := []sequencer.Option{
		sequencer.WithTimings(b.timings),
		sequencer.WithHooks(b.hooks),
	}
	if b.logger != nil {
		seqOpts = append(seqOpts, sequencer.WithLogger(b.logger))
	}
	if b.clk != nil {
		seqOpts = append(seqOpts, sequencer.WithClock(b.clk))
	}

	seq, err := sequencer.New(seqOpts...)
	if err != nil {
		return nil, err
	}
	b.seq = seq

	return b, nil
}

// Walk parses an expression and executes the resulting hops, blocking
// until the walk completes or is interrupted. It returns
// domain.ErrNoSteps when the expression contains no numbers and
// domain.ErrRunCanceled when the walk is displaced or ctx ends.
func (b *Board) Walk(ctx context.Context, expression string) error {
	steps := expr.Parse(expression)
	if len(steps) == 0 {
		return domain.ErrNoSteps
	}
	return b.seq.Execute(ctx, steps)
}

// Execute runs a walk over already parsed steps. See Walk.
func (b *Board) Execute(ctx context.Context, steps []int) error {
	return b.seq.Execute(ctx, steps)
}

// Reset interrupts any walk in flight and rewinds the board to
// position zero with an empty history.
func (b *Board) Reset() {
	b.seq.Reset()
}

// Snapshot returns the current observable state of the board.
func (b *Board) Snapshot() domain.Snapshot {
	return b.seq.Snapshot()
}

// Watch subscribes to board changes. The channel closes when ctx ends.
func (b *Board) Watch(ctx context.Context) <-chan domain.Snapshot {
	return b.seq.Watch(ctx)
}

// Parse extracts the signed hops from an arithmetic expression.
// Anything that is not a number is ignored.
func Parse(text string) []int {
	return expr.Parse(text)
}

// Plan computes the moves of a walk without running it, edge
// absorption included.
func Plan(steps []int) []domain.Move {
	return sequencer.Plan(steps)
}

// Final returns the landing position of a walk without running it.
func Final(steps []int) int {
	return sequencer.Final(steps)
}
