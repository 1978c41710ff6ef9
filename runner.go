package numberhop

import (
	"context"
	"fmt"
	"io"

	"github.com/numberhop/numberhop/pkg/domain"
)

// Runner handles the animation loop of a walk using provided IO.
// This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Runner struct {
	Output   io.Writer
	Headless bool
	Renderer FrameRenderer
}

// FrameRenderer transforms a snapshot into the text a frontend prints.
// This allows for TUI rendering (board drawings, ANSI color) without
// coupling the core package.
type FrameRenderer func(domain.Snapshot) string

// NewRunner creates a new Runner. Set Output before calling Run; leave
// Renderer nil for plain one-line frames.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes steps on the board and writes one frame per emitted
// snapshot until the walk ends. It returns the final snapshot together
// with the walk error, domain.ErrRunCanceled included.
func (r *Runner) Run(ctx context.Context, board *Board, steps []int) (domain.Snapshot, error) {
	if r.Output == nil && !r.Headless {
		return domain.Snapshot{}, fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	render := r.Renderer
	if render == nil {
		render = plainFrame
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	snapshots := board.Watch(watchCtx)

	done := make(chan error, 1)
	go func() {
		done <- board.Execute(ctx, steps)
	}()

	var runErr error
loop:
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				break loop
			}
			r.print(render(snap))
		case runErr = <-done:
			// Let the subscription close, then drain what is left.
			cancelWatch()
			for snap := range snapshots {
				r.print(render(snap))
			}
			break loop
		}
	}

	return board.Snapshot(), runErr
}

func (r *Runner) print(frame string) {
	if r.Headless {
		return
	}
	fmt.Fprintln(r.Output, frame)
}

// plainFrame renders a snapshot as one line of text.
func plainFrame(snap domain.Snapshot) string {
	switch {
	case snap.Pending != nil:
		return fmt.Sprintf("pos %d, hop %d/%d winding up: %+d",
			snap.Position, snap.StepIndex+1, snap.StepCount, snap.Pending.AppliedValue)
	case snap.Phase == domain.PhasePaused:
		return fmt.Sprintf("pos %d, resting", snap.Position)
	default:
		return fmt.Sprintf("pos %d", snap.Position)
	}
}
