// Package sequencer drives the timed execution of number-line walks.
//
// A walk applies its steps strictly one after another. Each hop is
// observable in three stages: a wind-up where the pending hop is
// visible but the position unchanged, a commit where the position
// moves and the hop joins the history, and a hold that finishes the
// animation window. Between two hops the sequencer pauses so learners
// can absorb what happened.
//
// All timing goes through a clock abstraction, so tests substitute a
// mock clock and step through a walk without waiting wall time.
package sequencer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/numberhop/numberhop/internal/logging"
	"github.com/numberhop/numberhop/pkg/domain"
)

// Timings defines the rhythm of a walk.
type Timings struct {
	// Transition is how long a hop animates before the position commits.
	Transition time.Duration

	// Hold is the total duration of the Moving phase. It must be at
	// least Transition; the remainder is settle time after the commit.
	Hold time.Duration

	// Pause is the rest between two hops of the same walk.
	Pause time.Duration
}

// DefaultTimings returns the classroom rhythm: a slow hop and a long
// pause, tuned for following along rather than for throughput.
func DefaultTimings() Timings {
	return Timings{
		Transition: 1200 * time.Millisecond,
		Hold:       1500 * time.Millisecond,
		Pause:      4 * time.Second,
	}
}

// Validate checks that the profile can actually be scheduled.
func (t Timings) Validate() error {
	if t.Transition <= 0 || t.Hold <= 0 || t.Pause < 0 {
		return domain.ErrInvalidTimings
	}
	if t.Hold < t.Transition {
		return domain.ErrInvalidTimings
	}
	return nil
}

const watchBuffer = 16

// Sequencer executes walks on the number line, one at a time.
// A new Execute displaces any walk still in flight.
type Sequencer struct {
	clock   clock.Clock
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	timings Timings

	mu        sync.Mutex
	position  int
	phase     domain.Phase
	pending   *domain.Pending
	moves     []domain.Move
	stepIndex int
	stepCount int
	active    *runHandle

	subMu   sync.Mutex
	subs    map[int]chan domain.Snapshot
	nextSub int
}

type runHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the structured logger for walk lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithClock substitutes the time source. Tests pass a mock clock to
// drive walks without waiting wall time.
func WithClock(c clock.Clock) Option {
	return func(s *Sequencer) {
		s.clock = c
	}
}

// WithTimings replaces the default walk rhythm.
func WithTimings(t Timings) Option {
	return func(s *Sequencer) {
		s.timings = t
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// New creates a sequencer at position zero, idle.
func New(opts ...Option) (*Sequencer, error) {
	s := &Sequencer{
		clock:   clock.New(),
		logger:  logging.NewNop(),
		timings: DefaultTimings(),
		phase:   domain.PhaseIdle,
		subs:    make(map[int]chan domain.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.timings.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Execute runs a walk over the given steps and blocks until the walk
// completes or is interrupted. The walk always starts from position
// zero with an empty history, displacing any walk still in flight.
//
// An empty step list is a no-op. An interrupted walk returns
// domain.ErrRunCanceled and leaves the sequencer rewound to its
// initial state.
func (s *Sequencer) Execute(ctx context.Context, steps []int) error {
	if len(steps) == 0 {
		return nil
	}

	runCtx, handle := s.begin(ctx, len(steps))
	start := s.clock.Now()

	s.logger.Debug("walk started", "steps", len(steps))
	if s.hooks.OnRunStart != nil {
		ev := domain.RunEvent{EventBase: s.eventBase(domain.EventRunStart), Steps: len(steps)}
		s.hooks.OnRunStart(runCtx, &ev)
	}

	var runErr error
	for i, step := range steps {
		if runErr = s.step(runCtx, i, step, i == len(steps)-1); runErr != nil {
			break
		}
	}

	s.finish(handle, runErr == nil)

	if s.hooks.OnRunEnd != nil {
		ev := domain.RunEvent{
			EventBase: s.eventBase(domain.EventRunEnd),
			Steps:     len(steps),
			Completed: runErr == nil,
			Duration:  s.clock.Since(start),
		}
		s.hooks.OnRunEnd(runCtx, &ev)
	}

	if runErr != nil {
		s.logger.Debug("walk interrupted", "err", runErr)
		return runErr
	}
	s.logger.Debug("walk completed", "duration", s.clock.Since(start))
	return nil
}

// Reset interrupts any walk in flight and rewinds the sequencer to
// position zero with an empty history. It is idempotent.
func (s *Sequencer) Reset() {
	s.interrupt()
	s.position = 0
	s.phase = domain.PhaseIdle
	s.pending = nil
	s.moves = nil
	s.stepIndex = 0
	s.stepCount = 0
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	s.logger.Debug("sequencer reset")
}

// Snapshot returns an immutable copy of the current walk state.
func (s *Sequencer) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Watch subscribes to state snapshots. One snapshot is delivered for
// every observable change until ctx ends, then the channel closes.
// Slow receivers miss intermediate snapshots rather than stall a walk.
func (s *Sequencer) Watch(ctx context.Context) <-chan domain.Snapshot {
	ch := make(chan domain.Snapshot, watchBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
		close(ch)
	}()

	return ch
}

// begin displaces any active walk, installs the new run handle and
// rewinds the state. It publishes the rewound snapshot so observers
// see the walk take over.
func (s *Sequencer) begin(ctx context.Context, count int) (context.Context, *runHandle) {
	s.interrupt()

	runCtx, cancel := context.WithCancel(ctx)
	handle := &runHandle{cancel: cancel, done: make(chan struct{})}
	s.active = handle
	s.position = 0
	s.phase = domain.PhaseIdle
	s.pending = nil
	s.moves = nil
	s.stepIndex = 0
	s.stepCount = count
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return runCtx, handle
}

// interrupt cancels the active walk, if any, and waits for it to
// unwind. It returns holding s.mu with no walk active.
func (s *Sequencer) interrupt() {
	for {
		s.mu.Lock()
		prev := s.active
		if prev == nil {
			return
		}
		s.mu.Unlock()
		prev.cancel()
		<-prev.done
	}
}

// step runs one hop: wind-up, commit, settle, and the pause that leads
// into the next hop. The timer for each stage is armed before the
// stage becomes observable, so a mock clock advanced after observing a
// stage always fires the right timer.
func (s *Sequencer) step(ctx context.Context, index, requested int, last bool) error {
	transition := s.clock.Timer(s.timings.Transition)

	s.mu.Lock()
	from := s.position
	target := domain.Clamp(from + requested)
	move := domain.Move{From: from, To: target, AppliedValue: target - from, SequenceID: index}
	prevPhase := s.phase
	s.phase = domain.PhaseMoving
	s.stepIndex = index
	s.pending = &domain.Pending{
		From:         from,
		Target:       target,
		AppliedValue: move.AppliedValue,
		Direction:    domain.DirectionOf(move.AppliedValue),
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitPhaseChange(ctx, prevPhase, domain.PhaseMoving)
	if s.hooks.OnMoveStart != nil {
		ev := domain.MoveEvent{EventBase: s.eventBase(domain.EventMoveStart), StepIndex: index, Requested: requested, Move: move}
		s.hooks.OnMoveStart(ctx, &ev)
	}
	s.publish(snap)

	if err := s.wait(ctx, transition); err != nil {
		return err
	}

	settle := s.clock.Timer(s.timings.Hold - s.timings.Transition)

	s.mu.Lock()
	s.position = target
	s.moves = append(s.moves, move)
	s.pending = nil
	snap = s.snapshotLocked()
	s.mu.Unlock()

	if s.hooks.OnMoveEnd != nil {
		ev := domain.MoveEvent{EventBase: s.eventBase(domain.EventMoveEnd), StepIndex: index, Requested: requested, Move: move}
		s.hooks.OnMoveEnd(ctx, &ev)
	}
	s.publish(snap)

	if err := s.wait(ctx, settle); err != nil {
		return err
	}

	if last {
		s.setPhase(ctx, domain.PhaseIdle)
		return nil
	}

	pause := s.clock.Timer(s.timings.Pause)
	s.setPhase(ctx, domain.PhasePaused)
	return s.wait(ctx, pause)
}

// finish clears the run handle and, for interrupted walks, discards
// the partial state so the next observer sees a rewound board.
func (s *Sequencer) finish(handle *runHandle, completed bool) {
	s.mu.Lock()
	if !completed {
		s.position = 0
		s.moves = nil
		s.stepIndex = 0
		s.stepCount = 0
	}
	s.phase = domain.PhaseIdle
	s.pending = nil
	if s.active == handle {
		s.active = nil
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	handle.cancel()
	close(handle.done)
	if !completed {
		s.publish(snap)
	}
}

func (s *Sequencer) setPhase(ctx context.Context, next domain.Phase) {
	s.mu.Lock()
	prev := s.phase
	if prev == next {
		s.mu.Unlock()
		return
	}
	s.phase = next
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.emitPhaseChange(ctx, prev, next)
	s.publish(snap)
}

func (s *Sequencer) emitPhaseChange(ctx context.Context, from, to domain.Phase) {
	if from == to || s.hooks.OnPhaseChange == nil {
		return
	}
	ev := domain.PhaseEvent{EventBase: s.eventBase(domain.EventPhaseChange), From: from, To: to}
	s.hooks.OnPhaseChange(ctx, &ev)
}

func (s *Sequencer) wait(ctx context.Context, t *clock.Timer) error {
	defer t.Stop()
	select {
	case <-ctx.Done():
		return domain.ErrRunCanceled
	case <-t.C:
		return nil
	}
}

func (s *Sequencer) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.clock.Now(), Type: t}
}

func (s *Sequencer) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Position:  s.position,
		Phase:     s.phase,
		Moves:     make([]domain.Move, len(s.moves)),
		StepIndex: s.stepIndex,
		StepCount: s.stepCount,
	}
	copy(snap.Moves, s.moves)
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	return snap
}

func (s *Sequencer) publish(snap domain.Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.logger.Debug("watcher behind, dropping snapshot", "subscriber", id)
		}
	}
}
