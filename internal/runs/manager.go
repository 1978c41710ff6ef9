// Package runs keeps the live walk registry for the HTTP surface.
//
// Each run owns one sequencer executing on its own goroutine, so a
// request can start a walk, disconnect, and watch it later by ID.
// Finished runs stay queryable for a retention window, then a janitor
// prunes them.
package runs

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/logging"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// ErrClosed is returned by Start after the manager shut down.
var ErrClosed = errors.New("runs: manager closed")

const (
	// DefaultLimit caps how many runs, live or retained, exist at once.
	DefaultLimit = 64

	// DefaultTTL is how long a finished run stays queryable.
	DefaultTTL = 10 * time.Minute
)

// Run is one walk executing (or retained after executing) under the
// manager. The exported fields are fixed at start and safe to read.
type Run struct {
	ID         string
	Expression string
	Steps      []int
	StartedAt  time.Time

	seq  *sequencer.Sequencer
	done chan struct{}

	mu         sync.Mutex
	err        error
	finishedAt time.Time
}

// Snapshot returns the current state of the walk.
func (r *Run) Snapshot() domain.Snapshot {
	return r.seq.Snapshot()
}

// Watch subscribes to the walk's state snapshots until ctx ends.
func (r *Run) Watch(ctx context.Context) <-chan domain.Snapshot {
	return r.seq.Watch(ctx)
}

// Done is closed when the walk stops executing, for any reason.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Err reports how the walk ended: nil for a completed walk,
// domain.ErrRunCanceled for an interrupted one, and nil while the walk
// is still executing.
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Finished returns when the walk stopped executing, if it has.
func (r *Run) Finished() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedAt, !r.finishedAt.IsZero()
}

// Manager starts walks, tracks them by ID and prunes finished ones
// after a retention window.
type Manager struct {
	limit   int
	ttl     time.Duration
	clock   clock.Clock
	logger  *slog.Logger
	timings sequencer.Timings
	hooks   domain.LifecycleHooks

	mu     sync.Mutex
	runs   map[string]*Run
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures the Manager.
type Option func(*Manager)

// WithLimit caps the number of tracked runs.
func WithLimit(n int) Option {
	return func(m *Manager) {
		m.limit = n
	}
}

// WithTTL sets the retention window for finished runs. A TTL of zero
// or less keeps them until the manager closes.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithClock substitutes the time source for timestamps, the janitor
// and every sequencer the manager starts.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTimings sets the walk rhythm for every run the manager starts.
func WithTimings(t sequencer.Timings) Option {
	return func(m *Manager) {
		m.timings = t
	}
}

// WithHooks registers lifecycle callbacks shared by all runs. Events
// are stamped with the run ID before delivery.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a run registry and starts its janitor.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		limit:   DefaultLimit,
		ttl:     DefaultTTL,
		clock:   clock.New(),
		logger:  logging.NewNop(),
		timings: sequencer.DefaultTimings(),
		runs:    make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.baseCtx, m.cancel = context.WithCancel(context.Background())

	if m.ttl > 0 {
		interval := m.ttl / 4
		if interval < time.Millisecond {
			interval = time.Millisecond
		}
		m.wg.Add(1)
		go m.janitor(interval)
	}
	return m
}

// Start parses the expression and launches a walk over its steps on a
// fresh sequencer. The walk is detached from the caller: it keeps
// executing after Start returns and is interrupted only by Cancel or
// Close. Expressions with no steps return domain.ErrNoSteps.
func (m *Manager) Start(expression string) (*Run, error) {
	steps := expr.Parse(expression)
	if len(steps) == 0 {
		return nil, domain.ErrNoSteps
	}

	id := uuid.NewString()
	seq, err := sequencer.New(
		sequencer.WithClock(m.clock),
		sequencer.WithTimings(m.timings),
		sequencer.WithLogger(m.logger.With("run_id", id)),
		sequencer.WithHooks(stampRunID(id, m.hooks)),
	)
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:         id,
		Expression: strings.TrimSpace(expression),
		Steps:      steps,
		StartedAt:  m.clock.Now(),
		seq:        seq,
		done:       make(chan struct{}),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if len(m.runs) >= m.limit {
		m.mu.Unlock()
		return nil, domain.ErrTooManyRuns
	}
	m.runs[id] = run
	// Add must happen before the unlock so it cannot race Close's Wait.
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		err := seq.Execute(m.baseCtx, steps)
		run.mu.Lock()
		run.err = err
		run.finishedAt = m.clock.Now()
		run.mu.Unlock()
		close(run.done)
	}()

	m.logger.Info("walk started", "run_id", id, "steps", len(steps))
	return run, nil
}

// Get retrieves a run by ID.
// Returns domain.ErrRunNotFound if the run does not exist.
func (m *Manager) Get(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

// List returns all tracked runs, newest first.
func (m *Manager) List() []*Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run)
	}
	slices.SortFunc(out, func(a, b *Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Cancel interrupts a run, waits for it to unwind and drops it from
// the registry. Returns domain.ErrRunNotFound for unknown IDs.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	run, ok := m.runs[id]
	if ok {
		delete(m.runs, id)
	}
	m.mu.Unlock()
	if !ok {
		return domain.ErrRunNotFound
	}

	run.seq.Reset()
	<-run.done
	m.logger.Info("walk canceled", "run_id", id)
	return nil
}

// Close interrupts every run, stops the janitor and waits for all
// goroutines to unwind. The manager accepts no new walks afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.runs = make(map[string]*Run)
	m.mu.Unlock()
	m.logger.Debug("run manager closed")
}

func (m *Manager) janitor(interval time.Duration) {
	defer m.wg.Done()
	ticker := m.clock.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.baseCtx.Done():
			return
		case <-ticker.C:
			m.prune()
		}
	}
}

func (m *Manager) prune() {
	now := m.clock.Now()
	var expired int

	m.mu.Lock()
	for id, run := range m.runs {
		if fin, ok := run.Finished(); ok && now.Sub(fin) >= m.ttl {
			delete(m.runs, id)
			expired++
		}
	}
	m.mu.Unlock()

	if expired > 0 {
		m.logger.Debug("pruned finished walks", "count", expired)
	}
}

// stampRunID wraps hooks so every delivered event carries the run ID.
func stampRunID(id string, h domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	if inner := h.OnRunStart; inner != nil {
		out.OnRunStart = func(ctx context.Context, ev *domain.RunEvent) {
			ev.RunID = id
			inner(ctx, ev)
		}
	}
	if inner := h.OnRunEnd; inner != nil {
		out.OnRunEnd = func(ctx context.Context, ev *domain.RunEvent) {
			ev.RunID = id
			inner(ctx, ev)
		}
	}
	if inner := h.OnMoveStart; inner != nil {
		out.OnMoveStart = func(ctx context.Context, ev *domain.MoveEvent) {
			ev.RunID = id
			inner(ctx, ev)
		}
	}
	if inner := h.OnMoveEnd; inner != nil {
		out.OnMoveEnd = func(ctx context.Context, ev *domain.MoveEvent) {
			ev.RunID = id
			inner(ctx, ev)
		}
	}
	if inner := h.OnPhaseChange; inner != nil {
		out.OnPhaseChange = func(ctx context.Context, ev *domain.PhaseEvent) {
			ev.RunID = id
			inner(ctx, ev)
		}
	}
	return out
}
