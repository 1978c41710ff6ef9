package runs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

func fastTimings() sequencer.Timings {
	return sequencer.Timings{
		Transition: time.Millisecond,
		Hold:       2 * time.Millisecond,
		Pause:      time.Millisecond,
	}
}

// slowTimings parks a multi-step walk in its first pause long enough
// for a test to interact with it mid-flight.
func slowTimings() sequencer.Timings {
	return sequencer.Timings{
		Transition: time.Millisecond,
		Hold:       2 * time.Millisecond,
		Pause:      time.Minute,
	}
}

func waitDone(t *testing.T, run *Run) {
	t.Helper()
	select {
	case <-run.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
}

func TestStartRunsWalkToCompletion(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()))
	defer m.Close()

	run, err := m.Start("3 + 4")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, run.Steps)
	assert.Equal(t, "3 + 4", run.Expression)
	assert.NotEmpty(t, run.ID)

	got, err := m.Get(run.ID)
	require.NoError(t, err)
	assert.Same(t, run, got)

	waitDone(t, run)
	require.NoError(t, run.Err())

	_, finished := run.Finished()
	assert.True(t, finished)

	snap := run.Snapshot()
	assert.Equal(t, 7, snap.Position)
	assert.Equal(t, domain.PhaseIdle, snap.Phase)
	require.Len(t, snap.Moves, 2)
}

func TestStartRejectsEmptyExpression(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()))
	defer m.Close()

	_, err := m.Start("no digits here")
	require.ErrorIs(t, err, domain.ErrNoSteps)
}

func TestStartEnforcesLimit(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()), WithLimit(1))
	defer m.Close()

	run, err := m.Start("1")
	require.NoError(t, err)
	waitDone(t, run)

	// Retained runs count against the limit until the janitor prunes them.
	_, err = m.Start("2")
	require.ErrorIs(t, err, domain.ErrTooManyRuns)
}

func TestCancelInterruptsWalk(t *testing.T) {
	m := NewManager(WithTimings(slowTimings()))
	defer m.Close()

	run, err := m.Start("1 + 1 + 1")
	require.NoError(t, err)

	// Let the walk park in its first pause.
	require.Eventually(t, func() bool {
		return run.Snapshot().Phase == domain.PhasePaused
	}, 5*time.Second, time.Millisecond)

	require.NoError(t, m.Cancel(run.ID))
	require.ErrorIs(t, run.Err(), domain.ErrRunCanceled)

	_, err = m.Get(run.ID)
	require.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestCancelUnknownRun(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()))
	defer m.Close()

	require.ErrorIs(t, m.Cancel("nope"), domain.ErrRunNotFound)
}

func TestListNewestFirst(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()))
	defer m.Close()

	first, err := m.Start("1")
	require.NoError(t, err)
	waitDone(t, first)

	second, err := m.Start("2")
	require.NoError(t, err)
	waitDone(t, second)

	runs := m.List()
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestJanitorPrunesFinishedRuns(t *testing.T) {
	m := NewManager(WithTimings(fastTimings()), WithTTL(20*time.Millisecond))
	defer m.Close()

	run, err := m.Start("5")
	require.NoError(t, err)
	waitDone(t, run)

	require.Eventually(t, func() bool {
		_, err := m.Get(run.ID)
		return err != nil
	}, 5*time.Second, time.Millisecond)
}

func TestCloseInterruptsAndRejects(t *testing.T) {
	m := NewManager(WithTimings(slowTimings()))

	run, err := m.Start("1 + 1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return run.Snapshot().Phase == domain.PhasePaused
	}, 5*time.Second, time.Millisecond)

	m.Close()
	require.ErrorIs(t, run.Err(), domain.ErrRunCanceled)

	_, err = m.Start("3")
	require.ErrorIs(t, err, ErrClosed)
}

func TestHooksCarryRunID(t *testing.T) {
	ids := make(chan string, 1)
	hooks := domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, ev *domain.RunEvent) {
			select {
			case ids <- ev.RunID:
			default:
			}
		},
	}

	m := NewManager(WithTimings(fastTimings()), WithHooks(hooks))
	defer m.Close()

	run, err := m.Start("4")
	require.NoError(t, err)
	waitDone(t, run)

	select {
	case id := <-ids:
		assert.Equal(t, run.ID, id)
	case <-time.After(time.Second):
		t.Fatal("hook did not fire")
	}
}
