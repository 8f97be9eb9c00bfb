package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scctower/internal/domain"
)

type fakeInvoker struct {
	mu     sync.Mutex
	calls  int
	answer string
	err    error
	panics bool

	// release, when set, blocks the invocation until closed so tests can
	// observe the task in a pre-terminal state.
	release chan struct{}
}

func (f *fakeInvoker) Invoke(_ context.Context, _ []domain.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls++
	answer, err, panics, release := f.answer, f.err, f.panics, f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	if panics {
		panic("malformed payload")
	}
	return answer, err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func userMessage(content string) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: "user", Content: content}}
}

// pollUntilTerminal polls the runner until the task reaches a terminal
// status or the deadline passes.
func pollUntilTerminal(t *testing.T, r *Runner, id string) domain.ChatTask {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		got := r.Poll(id)
		if got.Status.Terminal() {
			return got
		}
		require.True(t, time.Now().Before(deadline), "task did not reach a terminal state in time")
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunner_SubmitRejectsEmptyMessages(t *testing.T) {
	t.Parallel()
	r := NewRunner(NewRegistry(), &fakeInvoker{}, time.Minute, nil)

	_, err := r.Submit(context.Background(), nil)
	require.Error(t, err)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRunner_SubmitReturnsImmediatelyWithPendingTask(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	inv := &fakeInvoker{answer: "42 units", release: release}
	r := NewRunner(NewRegistry(), inv, time.Minute, nil)

	id, err := r.Submit(context.Background(), userMessage("status?"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The worker is blocked inside the invoker, so the poll must observe a
	// transient status — the pending entry was written before launch.
	got := r.Poll(id)
	assert.Contains(t, []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusRunning}, got.Status)
	assert.Empty(t, got.Result)

	close(release)
	final := pollUntilTerminal(t, r, id)
	assert.Equal(t, domain.TaskStatusDone, final.Status)
	assert.Equal(t, "42 units", final.Result)
}

func TestRunner_TerminalStatusIsMonotonic(t *testing.T) {
	t.Parallel()
	inv := &fakeInvoker{answer: "done deal"}
	r := NewRunner(NewRegistry(), inv, time.Minute, nil)

	id, err := r.Submit(context.Background(), userMessage("status?"))
	require.NoError(t, err)

	final := pollUntilTerminal(t, r, id)
	require.Equal(t, domain.TaskStatusDone, final.Status)

	// Once terminal, repeated polls never revert to a transient status.
	for i := 0; i < 10; i++ {
		again := r.Poll(id)
		assert.Equal(t, domain.TaskStatusDone, again.Status)
		assert.Equal(t, "done deal", again.Result)
	}
}

func TestRunner_UpstreamFailureBecomesErrorState(t *testing.T) {
	t.Parallel()
	inv := &fakeInvoker{err: domain.ErrUpstream(503, "agent returned 503")}
	r := NewRunner(NewRegistry(), inv, time.Minute, nil)

	id, err := r.Submit(context.Background(), userMessage("status?"))
	require.NoError(t, err)

	final := pollUntilTerminal(t, r, id)
	assert.Equal(t, domain.TaskStatusError, final.Status)
	assert.Contains(t, final.Result, "503")
}

func TestRunner_EmptyAnswerIsDoneNotError(t *testing.T) {
	t.Parallel()
	inv := &fakeInvoker{answer: ""}
	r := NewRunner(NewRegistry(), inv, time.Minute, nil)

	id, err := r.Submit(context.Background(), userMessage("status?"))
	require.NoError(t, err)

	final := pollUntilTerminal(t, r, id)
	assert.Equal(t, domain.TaskStatusDone, final.Status)
	assert.Empty(t, final.Result)
}

func TestRunner_WorkerPanicBecomesErrorState(t *testing.T) {
	t.Parallel()
	inv := &fakeInvoker{panics: true}
	r := NewRunner(NewRegistry(), inv, time.Minute, nil)

	id, err := r.Submit(context.Background(), userMessage("status?"))
	require.NoError(t, err)

	final := pollUntilTerminal(t, r, id)
	assert.Equal(t, domain.TaskStatusError, final.Status)
	assert.Contains(t, final.Result, "malformed payload")
}

func TestRunner_PollUnknownID(t *testing.T) {
	t.Parallel()
	r := NewRunner(NewRegistry(), &fakeInvoker{}, time.Minute, nil)

	got := r.Poll("never-submitted")
	assert.Equal(t, "never-submitted", got.ID)
	assert.Equal(t, domain.TaskStatusError, got.Status)
	assert.Equal(t, "Task not found", got.Result)
}

func TestRunner_SubmitSweepsExpiredTasks(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	inv := &fakeInvoker{answer: "ok"}
	r := NewRunner(registry, inv, 5*time.Minute, nil)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return clock }
	r.now = registry.now

	oldID, err := r.Submit(context.Background(), userMessage("first"))
	require.NoError(t, err)
	pollUntilTerminal(t, r, oldID)

	// Six minutes later a new submission's sweep reclaims the old result,
	// polled or not.
	clock = clock.Add(6 * time.Minute)
	newID, err := r.Submit(context.Background(), userMessage("second"))
	require.NoError(t, err)

	got := r.Poll(oldID)
	assert.Equal(t, domain.TaskStatusError, got.Status)
	assert.Equal(t, "Task not found", got.Result)

	pollUntilTerminal(t, r, newID)
}

func TestRunner_SubmitIDsAreUnique(t *testing.T) {
	t.Parallel()
	inv := &fakeInvoker{answer: "ok"}
	// Generous retention so the sweep never removes entries mid-test.
	r := NewRunner(NewRegistry(), inv, time.Hour, nil)

	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := r.Submit(context.Background(), userMessage("ping"))
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "task id %s issued twice", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, 10000, inv.callCount())
}

func TestRunner_ConcurrentTasksAreIndependent(t *testing.T) {
	t.Parallel()
	slowRelease := make(chan struct{})
	slow := &fakeInvoker{answer: "slow answer", release: slowRelease}
	fast := &fakeInvoker{answer: "fast answer"}

	registry := NewRegistry()
	slowRunner := NewRunner(registry, slow, time.Minute, nil)
	fastRunner := NewRunner(registry, fast, time.Minute, nil)

	slowID, err := slowRunner.Submit(context.Background(), userMessage("slow"))
	require.NoError(t, err)
	fastID, err := fastRunner.Submit(context.Background(), userMessage("fast"))
	require.NoError(t, err)

	// The fast task completes while the slow one is still in flight.
	final := pollUntilTerminal(t, fastRunner, fastID)
	assert.Equal(t, "fast answer", final.Result)
	assert.False(t, slowRunner.Poll(slowID).Status.Terminal())

	close(slowRelease)
	final = pollUntilTerminal(t, slowRunner, slowID)
	assert.Equal(t, "slow answer", final.Result)
}
