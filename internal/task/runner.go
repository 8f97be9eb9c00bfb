package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scctower/internal/domain"
)

// Runner decouples slow agent invocations from the request cycle: Submit
// returns a task id immediately and a dedicated goroutine performs the call
// and writes the terminal state back into the registry for polling.
type Runner struct {
	registry  *Registry
	invoker   domain.AgentInvoker
	retention time.Duration
	logger    *slog.Logger

	now func() time.Time
}

// NewRunner creates a Runner over the given registry and agent invoker.
// A non-positive retention falls back to DefaultRetention.
func NewRunner(registry *Registry, invoker domain.AgentInvoker, retention time.Duration, logger *slog.Logger) *Runner {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		registry:  registry,
		invoker:   invoker,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit registers a new pending task and launches its worker, returning the
// task id without waiting for the agent. Expired entries are swept first so
// registry growth stays bounded by the retention window. The pending entry
// is written before the worker starts: a worker that finishes instantly can
// never have its terminal state clobbered by a late pending write.
//
// The only error returned is a validation failure on empty input; agent
// failures surface later through the task's terminal state.
func (r *Runner) Submit(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", domain.ErrValidation("at least one message is required")
	}

	id := uuid.NewString()
	if removed := r.registry.Sweep(r.retention); removed > 0 {
		r.logger.Info("swept expired chat tasks", "removed", removed)
	}
	r.registry.Create(id, r.now())

	go r.run(id, messages)

	r.logger.Info("chat task submitted", "task_id", id, "messages", len(messages))
	return id, nil
}

// Poll returns the current snapshot of the task. An unknown id — never
// submitted, or already reclaimed by the sweep — is a normal outcome for a
// slow poller, reported as an error-status task rather than a failure.
func (r *Runner) Poll(id string) domain.ChatTask {
	t, ok := r.registry.Get(id)
	if !ok {
		return domain.ChatTask{ID: id, Status: domain.TaskStatusError, Result: "Task not found"}
	}
	return t
}

// run is the worker body, invoked exactly once per task id. It owns the
// entry after creation: its writes are strictly ordered running → terminal.
// Every failure mode ends in a terminal state — a panic or error must never
// kill the process or leave the task running forever.
func (r *Runner) run(id string, messages []domain.ChatMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("chat worker panicked", "task_id", id, "panic", rec)
			r.registry.MarkError(id, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	r.registry.MarkRunning(id)

	// The worker outlives the submitting request, and cancellation is
	// unsupported, so the invocation runs on a fresh background context.
	text, err := r.invoker.Invoke(context.Background(), messages)
	if err != nil {
		r.logger.Error("chat task failed", "task_id", id, "error", err)
		r.registry.MarkError(id, err.Error())
		return
	}

	r.registry.MarkDone(id, text)
	r.logger.Info("chat task completed", "task_id", id, "chars", len(text))
}
