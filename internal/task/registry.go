// Package task runs chat agent invocations in the background and tracks
// their lifecycle in an in-memory registry that clients poll by task id.
package task

import (
	"sync"
	"time"

	"scctower/internal/domain"
)

// DefaultRetention is how long a task entry survives after submission.
// Results are ephemeral: an unpolled answer older than the window is
// silently reclaimed on the next submission.
const DefaultRetention = 5 * time.Minute

// Registry is the in-memory chat task store. Entries are read and replaced
// whole under the mutex so a poll always observes a complete, consistent
// snapshot. State is process-lifetime only; a restart loses all tasks.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]domain.ChatTask

	now func() time.Time
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]domain.ChatTask),
		now:   time.Now,
	}
}

// Create registers a new pending task. The caller must create the entry
// before launching the worker so a poll issued right after submission can
// never miss the task.
func (r *Registry) Create(id string, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[id] = domain.ChatTask{
		ID:        id,
		Status:    domain.TaskStatusPending,
		Result:    "",
		CreatedAt: createdAt,
	}
}

// MarkRunning transitions the task to running. A no-op when the entry is
// absent (reclaimed by the sweep mid-flight) or already terminal.
func (r *Registry) MarkRunning(id string) {
	r.transition(id, domain.TaskStatusRunning, "")
}

// MarkDone records the final answer. An empty answer is still done, not an
// error: the agent legitimately produced no text.
func (r *Registry) MarkDone(id, result string) {
	r.transition(id, domain.TaskStatusDone, result)
}

// MarkError records a terminal failure with a short diagnostic.
func (r *Registry) MarkError(id, diagnostic string) {
	r.transition(id, domain.TaskStatusError, diagnostic)
}

// transition replaces the entry's status and result, preserving CreatedAt
// so the retention sweep still sees the original submission time. Terminal
// states never revert.
func (r *Registry) transition(id string, status domain.TaskStatus, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Status = status
	t.Result = result
	r.tasks[id] = t
}

// Get returns a snapshot of the task. It never blocks waiting for a
// transition; callers poll again for progress.
func (r *Registry) Get(id string) (domain.ChatTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

// Sweep removes every entry older than the retention window, regardless of
// status, and reports how many were removed. It runs opportunistically on
// each submission, never on a timer.
func (r *Registry) Sweep(retention time.Duration) int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, t := range r.tasks {
		if now.Sub(t.CreatedAt) > retention {
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
