// Package cache provides an in-memory TTL cache for warehouse query results.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"scctower/internal/domain"
)

// DefaultTTL is the freshness window applied when callers have no override.
// The backing tables are refreshed on a snapshot cadence, not continuously,
// so five minutes of staleness is acceptable for every dashboard query.
const DefaultTTL = 5 * time.Minute

type entry struct {
	rows      []domain.Row
	createdAt time.Time
}

// QueryCache memoizes warehouse query results for a bounded freshness window.
// Entries are keyed by the trimmed statement text and checked lazily on
// lookup; a stale entry is overwritten by the next execution, never deleted.
// Memory grows with the number of distinct statements seen over the process
// lifetime, which is bounded by the fixed set of dashboard call sites.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]entry

	exec   domain.StatementExecutor
	logger *slog.Logger
	now    func() time.Time
}

// New creates a QueryCache over the given statement executor.
func New(exec domain.StatementExecutor, logger *slog.Logger) *QueryCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryCache{
		entries: make(map[string]entry),
		exec:    exec,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrCompute returns the memoized rows for the statement when a fresh
// entry exists, otherwise executes it synchronously on the caller's
// goroutine and stores the result. Failures are never cached and never
// returned as errors: the caller gets an empty row set and the dashboard
// degrades to "no data". Zero-row results are valid and are cached.
//
// The lock is not held across execution, so two concurrent misses on the
// same statement both execute and the last write wins; deduplicating
// identical in-flight statements is deliberately out of scope.
//
// Callers must not mutate the returned slice.
func (c *QueryCache) GetOrCompute(ctx context.Context, query string, ttl time.Duration) []domain.Row {
	key := strings.TrimSpace(query)
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Sub(e.createdAt) < ttl {
		c.logger.Info("SQL cache hit",
			"rows", len(e.rows),
			"age_seconds", int(now.Sub(e.createdAt).Seconds()))
		return e.rows
	}

	c.logger.Info("SQL execute", "query", shortQuery(key))

	rows, err := c.exec.ExecuteStatement(ctx, query)
	if err != nil {
		c.logger.Error("SQL failed", "error", err)
		return []domain.Row{}
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	c.logger.Info("SQL returned", "rows", len(rows))

	c.mu.Lock()
	c.entries[key] = entry{rows: rows, createdAt: now}
	c.mu.Unlock()
	return rows
}

// shortQuery flattens newlines and truncates the statement for log lines.
func shortQuery(q string) string {
	s := strings.ReplaceAll(q, "\n", " ")
	if len(s) > 80 {
		return s[:80]
	}
	return s
}
