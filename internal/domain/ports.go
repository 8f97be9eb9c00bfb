package domain

import (
	"context"
	"time"
)

// StatementExecutor runs a single SQL statement against the warehouse.
// Implementations must not retry internally; retries, if any, belong to
// the caller. Implemented by databricks.Client.
type StatementExecutor interface {
	ExecuteStatement(ctx context.Context, statement string) ([]Row, error)
}

// CachedExecutor serves warehouse rows memoized for a freshness window.
// It never fails: execution errors degrade to an empty row set so the
// dashboard renders with partial data. Implemented by cache.QueryCache.
type CachedExecutor interface {
	GetOrCompute(ctx context.Context, query string, ttl time.Duration) []Row
}

// AgentInvoker performs one chat agent invocation and returns the final
// assistant answer text. An empty answer with a nil error is a valid
// outcome. Implemented by databricks.AgentInvoker.
type AgentInvoker interface {
	Invoke(ctx context.Context, messages []ChatMessage) (string, error)
}

// UserDirectory resolves the calling user's workspace identity from a
// forwarded access token. Implemented by databricks.Client.
type UserDirectory interface {
	CurrentUser(ctx context.Context, token string) (User, error)
}
