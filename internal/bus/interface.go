// Package bus propagates session and case events between console instances
// through Redis Streams. A sign-out in one window signs out the others; a
// status change refreshes their case lists. When Redis is unreachable the
// console degrades to a single-instance NullBus.
package bus

import (
	"context"

	"go.uber.org/zap"
)

// Session and case stream actions.
const (
	ActionSignedIn  = "signed_in"
	ActionSignedOut = "signed_out"
	ActionCreated   = "created"
	ActionResolved  = "resolved"
	ActionAborted   = "aborted"
)

// SessionMessage announces a sign-in or sign-out.
type SessionMessage struct {
	Username  string `json:"username"`
	Action    string `json:"action"` // "signed_in" or "signed_out"
	Timestamp int64  `json:"timestamp"`
}

// CaseMessage announces a case mutation (created, resolved, aborted).
type CaseMessage struct {
	CaseID    string `json:"case_id"`
	Action    string `json:"action"`
	Status    string `json:"status,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Bus defines the interface for event bus implementations.
type Bus interface {
	// PublishSession publishes a sign-in/sign-out to the sessions stream
	PublishSession(ctx context.Context, msg SessionMessage) error

	// PublishCase publishes a case mutation to the cases stream
	PublishCase(ctx context.Context, msg CaseMessage) error

	// ReadSessionStream blocks, delivering session messages to handler
	ReadSessionStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg SessionMessage) error) error

	// ReadCaseStream blocks, delivering case messages to handler
	ReadCaseStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg CaseMessage) error) error

	// HealthCheck performs a health check on the bus connection
	HealthCheck(ctx context.Context) error

	// Close closes the bus connection
	Close() error
}

// NewBus creates a bus from the Redis URL. An empty or unreachable URL
// falls back to a NullBus.
func NewBus(redisURL string, logger *zap.SugaredLogger) Bus {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if redisURL == "" {
		return NewNullBus(logger)
	}

	if redisBus, err := NewRedisBus(redisURL, logger); err == nil {
		return redisBus
	}

	return NewNullBus(logger)
}
