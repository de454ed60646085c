package bus

import (
	"context"

	"go.uber.org/zap"
)

// NullBus is a no-op implementation used when Redis is disabled. The console
// still runs, it just can't see sessions or cases from other windows.
type NullBus struct {
	logger *zap.SugaredLogger
}

// NewNullBus creates a new null bus instance.
func NewNullBus(logger *zap.SugaredLogger) *NullBus {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &NullBus{logger: logger}
}

// Close is a no-op for null bus.
func (nb *NullBus) Close() error {
	return nil
}

// PublishSession logs the message but doesn't publish it.
func (nb *NullBus) PublishSession(ctx context.Context, msg SessionMessage) error {
	nb.logger.Debugw("would publish session message (Redis disabled)", "action", msg.Action)
	return nil
}

// PublishCase logs the message but doesn't publish it.
func (nb *NullBus) PublishCase(ctx context.Context, msg CaseMessage) error {
	nb.logger.Debugw("would publish case message (Redis disabled)", "case_id", msg.CaseID, "action", msg.Action)
	return nil
}

// ReadSessionStream blocks until the context is cancelled.
func (nb *NullBus) ReadSessionStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg SessionMessage) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// ReadCaseStream blocks until the context is cancelled.
func (nb *NullBus) ReadCaseStream(ctx context.Context, group, consumer string, handler func(ctx context.Context, msg CaseMessage) error) error {
	<-ctx.Done()
	return ctx.Err()
}

// HealthCheck always returns nil for null bus.
func (nb *NullBus) HealthCheck(ctx context.Context) error {
	return nil
}
