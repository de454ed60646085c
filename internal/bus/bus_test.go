package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusFallsBackToNull(t *testing.T) {
	b := NewBus("", nil)
	_, ok := b.(*NullBus)
	assert.True(t, ok)

	// Unparseable URL also degrades to the null bus.
	b = NewBus("not-a-redis-url", nil)
	_, ok = b.(*NullBus)
	assert.True(t, ok)
}

func TestNullBusPublishesWithoutError(t *testing.T) {
	b := NewNullBus(nil)
	ctx := context.Background()

	require.NoError(t, b.PublishSession(ctx, SessionMessage{
		Username:  "alice",
		Action:    ActionSignedIn,
		Timestamp: time.Now().Unix(),
	}))
	require.NoError(t, b.PublishCase(ctx, CaseMessage{
		CaseID:    "c1",
		Action:    ActionResolved,
		Status:    "Resolved",
		Timestamp: time.Now().Unix(),
	}))
	require.NoError(t, b.HealthCheck(ctx))
	require.NoError(t, b.Close())
}

func TestNullBusReadBlocksUntilCancel(t *testing.T) {
	b := NewNullBus(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- b.ReadSessionStream(ctx, "g", "c", func(ctx context.Context, msg SessionMessage) error {
			t.Error("handler should never fire on the null bus")
			return nil
		})
	}()

	select {
	case <-done:
		t.Fatal("read returned before cancellation")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("read did not return after cancellation")
	}
}
