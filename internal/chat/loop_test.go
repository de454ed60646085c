package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inheir-ai/inheir-console/internal/api"
)

type fakeBackend struct {
	mu          sync.Mutex
	history     []api.ChatMessage
	historyErr  error
	historyGate chan struct{} // when set, ChatHistory blocks until closed
	sendErr     error
	sends       []string
}

func (f *fakeBackend) ChatHistory(ctx context.Context, caseID string) ([]api.ChatMessage, error) {
	f.mu.Lock()
	gate := f.historyGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	out := make([]api.ChatMessage, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeBackend) SendChat(ctx context.Context, caseID, query string) (*api.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, query)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := api.ChatMessage{Query: query, Response: "answer to " + query, CreatedAt: time.Now()}
	f.history = append(f.history, msg)
	return &msg, nil
}

func TestLoadHistoryEmptySeedsWelcome(t *testing.T) {
	backend := &fakeBackend{}
	loop := NewLoop("case-1", backend, nil, nil)

	turns := loop.LoadHistory(context.Background())

	require.Len(t, turns, 1)
	assert.Equal(t, TurnResponse, turns[0].Type)
	assert.Equal(t, WelcomeMessage, turns[0].Content)
}

func TestLoadHistoryFailureSeedsWelcome(t *testing.T) {
	backend := &fakeBackend{historyErr: errors.New("network down")}
	loop := NewLoop("case-1", backend, nil, nil)

	turns := loop.LoadHistory(context.Background())

	require.Len(t, turns, 1)
	assert.Equal(t, WelcomeMessage, turns[0].Content)
}

func TestLoadHistoryIsIdempotent(t *testing.T) {
	backend := &fakeBackend{history: []api.ChatMessage{
		{Query: "who owns the estate?", Response: "the heirs listed in the will"},
	}}
	loop := NewLoop("case-1", backend, nil, nil)

	first := loop.LoadHistory(context.Background())
	second := loop.LoadHistory(context.Background())

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestSendGrowsTranscriptByTwo(t *testing.T) {
	backend := &fakeBackend{}
	loop := NewLoop("case-1", backend, nil, nil)
	loop.LoadHistory(context.Background())
	before := len(loop.Turns())

	_, err := loop.Send(context.Background(), "is the deed valid?")

	require.NoError(t, err)
	turns := loop.Turns()
	assert.Len(t, turns, before+2)
	assert.Equal(t, TurnQuery, turns[len(turns)-2].Type)
	assert.Equal(t, "is the deed valid?", turns[len(turns)-2].Content)
	assert.Equal(t, TurnResponse, turns[len(turns)-1].Type)
	assert.Equal(t, "answer to is the deed valid?", turns[len(turns)-1].Content)
}

func TestSendFailureAppendsSyntheticResponse(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("timeout")}
	loop := NewLoop("case-1", backend, nil, nil)
	loop.LoadHistory(context.Background())
	before := len(loop.Turns())

	fallback, err := loop.Send(context.Background(), "hello?")

	require.Error(t, err)
	turns := loop.Turns()
	assert.Len(t, turns, before+2)
	assert.Equal(t, TurnResponse, fallback.Type)
	assert.Equal(t, TurnQuery, turns[len(turns)-2].Type)
	assert.Equal(t, fallback.Content, turns[len(turns)-1].Content)
}

func TestSendReconcilesWithServerHistory(t *testing.T) {
	backend := &fakeBackend{history: []api.ChatMessage{
		{Query: "q1", Response: "r1"},
	}}
	loop := NewLoop("case-1", backend, nil, nil)
	loop.LoadHistory(context.Background())
	require.Len(t, loop.Turns(), 2)

	_, err := loop.Send(context.Background(), "q2")

	require.NoError(t, err)
	turns := loop.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, "q1", turns[0].Content)
	assert.Equal(t, "q2", turns[2].Content)
	assert.Equal(t, "answer to q2", turns[3].Content)
}

func TestHistoryLoadMarksInFlight(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{historyGate: gate}
	loop := NewLoop("case-1", backend, nil, nil)

	done := make(chan struct{})
	go func() {
		loop.LoadHistory(context.Background())
		close(done)
	}()

	require.Eventually(t, loop.InFlight, time.Second, 5*time.Millisecond)

	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for history load")
	}
	assert.False(t, loop.InFlight())
}

func TestSendDuringHistoryLoadKeepsTranscriptPaired(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{historyGate: gate}
	loop := NewLoop("case-1", backend, nil, nil)

	loadDone := make(chan struct{})
	go func() {
		loop.LoadHistory(context.Background())
		close(loadDone)
	}()
	require.Eventually(t, loop.InFlight, time.Second, 5*time.Millisecond)

	// The send overlaps the blocked history fetch; its own reconcile fetch
	// blocks on the same gate.
	sendDone := make(chan error, 1)
	go func() {
		_, err := loop.Send(context.Background(), "is the deed valid?")
		sendDone <- err
	}()
	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return len(backend.sends) == 1
	}, time.Second, 5*time.Millisecond)

	close(gate)
	<-loadDone
	require.NoError(t, <-sendDone)

	// Both fetches see the stored exchange, so either settle order yields
	// the same paired transcript.
	turns := loop.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, TurnQuery, turns[0].Type)
	assert.Equal(t, "is the deed valid?", turns[0].Content)
	assert.Equal(t, TurnResponse, turns[1].Type)
	assert.Equal(t, "answer to is the deed valid?", turns[1].Content)
}

func TestSendClearsInFlight(t *testing.T) {
	backend := &fakeBackend{}
	loop := NewLoop("case-1", backend, nil, nil)

	_, err := loop.Send(context.Background(), "ping")

	require.NoError(t, err)
	assert.False(t, loop.InFlight())
}
