package gis

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

type blockingBackend struct {
	mu      sync.Mutex
	pending map[string]chan struct{}
	results map[string]*api.GISResult
	errs    map[string]error
}

func newBlockingBackend() *blockingBackend {
	return &blockingBackend{
		pending: make(map[string]chan struct{}),
		results: make(map[string]*api.GISResult),
		errs:    make(map[string]error),
	}
}

func (b *blockingBackend) hold(address string) chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan struct{})
	b.pending[address] = ch
	return ch
}

func (b *blockingBackend) AnalyzeAddress(ctx context.Context, address string) (*api.GISResult, error) {
	b.mu.Lock()
	gate := b.pending[address]
	res := b.results[address]
	err := b.errs[address]
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &api.GISResult{Address: address, RiskLevel: "Low"}
	}
	return res, nil
}

func TestAnalyzeDeliversResult(t *testing.T) {
	backend := newBlockingBackend()
	analyzer := NewAnalyzer(backend, nil)

	done := make(chan Result, 1)
	analyzer.Analyze(context.Background(), "12 Oak Street", func(r Result) { done <- r })

	select {
	case r := <-done:
		require.NoError(t, r.Err)
		assert.Equal(t, "12 Oak Street", r.Result.Address)
		assert.False(t, analyzer.InFlight())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for analysis result")
	}
}

func TestStaleAnalysisIsDiscarded(t *testing.T) {
	backend := newBlockingBackend()
	analyzer := NewAnalyzer(backend, nil)

	slowGate := backend.hold("slow street")
	backend.mu.Lock()
	backend.results["slow street"] = &api.GISResult{Address: "slow street", RiskLevel: "High"}
	backend.mu.Unlock()

	delivered := make(chan Result, 2)
	analyzer.Analyze(context.Background(), "slow street", func(r Result) { delivered <- r })
	analyzer.Analyze(context.Background(), "fast avenue", func(r Result) { delivered <- r })

	var first Result
	select {
	case first = <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fresh result")
	}
	require.NoError(t, first.Err)
	assert.Equal(t, "fast avenue", first.Address)

	// Release the superseded request; it must not be delivered.
	close(slowGate)
	select {
	case r := <-delivered:
		t.Fatalf("stale result delivered: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, "fast avenue", analyzer.Latest().Address)
}

func TestAnalyzeFailureDelivered(t *testing.T) {
	backend := newBlockingBackend()
	backend.mu.Lock()
	backend.errs["bad input"] = errors.New("geocoding failed")
	backend.mu.Unlock()
	analyzer := NewAnalyzer(backend, nil)

	done := make(chan Result, 1)
	analyzer.Analyze(context.Background(), "bad input", func(r Result) { done <- r })

	select {
	case r := <-done:
		require.Error(t, r.Err)
		assert.Nil(t, analyzer.Latest())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for failure")
	}
}

func TestViewportRecenterOnlyMovesWhenAsked(t *testing.T) {
	v := NewViewport()
	start := v.Center()
	assert.Nil(t, v.Marker())

	coords := api.Coordinates{Latitude: 40.7128, Longitude: -74.006}
	v.Recenter(coords)

	assert.Equal(t, coords, v.Center())
	assert.NotEqual(t, start, v.Center())
	require.NotNil(t, v.Marker())
	assert.Equal(t, coords, *v.Marker())
	assert.Equal(t, focusZoom, v.Zoom())
}

func TestViewportDisposeFreezesCamera(t *testing.T) {
	v := NewViewport()
	v.Dispose()

	v.Recenter(api.Coordinates{Latitude: 1, Longitude: 2})

	assert.True(t, v.Disposed())
	assert.Nil(t, v.Marker())
	assert.Equal(t, defaultZoom, v.Zoom())
}
