// Package gis drives one-shot address risk analysis and the map viewport
// that follows successful results.
package gis

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/inheir-ai/inheir-console/internal/api"
)

// Backend is the slice of the API client the analyzer needs.
type Backend interface {
	AnalyzeAddress(ctx context.Context, address string) (*api.GISResult, error)
}

// Result is what the analyzer delivers to its listener. Err is set when the
// analysis failed; Result is set otherwise.
type Result struct {
	Address string
	Result  *api.GISResult
	Err     error
}

// Analyzer serializes address analysis requests. Each request gets a
// sequence number; a response whose sequence no longer matches the latest
// request is discarded, so a slow earlier analysis can never overwrite a
// newer one.
type Analyzer struct {
	backend Backend
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	seq      uint64
	inFlight bool
	latest   *api.GISResult
}

func NewAnalyzer(backend Backend, logger *zap.SugaredLogger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Analyzer{backend: backend, logger: logger}
}

// InFlight reports whether an analysis is outstanding; the submit control
// stays disabled while true.
func (a *Analyzer) InFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Latest returns the most recent successful result, or nil.
func (a *Analyzer) Latest() *api.GISResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.latest
}

// Analyze starts an analysis for address and invokes deliver with the
// outcome. deliver is not called when a newer Analyze superseded this one
// before it finished. deliver runs on the calling goroutine of the backend
// response; UI callers should hop back to the event loop inside it.
func (a *Analyzer) Analyze(ctx context.Context, address string, deliver func(Result)) {
	a.mu.Lock()
	a.seq++
	seq := a.seq
	a.inFlight = true
	a.mu.Unlock()

	go func() {
		res, err := a.backend.AnalyzeAddress(ctx, address)

		a.mu.Lock()
		if seq != a.seq {
			a.mu.Unlock()
			a.logger.Debugw("discarding stale analysis", "address", address)
			return
		}
		a.inFlight = false
		if err == nil {
			a.latest = res
		}
		a.mu.Unlock()

		if err != nil {
			a.logger.Warnw("address analysis failed", "address", address, "error", err)
			deliver(Result{Address: address, Err: err})
			return
		}
		deliver(Result{Address: address, Result: res})
	}()
}
