// Package chat implements the per-case assistant transcript: ordered
// query/response turns, optimistic sends, and reconciliation against the
// backend's stored history.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/store"
)

// Turn types.
const (
	TurnQuery    = "query"
	TurnResponse = "response"
)

// WelcomeMessage seeds an empty transcript so the assistant pane is never blank.
const WelcomeMessage = "Hello! I'm your Inheir.ai assistant. Ask me anything about this case and its documents."

// failureMessage keeps the transcript query/response-paired when a send fails.
const failureMessage = "Sorry, I couldn't process that request right now. Please try again in a moment."

// Turn is one transcript entry. Turns are appended, never reordered or
// deleted; a query turn is always followed by its paired response turn.
type Turn struct {
	Content string    `json:"content"`
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
}

// Backend is the slice of the API client the loop needs.
type Backend interface {
	ChatHistory(ctx context.Context, caseID string) ([]api.ChatMessage, error)
	SendChat(ctx context.Context, caseID, query string) (*api.ChatMessage, error)
}

// Loop drives one case's chat session. Safe for concurrent use: the UI
// calls LoadHistory and Send from background goroutines, so the transcript
// state is guarded by a mutex. Network calls run outside the lock.
type Loop struct {
	caseID  string
	backend Backend
	cache   *store.Store // optional; nil disables offline caching
	logger  *zap.SugaredLogger

	mu       sync.Mutex
	turns    []Turn
	seeded   bool // transcript starts with the welcome preamble
	inFlight bool
}

// NewLoop constructs the loop for a case. cache may be nil.
func NewLoop(caseID string, backend Backend, cache *store.Store, logger *zap.SugaredLogger) *Loop {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loop{
		caseID:  caseID,
		backend: backend,
		cache:   cache,
		logger:  logger,
	}
}

// Turns returns a copy of the transcript in append order.
func (l *Loop) Turns() []Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// InFlight reports whether a send or history load is outstanding; the send
// control stays disabled while true.
func (l *Loop) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

func (l *Loop) setInFlight(v bool) {
	l.mu.Lock()
	l.inFlight = v
	l.mu.Unlock()
}

// LoadHistory replaces the in-memory transcript with the backend's stored
// history. An empty history seeds the welcome turn; a failed fetch falls
// back to the cached transcript when available and otherwise seeds the
// welcome turn, so the pane always has something to show. The loop is
// in flight for the duration so sends wait for the load to settle.
func (l *Loop) LoadHistory(ctx context.Context) []Turn {
	l.setInFlight(true)
	defer l.setInFlight(false)

	history, err := l.backend.ChatHistory(ctx, l.caseID)
	if err != nil {
		l.logger.Warnw("chat history fetch failed", "case_id", l.caseID, "error", err)
		cached := l.cachedTurns(ctx)
		l.mu.Lock()
		if len(cached) > 0 {
			l.turns = cached
			l.seeded = cached[0].Content == WelcomeMessage
		} else {
			l.seedWelcomeLocked()
		}
		l.mu.Unlock()
		return l.Turns()
	}

	turns := turnsFromMessages(history)
	l.mu.Lock()
	if len(turns) == 0 {
		l.seedWelcomeLocked()
		l.mu.Unlock()
		return l.Turns()
	}
	l.turns = turns
	l.seeded = false
	l.mu.Unlock()

	l.cacheTranscript(ctx)
	return l.Turns()
}

// Send appends the query turn optimistically, posts it, and appends the
// backend's response on success or a synthetic apologetic response on
// failure, keeping the transcript paired either way. After a successful
// send the full history is refetched to reconcile with the backend; the
// refetch replaces the transcript only when it succeeds.
func (l *Loop) Send(ctx context.Context, text string) (Turn, error) {
	l.mu.Lock()
	l.inFlight = true
	l.turns = append(l.turns, Turn{Content: text, Type: TurnQuery, At: time.Now()})
	l.mu.Unlock()
	defer l.setInFlight(false)

	msg, err := l.backend.SendChat(ctx, l.caseID, text)
	if err != nil {
		l.logger.Warnw("chat send failed", "case_id", l.caseID, "error", err)
		fallback := Turn{Content: failureMessage, Type: TurnResponse, At: time.Now()}
		l.mu.Lock()
		l.turns = append(l.turns, fallback)
		l.mu.Unlock()
		return fallback, err
	}

	response := Turn{Content: msg.Response, Type: TurnResponse, At: time.Now()}
	l.mu.Lock()
	l.turns = append(l.turns, response)
	l.mu.Unlock()

	l.reconcile(ctx)
	l.cacheTranscript(ctx)
	return response, nil
}

// reconcile swaps in the authoritative server history. Keep-on-failure: a
// failed refetch leaves the optimistic transcript in place.
func (l *Loop) reconcile(ctx context.Context) {
	history, err := l.backend.ChatHistory(ctx, l.caseID)
	if err != nil {
		l.logger.Debugw("reconcile fetch failed, keeping optimistic transcript", "case_id", l.caseID, "error", err)
		return
	}
	turns := turnsFromMessages(history)
	if len(turns) == 0 {
		return
	}
	l.mu.Lock()
	if l.seeded && len(l.turns) > 0 {
		// Preserve the welcome preamble so the transcript only grows.
		turns = append([]Turn{l.turns[0]}, turns...)
	}
	l.turns = turns
	l.mu.Unlock()
}

// seedWelcomeLocked resets the transcript to the welcome preamble. Caller
// holds l.mu.
func (l *Loop) seedWelcomeLocked() {
	l.turns = []Turn{{Content: WelcomeMessage, Type: TurnResponse, At: time.Now()}}
	l.seeded = true
}

func (l *Loop) cachedTurns(ctx context.Context) []Turn {
	if l.cache == nil {
		return nil
	}
	stored, err := l.cache.Transcript(ctx, l.caseID)
	if err != nil {
		return nil
	}
	turns := make([]Turn, 0, len(stored))
	for _, t := range stored {
		turns = append(turns, Turn{Content: t.Content, Type: t.TurnType, At: t.CreatedAt})
	}
	return turns
}

func (l *Loop) cacheTranscript(ctx context.Context) {
	if l.cache == nil {
		return
	}
	turns := l.Turns()
	stored := make([]store.Turn, 0, len(turns))
	for _, t := range turns {
		stored = append(stored, store.Turn{
			ID:        uuid.NewString(),
			CaseID:    l.caseID,
			Content:   t.Content,
			TurnType:  t.Type,
			CreatedAt: t.At,
		})
	}
	if err := l.cache.ReplaceTranscript(ctx, l.caseID, stored); err != nil {
		l.logger.Debugw("transcript cache write failed", "case_id", l.caseID, "error", err)
	}
}

func turnsFromMessages(history []api.ChatMessage) []Turn {
	turns := make([]Turn, 0, len(history)*2)
	for _, msg := range history {
		turns = append(turns,
			Turn{Content: msg.Query, Type: TurnQuery, At: msg.CreatedAt},
			Turn{Content: msg.Response, Type: TurnResponse, At: msg.CreatedAt},
		)
	}
	return turns
}
