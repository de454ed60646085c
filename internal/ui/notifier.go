package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"

	"github.com/inheir-ai/inheir-console/internal/notify"
)

// toastTTL is how long a toast stays visible before auto-clearing.
const toastTTL = 4 * time.Second

// Toaster renders notifications into a single-line TextView at the edge of
// the screen and clears them after a short delay. It implements
// notify.Notifier.
type Toaster struct {
	app   *tview.Application
	view  *tview.TextView
	theme Theme

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

func NewToaster(app *tview.Application, view *tview.TextView, theme Theme) *Toaster {
	return &Toaster{app: app, view: view, theme: theme}
}

// Dispatch shows the notification. Safe to call from any goroutine; the
// screen update is queued onto the event loop.
func (t *Toaster) Dispatch(n notify.Notification) {
	t.mu.Lock()
	t.seq++
	seq := t.seq
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(toastTTL, func() { t.clear(seq) })
	t.mu.Unlock()

	text := t.format(n)
	t.app.QueueUpdateDraw(func() {
		t.view.SetText(text)
	})
}

func (t *Toaster) format(n notify.Notification) string {
	tag := t.theme.TagAccent
	switch n.Severity {
	case notify.SeveritySuccess:
		tag = t.theme.TagSuccess
	case notify.SeverityWarning:
		tag = t.theme.TagWarning
	case notify.SeverityError:
		tag = t.theme.TagError
	}
	if n.Description != "" {
		return fmt.Sprintf("[%s]%s[-] [%s]%s[-]", tag, n.Message, t.theme.TagMuted, n.Description)
	}
	return fmt.Sprintf("[%s]%s[-]", tag, n.Message)
}

// clear blanks the toast line unless a newer toast replaced this one.
func (t *Toaster) clear(seq uint64) {
	t.mu.Lock()
	stale := seq != t.seq
	t.mu.Unlock()
	if stale {
		return
	}
	t.app.QueueUpdateDraw(func() {
		t.view.SetText("")
	})
}
