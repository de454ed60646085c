// Package notify is the single notification-dispatch surface. Every page
// pushes its transient toasts through a Notifier instead of rolling its own.
package notify

import "sync"

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Position hints where the toast is rendered.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

// Notification is one transient, dismissable message.
type Notification struct {
	Message     string
	Description string
	Severity    Severity
	Position    Position
}

// Notifier dispatches notifications to whatever surface the app runs in.
type Notifier interface {
	Dispatch(n Notification)
}

// Success builds a success notification.
func Success(message string) Notification {
	return Notification{Message: message, Severity: SeveritySuccess, Position: PositionBottom}
}

// Info builds an info notification.
func Info(message, description string) Notification {
	return Notification{Message: message, Description: description, Severity: SeverityInfo, Position: PositionBottom}
}

// Error builds an error notification.
func Error(message string) Notification {
	return Notification{Message: message, Severity: SeverityError, Position: PositionBottom}
}

// Recorder collects dispatched notifications for tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Dispatch records the notification.
func (r *Recorder) Dispatch(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Items returns a copy of everything dispatched so far.
func (r *Recorder) Items() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification, or a zero value when none.
func (r *Recorder) Last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}
	}
	return r.items[len(r.items)-1]
}
