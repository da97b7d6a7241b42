// Package notify delivers user-facing notifications. Delivery is
// fire-and-forget: a sink that cannot deliver drops the message, and
// no caller ever blocks on a toast.
package notify

import (
	"github.com/kettle/taskdeck/internal/bus"
)

// Severity classifies a notification for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Sink receives notifications. Notify must not block.
type Sink interface {
	Notify(sev Severity, message string)
}

// Multi fans a notification out to every sink.
type Multi []Sink

func (m Multi) Notify(sev Severity, message string) {
	for _, s := range m {
		s.Notify(sev, message)
	}
}

// BusSink publishes notifications as toast events for the UI feed.
type BusSink struct {
	Bus *bus.Bus
}

func (s *BusSink) Notify(sev Severity, message string) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(bus.TopicToast, bus.ToastEvent{
		Severity: string(sev),
		Message:  message,
	})
}

// Discard drops everything. Useful in tests and headless runs.
type Discard struct{}

func (Discard) Notify(Severity, string) {}
