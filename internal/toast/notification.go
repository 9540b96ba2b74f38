package toast

import (
	"strings"
	"time"
)

// DefaultDuration is the display lifetime applied when a descriptor leaves DurationMs unset.
const DefaultDuration = 3000 * time.Millisecond

// MaxDuration caps a toast's display lifetime.
const MaxDuration = 24 * time.Hour

// Notification is a toast currently held by a Queue.
type Notification struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message,omitempty"`
	Icon       string `json:"icon,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// Duration returns the display lifetime as a time.Duration.
func (n Notification) Duration() time.Duration {
	return time.Duration(n.DurationMs) * time.Millisecond
}

// Descriptor describes a toast to enqueue. Title is required; the rest is optional.
type Descriptor struct {
	Title      string `json:"title" validate:"required,notblank,max=200"`
	Message    string `json:"message,omitempty" validate:"max=1000"`
	Icon       string `json:"icon,omitempty" validate:"max=200"`
	DurationMs int64  `json:"durationMs,omitempty" validate:"gte=0,lte=86400000"`
}

func (d Descriptor) normalize(fallback time.Duration) Notification {
	n := Notification{
		Title:      strings.TrimSpace(d.Title),
		Message:    d.Message,
		Icon:       d.Icon,
		DurationMs: d.DurationMs,
	}
	switch limit := MaxDuration.Milliseconds(); {
	case n.DurationMs <= 0:
		n.DurationMs = fallback.Milliseconds()
	case n.DurationMs > limit:
		n.DurationMs = limit
	}
	return n
}

// EventType names a queue change.
type EventType string

const (
	// EventAdded is emitted after a notification is appended.
	EventAdded EventType = "toast.added"
	// EventDismissed is emitted after a notification is removed by Dismiss.
	EventDismissed EventType = "toast.dismissed"
	// EventExpired is emitted after a notification's lifetime elapses.
	EventExpired EventType = "toast.expired"
	// EventCleared is emitted after Clear empties the queue.
	EventCleared EventType = "toast.cleared"
)

// Event signals a queue change; UIs re-render on receipt.
type Event struct {
	Type         EventType    `json:"event"`
	Notification Notification `json:"notification"`
	Size         int          `json:"size"`
}
