package realtime

import (
	"context"

	"github.com/carehub/storefront/internal/toast"
)

// ForwardToasts subscribes to the queue and relays its change events onto
// StreamToasts in the background until ctx is cancelled or the queue is closed.
func ForwardToasts(ctx context.Context, queue *toast.Queue, hub *Hub) {
	events := queue.Subscribe()
	go relayToasts(ctx, queue, events, hub)
}

func relayToasts(ctx context.Context, queue *toast.Queue, events <-chan toast.Event, hub *Hub) {
	defer queue.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			hub.Broadcast(StreamToasts, ToastMessage(event))
		}
	}
}

// ToastMessage converts a queue event into its wire form.
func ToastMessage(event toast.Event) Message {
	data := map[string]any{"size": event.Size}
	if event.Type != toast.EventCleared {
		data["toast"] = event.Notification
	}
	return Message{Stream: StreamToasts, Event: string(event.Type), Data: data}
}

// ToastSnapshot builds the message a new subscriber receives first.
func ToastSnapshot(items []toast.Notification) Message {
	return Message{
		Stream: StreamToasts,
		Event:  "toast.snapshot",
		Data:   map[string]any{"toasts": items, "size": len(items)},
	}
}
