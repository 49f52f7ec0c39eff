package events

import "context"

// Publisher accepts change notifications. The database layer depends on this
// and nothing else.
type Publisher interface {
	Publish(event Event) error
}

// EventPublisher is a connection to the notification daemon
type EventPublisher interface {
	// Connect establishes a connection to the daemon socket
	Connect(ctx context.Context) error

	// SendEvent queues an event to be sent to the daemon
	SendEvent(event Event) error

	// Listen starts listening for events from the daemon
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe changes the subscription to a specific board ("" = all)
	Subscribe(boardID string) error

	// SetNotifyFunc sets a callback for connection status changes
	SetNotifyFunc(fn NotifyFunc)

	// Close closes the connection to the daemon and stops all goroutines
	Close() error
}

// NotifyFunc receives connection status messages (level is "info" or "warn")
type NotifyFunc func(level, message string)

var (
	_ EventPublisher = (*Client)(nil)
	_ Publisher      = (*Hub)(nil)
	_ Publisher      = (*Relay)(nil)
)
