package events

import (
	"context"
	"log/slog"
	"time"
)

// PublishWithRetry attempts to send an event to the daemon with retry logic.
// It makes up to maxRetries attempts with exponential backoff and returns the
// error from the final attempt if all of them fail.
func PublishWithRetry(client EventPublisher, event Event, maxRetries int) error {
	if client == nil {
		return nil // no daemon configured
	}

	var lastErr error
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := client.SendEvent(event)
		if err == nil {
			if attempt > 0 {
				slog.Debug("event published after retry",
					"attempt", attempt+1,
					"event_type", event.Type,
					"board_id", event.BoardID)
			}
			return nil
		}

		lastErr = err

		if attempt < maxRetries-1 {
			// 50ms, 100ms, 200ms
			delay := baseDelay * (1 << attempt)
			slog.Debug("event publish failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"retry_delay", delay,
				"error", err)
			time.Sleep(delay)
		}
	}

	slog.Warn("event publish failed after all retries",
		"attempts", maxRetries,
		"event_type", event.Type,
		"board_id", event.BoardID,
		"error", lastErr)

	return lastErr
}

// Relay publishes to the local hub and forwards to the daemon when one is
// connected, so other processes see the change too.
type Relay struct {
	hub     *Hub
	client  EventPublisher
	retries int
}

// NewRelay returns a Relay. client may be nil for single-process use.
func NewRelay(hub *Hub, client EventPublisher) *Relay {
	return &Relay{hub: hub, client: client, retries: 3}
}

// Publish delivers locally first, then forwards to the daemon
func (r *Relay) Publish(ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if err := r.hub.Publish(ev); err != nil {
		return err
	}
	if r.client == nil {
		return nil
	}
	return PublishWithRetry(r.client, ev, r.retries)
}

// Bridge copies events arriving from the daemon into the hub until ctx is
// done or the client gives up reconnecting. Events are not forwarded back.
func Bridge(ctx context.Context, client EventPublisher, hub *Hub) error {
	ch, err := client.Listen(ctx)
	if err != nil {
		return err
	}
	for ev := range ch {
		if ev.Type != EventBoardUpdated {
			continue
		}
		if err := hub.Publish(ev); err != nil {
			slog.Warn("failed to deliver daemon event", "board_id", ev.BoardID, "error", err)
		}
	}
	return ctx.Err()
}
