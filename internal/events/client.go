package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNilClient is returned by methods called on a nil *Client
	ErrNilClient = errors.New("event client is nil")
	// ErrClientClosed is returned by methods called after Close
	ErrClientClosed = errors.New("event client closed")
)

// Client is a connection to the circles daemon. It batches outgoing events,
// reads incoming ones, reconnects with backoff and tracks the subscription.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	// Batching configuration
	eventQueue chan Event
	debounce   time.Duration
	closed     bool
	started    bool

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	subscription string
	lastSequence int64
	notify       NotifyFunc

	ctx    context.Context
	cancel context.CancelFunc

	batcherDone chan struct{}
}

// NewClient creates a new event client but does not connect. The debounce
// window defaults to 100ms and can be tuned with CIRCLES_EVENT_DEBOUNCE_MS.
func NewClient(socketPath string) (*Client, error) {
	if socketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}

	debounceMs := 100
	if envVal := os.Getenv("CIRCLES_EVENT_DEBOUNCE_MS"); envVal != "" {
		if parsed, err := strconv.Atoi(envVal); err == nil && parsed > 0 {
			debounceMs = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		socketPath:  socketPath,
		eventQueue:  make(chan Event, 100),
		debounce:    time.Duration(debounceMs) * time.Millisecond,
		maxRetries:  5,
		baseDelay:   1 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
		batcherDone: make(chan struct{}),
	}, nil
}

// SetNotifyFunc sets the callback used to report connection status
func (c *Client) SetNotifyFunc(fn NotifyFunc) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

func (c *Client) notifyf(level, format string, args ...any) {
	c.mu.Lock()
	fn := c.notify
	c.mu.Unlock()
	if fn != nil {
		fn(level, fmt.Sprintf(format, args...))
	}
}

// Connect dials the daemon socket and re-sends the current subscription.
// The batcher goroutine starts on the first successful connect.
func (c *Client) Connect(ctx context.Context) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)
	// Sequence ids restart with the daemon
	c.lastSequence = 0

	msg := Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{BoardID: c.subscription},
	}
	if err := c.encoder.Encode(msg); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			log.Printf("Error closing connection: %v", closeErr)
		}
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	if !c.started {
		c.started = true
		go c.startBatcher()
	}

	return nil
}

// SendEvent queues an event for the daemon. Events are batched per board
// within the debounce window. Fails fast when the queue is full.
func (c *Client) SendEvent(event Event) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// startBatcher collects queued events and sends the latest event for each
// board once per debounce tick.
func (c *Client) startBatcher() {
	defer close(c.batcherDone)

	ticker := time.NewTicker(c.debounce)
	defer ticker.Stop()

	pending := make(map[string]Event)
	var order []string

	add := func(ev Event) {
		if _, ok := pending[ev.BoardID]; !ok {
			order = append(order, ev.BoardID)
		}
		pending[ev.BoardID] = ev
	}

	flushPending := func() {
		for _, id := range order {
			if err := c.sendToSocket(pending[id]); err != nil {
				if !isConnectionError(err) {
					log.Printf("Failed to send batched event: %v", err)
				}
			}
		}
		clear(pending)
		order = order[:0]
	}

	for {
		select {
		case <-c.ctx.Done():
			flushPending()
			return

		case event, ok := <-c.eventQueue:
			if !ok {
				flushPending()
				return
			}
			add(event)

		case <-ticker.C:
			flushPending()
		}
	}
}

// sendToSocket writes one event message to the daemon
func (c *Client) sendToSocket(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	// Short write deadline to detect dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}

	msg := Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   &event,
	}
	return c.encoder.Encode(msg)
}

// Listen starts reading events from the daemon. The channel is closed when
// ctx is done or reconnection fails.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	eventChan := make(chan Event, 10)
	if c == nil {
		close(eventChan)
		return eventChan, ErrNilClient
	}
	go c.listenLoop(ctx, eventChan)
	return eventChan, nil
}

func (c *Client) listenLoop(ctx context.Context, eventChan chan Event) {
	defer close(eventChan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ctx.Done():
			return
		default:
		}

		err := c.readEvents(ctx, eventChan)
		if err == nil || ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}

		log.Printf("Connection lost: %v, reconnecting...", err)
		c.notifyf("warn", "Connection to daemon lost, reconnecting")

		if c.reconnect(ctx) {
			c.notifyf("info", "Reconnected to daemon")
			continue
		}

		log.Printf("Failed to reconnect after %d attempts, giving up", c.maxRetries)
		c.notifyf("warn", "Live updates unavailable")
		return
	}
}

// readEvents decodes messages until the connection fails
func (c *Client) readEvents(ctx context.Context, eventChan chan Event) error {
	for {
		var msg Message

		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return fmt.Errorf("connection closed")
		}
		// Pings arrive every 30s, so 60s of silence means a hung daemon
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			c.mu.Lock()
			fresh := msg.Event.SequenceID > c.lastSequence
			if fresh {
				c.lastSequence = msg.Event.SequenceID
			}
			c.mu.Unlock()
			if !fresh {
				continue
			}
			select {
			case eventChan <- *msg.Event:
			case <-ctx.Done():
				return nil
			}

		case "ping":
			if err := c.sendPong(); err != nil && !isConnectionError(err) {
				log.Printf("Failed to send pong: %v", err)
			}
		}
	}
}

func (c *Client) sendPong() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}
	return c.encoder.Encode(Message{Version: ProtocolVersion, Type: "pong"})
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "use of closed network connection")
}

// reconnect retries Connect with exponential backoff: 1s, 2s, 4s, 8s, 16s
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				if err := c.conn.Close(); err != nil && !isConnectionError(err) {
					log.Printf("Error closing connection during reconnect: %v", err)
				}
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				log.Printf("Reconnected to daemon (attempt %d/%d)", i+1, c.maxRetries)
				return true
			}

			log.Printf("Reconnection attempt %d/%d failed, retrying in %v", i+1, c.maxRetries, delay*2)
			delay *= 2
		}
	}

	return false
}

// Subscribe changes the subscription to a specific board ("" = all boards)
func (c *Client) Subscribe(boardID string) error {
	if c == nil {
		return ErrNilClient
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subscription = boardID

	if c.conn == nil {
		return fmt.Errorf("not connected to daemon")
	}

	return c.encoder.Encode(Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{BoardID: boardID},
	})
}

// Close flushes pending events, closes the connection and stops all goroutines
func (c *Client) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	started := c.started
	// The batcher drains the closed queue and flushes before exiting
	close(c.eventQueue)
	c.mu.Unlock()

	if started {
		<-c.batcherDone
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
