// Package daemon relays board change events between circles processes over
// a unix socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/circles/internal/events"
)

const (
	pingInterval   = 30 * time.Second
	healthInterval = 60 * time.Second
	staleAfter     = 90 * time.Second
)

// client is one connected circles process
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	mu           sync.Mutex // protects subscription and lastPong
	closeOnce    sync.Once
}

func (c *client) subscribedTo(ev events.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ev.Matches(c.subscription.BoardID)
}

// envelope is an event plus the client that sent it
type envelope struct {
	event events.Event
	from  *client
}

// Server is the notification relay
type Server struct {
	socketPath       string
	listener         net.Listener
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan envelope
	metrics          *Metrics
	sequenceCounter  atomic.Int64
	clientBufferSize int
	shutdownOnce     sync.Once
}

// getEnvInt reads a positive integer from the environment
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates the socket listener, replacing a stale socket file
func NewServer(socketPath string) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		socketPath:       socketPath,
		listener:         listener,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan envelope, getEnvInt("CIRCLES_DAEMON_BROADCAST_BUFFER", 100)),
		metrics:          NewMetrics(),
		clientBufferSize: getEnvInt("CIRCLES_DAEMON_CLIENT_BUFFER", 10),
	}, nil
}

// Metrics returns the live counters
func (s *Server) Metrics() *Metrics { return s.metrics }

// Start runs the accept, broadcast and health loops until ctx is cancelled,
// Shutdown is called, or accepting fails. It always shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	log.Printf("Daemon starting, listening on %s", s.socketPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.ctx.Done():
		}
		// Unblocks Accept
		return s.Shutdown()
	})
	g.Go(func() error { return s.acceptLoop() })
	g.Go(func() error { s.broadcastLoop(gctx); return nil })
	g.Go(func() error { s.monitorHealth(gctx); return nil })

	err := g.Wait()
	log.Println("Daemon stopped")
	return err
}

// acceptLoop accepts connections until the listener is closed
func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.cancel()
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		log.Printf("Client connected, total clients: %d", s.getClientCount())

		go s.handleClient(c)
		go s.clientWriter(c)
	}
}

// broadcastLoop stamps sequence ids and fans events out to subscribed clients.
// The sender does not get its own event back; it already delivered it locally.
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return

		case env := <-s.broadcast:
			event := env.event
			event.SequenceID = s.sequenceCounter.Add(1)
			s.metrics.IncBroadcasts()

			msg := events.Message{
				Version: events.ProtocolVersion,
				Type:    "event",
				Event:   &event,
			}

			s.mu.RLock()
			for c := range s.clients {
				if c == env.from || !c.subscribedTo(event) {
					continue
				}
				if !s.sendToClient(c, msg) {
					s.metrics.IncEventsDropped()
					log.Printf("Client send queue full, event for board %s dropped", event.BoardID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		log.Printf("Client disconnected, total clients: %d", s.getClientCount())
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			log.Printf("Warning: received message with protocol version %d, expected %d", msg.Version, events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil || msg.Event.Type != events.EventBoardUpdated {
				continue
			}
			s.metrics.IncEventsReceived()
			select {
			case s.broadcast <- envelope{event: *msg.Event, from: c}:
			default:
				s.metrics.IncEventsDropped()
				log.Printf("Broadcast channel full")
			}

		case "subscribe":
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.mu.Unlock()
				if msg.Subscribe.BoardID == "" {
					log.Printf("Client subscribed to all boards")
				} else {
					log.Printf("Client subscribed to board %s", msg.Subscribe.BoardID)
				}
			}

		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends queued messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// monitorHealth pings clients and drops those that stop answering
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	healthTicker := time.NewTicker(healthInterval)
	defer healthTicker.Stop()

	ping := events.Message{
		Version: events.ProtocolVersion,
		Type:    "ping",
		Event:   &events.Event{Type: events.EventPing},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return

		case <-pingTicker.C:
			// Sent under the read lock so removeClient cannot close a
			// channel we are about to send on
			s.mu.RLock()
			for c := range s.clients {
				if !s.sendToClient(c, ping) {
					log.Printf("Failed to send ping to client (queue full)")
				}
			}
			s.mu.RUnlock()

		case now := <-healthTicker.C:
			s.mu.RLock()
			stale := make([]*client, 0)
			for c := range s.clients {
				c.mu.Lock()
				if now.Sub(c.lastPong) > staleAfter {
					stale = append(stale, c)
				}
				c.mu.Unlock()
			}
			s.mu.RUnlock()

			for _, c := range stale {
				log.Printf("Removing stale client")
				s.removeClient(c)
			}
		}
	}
}

// Broadcast injects an event as if a client had sent it (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	select {
	case s.broadcast <- envelope{event: event}:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Shutdown closes the listener and every client, and removes the socket file.
// Safe to call more than once.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		log.Println("Shutting down daemon...")

		s.cancel()

		if s.listener != nil {
			if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
				err = closeErr
			}
		}

		s.mu.Lock()
		for c := range s.clients {
			s.closeClient(c)
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()
		s.updateClientCount()

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Printf("Warning: failed to remove socket file: %v", removeErr)
		}
	})

	return err
}

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient unregisters and closes a client
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.closeClient(c)
	s.mu.Unlock()

	s.updateClientCount()
}

// closeClient must be called with s.mu held for writing
func (s *Server) closeClient(c *client) {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		close(c.send)
	})
}

// sendToClient attempts a non-blocking send. Callers hold s.mu.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
