package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wishcraft/wishcraft-server/internal/id"
)

const (
	queueSize         = 1000
	clientBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// Client is one open event stream.
type Client struct {
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
	ID          string
	// SessionID is the wizard session the stream watches. Empty watches all.
	SessionID string
}

// Manager fans wizard events out to the streams watching each session.
type Manager struct {
	logger *slog.Logger
	queue  chan Event

	mu        sync.RWMutex
	clients   map[string]*Client            // by client ID
	bySession map[string]map[string]*Client // session ID -> client ID -> client

	// closeMu guards queue against sends after close.
	closeMu sync.RWMutex
	closed  bool

	loop sync.WaitGroup
}

// NewManager creates a Manager. Call Start to begin delivery.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		queue:     make(chan Event, queueSize),
		clients:   make(map[string]*Client),
		bySession: make(map[string]map[string]*Client),
	}
}

// Start delivers queued events and heartbeats until ctx is done or the
// queue is closed by Shutdown.
func (m *Manager) Start(ctx context.Context) {
	m.loop.Add(1)
	defer m.loop.Done()

	m.logger.Info("SSE manager starting")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(event)
		case <-ticker.C:
			m.deliver(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("SSE manager stopping")
			m.disconnectAll()
			return
		}
	}
}

// Shutdown stops accepting events, delivers what is still queued and closes
// every stream. It is safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeMu.Lock()
	if m.closed {
		m.closeMu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.closeMu.Unlock()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for event := range m.queue {
			m.deliver(event)
		}
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		m.logger.Warn("SSE drain timed out, pending events dropped")
	}

	m.loop.Wait()
	m.disconnectAll()
	m.logger.Info("SSE manager stopped")
	return nil
}

// recipients returns the clients an event is addressed to.
// Caller must hold m.mu.
func (m *Manager) recipients(event Event) []*Client {
	if event.SessionID == "" {
		out := make([]*Client, 0, len(m.clients))
		for _, c := range m.clients {
			out = append(out, c)
		}
		return out
	}

	watchers := m.bySession[event.SessionID]
	global := m.bySession[""]
	out := make([]*Client, 0, len(watchers)+len(global))
	for _, c := range watchers {
		out = append(out, c)
	}
	for _, c := range global {
		out = append(out, c)
	}
	return out
}

// deliver hands event to its recipients without blocking. A stream whose
// buffer is full misses the event.
func (m *Manager) deliver(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sent, dropped int
	for _, c := range m.recipients(event) {
		select {
		case c.EventChan <- event:
			sent++
		default:
			dropped++
			m.logger.Warn("SSE client too slow, event dropped",
				"client_id", c.ID,
				"session_id", c.SessionID,
				"event_type", event.Type,
			)
		}
	}

	if event.Type != EventHeartbeat {
		m.logger.Debug("SSE event delivered",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"sent", sent,
			"dropped", dropped,
		)
	}
}

// Connect opens a stream for sessionID.
func (m *Manager) Connect(sessionID string) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	c := &Client{
		ID:          clientID,
		SessionID:   sessionID,
		EventChan:   make(chan Event, clientBufferSize),
		Done:        make(chan struct{}),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	m.clients[c.ID] = c
	watchers := m.bySession[sessionID]
	if watchers == nil {
		watchers = make(map[string]*Client)
		m.bySession[sessionID] = watchers
	}
	watchers[c.ID] = c
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client connected",
		"client_id", clientID,
		"session_id", sessionID,
		"total_clients", total,
	)
	return c, nil
}

// Disconnect closes a stream. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if !ok {
		m.mu.Unlock()
		return
	}
	m.removeLocked(c)
	total := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("SSE client disconnected",
		"client_id", clientID,
		"session_id", c.SessionID,
		"duration", time.Since(c.ConnectedAt),
		"total_clients", total,
	)
}

// removeLocked unregisters c and closes its channels. Caller must hold m.mu.
func (m *Manager) removeLocked(c *Client) {
	delete(m.clients, c.ID)
	if watchers := m.bySession[c.SessionID]; watchers != nil {
		delete(watchers, c.ID)
		if len(watchers) == 0 {
			delete(m.bySession, c.SessionID)
		}
	}
	close(c.Done)
	close(c.EventChan)
}

// Emit queues an event. Events emitted after Shutdown are discarded.
func (m *Manager) Emit(event Event) {
	m.closeMu.RLock()
	defer m.closeMu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.queue <- event:
	default:
		m.logger.Error("SSE queue full, event dropped",
			"event_type", event.Type,
			"session_id", event.SessionID,
		)
	}
}

// EmitToSession queues an event for the streams watching one wizard session.
func (m *Manager) EmitToSession(sessionID string, eventType EventType, data any) {
	m.Emit(NewSessionEvent(sessionID, eventType, data))
}

// ClientCount returns the number of open streams.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Watchers returns the number of streams watching sessionID.
func (m *Manager) Watchers(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySession[sessionID])
}

func (m *Manager) disconnectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		m.removeLocked(c)
	}
	m.logger.Info("SSE clients disconnected")
}
