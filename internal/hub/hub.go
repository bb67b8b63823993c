// Package hub fans call lifecycle events out to WebSocket watchers.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/domain"
)

// Connection represents a single WebSocket watcher.
type Connection struct {
	ID string
	// CallID restricts the connection to one call. Empty means every call.
	CallID string
	Conn   *websocket.Conn
	Send   chan []byte
	mu     sync.Mutex
}

// Hub manages all watcher connections.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// Channels for registration/unregistration
	register   chan *Connection
	unregister chan *Connection

	// Events waiting to be fanned out
	broadcast chan *eventMessage

	// done is closed when Run returns
	done chan struct{}

	logger *zap.Logger
	mu     sync.RWMutex
}

type eventMessage struct {
	CallID string
	Data   []byte
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		connections: make(map[string]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *eventMessage, 256),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conn := range h.connections {
				delete(h.connections, id)
				close(conn.Send)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			h.mu.Unlock()
			h.logger.Debug("watcher registered", zap.String("conn", conn.ID), zap.String("callId", conn.CallID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				close(conn.Send)
			}
			h.mu.Unlock()
			h.logger.Debug("watcher unregistered", zap.String("conn", conn.ID))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for id, conn := range h.connections {
				if conn.CallID != "" && conn.CallID != msg.CallID {
					continue
				}
				select {
				case conn.Send <- msg.Data:
				default:
					// Buffer full, drop the watcher
					h.logger.Warn("watcher buffer full, closing", zap.String("conn", id))
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection creates a connection watching callID, or every call when
// callID is empty.
func (h *Hub) NewConnection(ws *websocket.Conn, callID string) *Connection {
	return &Connection{
		ID:     uuid.New().String(),
		CallID: callID,
		Conn:   ws,
		Send:   make(chan []byte, 256),
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish queues ev for every matching watcher. It never blocks the caller;
// events are dropped while the queue is full.
func (h *Hub) Publish(ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.String("event", ev.EventID), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &eventMessage{CallID: ev.CallID, Data: data}:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("event", ev.EventID))
	}
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the connection.
func (c *Connection) Close() error {
	return c.Conn.Close()
}
