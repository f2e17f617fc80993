package websocket

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is the frame pushed to connected clients.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Manager handles WebSocket connections and message routing
type Manager struct {
	connections map[string]*Connection
	byUser      map[string]map[string]*Connection
	mu          sync.RWMutex
	hub         *Hub
	upgrader    websocket.Upgrader
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID           string
	UserID       string
	Conn         *websocket.Conn
	Send         chan Message
	LastActivity time.Time
}

// Hub manages the broadcast of messages to connections
type Hub struct {
	connections map[*Connection]bool
	broadcast   chan Message
	register    chan *Connection
	unregister  chan *Connection
	stop        chan struct{}
}

// NewManager creates a new WebSocket manager
func NewManager() *Manager {
	hub := &Hub{
		connections: make(map[*Connection]bool),
		broadcast:   make(chan Message, 256),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		stop:        make(chan struct{}),
	}

	go hub.run()

	return &Manager{
		connections: make(map[string]*Connection),
		byUser:      make(map[string]map[string]*Connection),
		hub:         hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is handled at the gateway.
				return true
			},
		},
	}
}

// HandleConnection upgrades the request and registers the connection under
// the authenticated user id.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:           uuid.New().String(),
		UserID:       userID,
		Conn:         conn,
		Send:         make(chan Message, 256),
		LastActivity: time.Now(),
	}

	m.hub.register <- connection

	m.mu.Lock()
	m.connections[connection.ID] = connection
	if m.byUser[userID] == nil {
		m.byUser[userID] = make(map[string]*Connection)
	}
	m.byUser[userID][connection.ID] = connection
	m.mu.Unlock()

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// SendToUser pushes a payload to every open connection of one user.
func (m *Manager) SendToUser(userID string, payload any) error {
	m.mu.RLock()
	conns := make([]*Connection, 0, len(m.byUser[userID]))
	for _, conn := range m.byUser[userID] {
		conns = append(conns, conn)
	}
	m.mu.RUnlock()

	if len(conns) == 0 {
		return fmt.Errorf("no open connections for user %s", userID)
	}

	msg := Message{Type: "notification", Data: payload, Timestamp: time.Now()}
	for _, conn := range conns {
		select {
		case conn.Send <- msg:
		default:
			// Slow consumer; drop rather than block the dispatcher.
		}
	}
	return nil
}

// Broadcast pushes a payload to every open connection.
func (m *Manager) Broadcast(payload any) {
	m.hub.broadcast <- Message{Type: "broadcast", Data: payload, Timestamp: time.Now()}
}

// readPump pumps messages from the WebSocket connection to the hub
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.hub.unregister <- conn
		m.removeConnection(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Clients only send pings; payloads are discarded.
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			return
		}
		conn.LastActivity = time.Now()
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (m *Manager) removeConnection(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn.ID)
	if userConns, ok := m.byUser[conn.UserID]; ok {
		delete(userConns, conn.ID)
		if len(userConns) == 0 {
			delete(m.byUser, conn.UserID)
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.connections[conn] = true
		case conn := <-h.unregister:
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}
		case msg := <-h.broadcast:
			for conn := range h.connections {
				select {
				case conn.Send <- msg:
				default:
				}
			}
		case <-h.stop:
			for conn := range h.connections {
				close(conn.Send)
			}
			return
		}
	}
}

// Close shuts down the hub and all connections.
func (m *Manager) Close() {
	close(m.hub.stop)
}
