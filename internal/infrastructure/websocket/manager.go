package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"partmatch/internal/domain/entity"
	"partmatch/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Subscription is a table plus a single column == value row filter.
type Subscription struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Authorizer decides whether a user may receive the rows a subscription selects.
type Authorizer interface {
	AuthorizeSubscription(ctx context.Context, userID string, sub Subscription) error
}

// Client represents a WebSocket connection client
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	subs map[Subscription]struct{}
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		subs:   make(map[Subscription]struct{}),
	}
}

// Manager tracks connected clients and their subscriptions and delivers change
// events to the matching ones. A user may hold several connections.
type Manager struct {
	clients    map[*Client]struct{}
	byUser     map[string]map[*Client]struct{}
	authorizer Authorizer
	mutex      sync.RWMutex

	onConnections func(n int)
}

func NewManager(authorizer Authorizer) *Manager {
	return &Manager{
		clients:    make(map[*Client]struct{}),
		byUser:     make(map[string]map[*Client]struct{}),
		authorizer: authorizer,
	}
}

// SetAuthorizer replaces the authorizer. It must be called before clients
// connect.
func (m *Manager) SetAuthorizer(authorizer Authorizer) {
	m.mutex.Lock()
	m.authorizer = authorizer
	m.mutex.Unlock()
}

// OnConnectionsChanged registers a callback receiving the connection count.
func (m *Manager) OnConnectionsChanged(fn func(n int)) {
	m.mutex.Lock()
	m.onConnections = fn
	m.mutex.Unlock()
}

// Start closes every connection once ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		m.mutex.Lock()
		defer m.mutex.Unlock()
		for client := range m.clients {
			close(client.Send)
			delete(m.clients, client)
		}
		m.byUser = make(map[string]map[*Client]struct{})
		logger.Info("WebSocket manager stopped")
	}()
}

func (m *Manager) Register(client *Client) {
	m.mutex.Lock()
	m.clients[client] = struct{}{}
	if m.byUser[client.UserID] == nil {
		m.byUser[client.UserID] = make(map[*Client]struct{})
	}
	m.byUser[client.UserID][client] = struct{}{}
	n := len(m.clients)
	cb := m.onConnections
	m.mutex.Unlock()

	logger.Info("Client registered: %s", client.UserID)
	if cb != nil {
		cb(n)
	}
}

func (m *Manager) Unregister(client *Client) {
	m.mutex.Lock()
	if _, ok := m.clients[client]; ok {
		delete(m.clients, client)
		if conns := m.byUser[client.UserID]; conns != nil {
			delete(conns, client)
			if len(conns) == 0 {
				delete(m.byUser, client.UserID)
			}
		}
		close(client.Send)
	}
	n := len(m.clients)
	cb := m.onConnections
	m.mutex.Unlock()

	logger.Info("Client unregistered: %s", client.UserID)
	if cb != nil {
		cb(n)
	}
}

// Dispatch delivers an event to every local client whose subscription matches,
// or to all connections of event.UserID for user-addressed events.
func (m *Manager) Dispatch(event *entity.ChangeEvent) int {
	payload, err := json.Marshal(WSMessage{
		Type:      MessageTypeChange,
		Data:      mustRaw(event),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		logger.Error("WebSocket: failed to encode change event: %v", err)
		return 0
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	delivered := 0
	if event.UserID != "" {
		for client := range m.byUser[event.UserID] {
			if m.trySend(client, payload) {
				delivered++
			}
		}
		return delivered
	}

	for client := range m.clients {
		for sub := range client.subs {
			if event.Matches(sub.Table, sub.Column, sub.Value) {
				if m.trySend(client, payload) {
					delivered++
				}
				break
			}
		}
	}
	return delivered
}

// trySend never blocks; a client whose buffer is full misses the event.
func (m *Manager) trySend(client *Client, payload []byte) bool {
	select {
	case client.Send <- payload:
		return true
	default:
		logger.Warn("WebSocket: send buffer full for %s, dropping event", client.UserID)
		return false
	}
}

func (m *Manager) subscribe(ctx context.Context, client *Client, sub Subscription) error {
	m.mutex.RLock()
	authorizer := m.authorizer
	m.mutex.RUnlock()

	if authorizer != nil {
		if err := authorizer.AuthorizeSubscription(ctx, client.UserID, sub); err != nil {
			return err
		}
	}
	m.mutex.Lock()
	client.subs[sub] = struct{}{}
	m.mutex.Unlock()
	return nil
}

func (m *Manager) unsubscribe(client *Client, sub Subscription) {
	m.mutex.Lock()
	delete(client.subs, sub)
	m.mutex.Unlock()
}

// ConnectionCount returns the number of live connections.
func (m *Manager) ConnectionCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}
		m.HandleClientMessage(context.Background(), c, message)
	}
}

// WritePump sends messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func mustRaw(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
