package websocket

import (
	"context"
	"encoding/json"
	"time"

	"partmatch/pkg/logger"
)

// WebSocket Message Types
const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeSubscribe    = "subscribe"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypeChange       = "change"
	MessageTypeError        = "error"
)

// WSMessage is the envelope for both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// HandleClientMessage processes incoming WebSocket messages
func (m *Manager) HandleClientMessage(ctx context.Context, client *Client, messageBytes []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Warn("WebSocket: Failed to unmarshal message from client %s: %v", client.UserID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, MessageTypePong, map[string]string{"status": "alive"})

	case MessageTypeSubscribe:
		sub, ok := m.decodeSubscription(client, wsMessage.Data)
		if !ok {
			return
		}
		if err := m.subscribe(ctx, client, sub); err != nil {
			logger.Warn("WebSocket: subscription %+v denied for %s: %v", sub, client.UserID, err)
			m.sendErrorToClient(client, "Subscription not allowed")
			return
		}
		m.sendToClient(client, MessageTypeSubscribed, sub)

	case MessageTypeUnsubscribe:
		sub, ok := m.decodeSubscription(client, wsMessage.Data)
		if !ok {
			return
		}
		m.unsubscribe(client, sub)
		m.sendToClient(client, MessageTypeUnsubscribed, sub)

	default:
		logger.Debug("WebSocket: Unknown message type '%s' from client %s", wsMessage.Type, client.UserID)
		m.sendErrorToClient(client, "Unknown message type")
	}
}

func (m *Manager) decodeSubscription(client *Client, data json.RawMessage) (Subscription, bool) {
	var sub Subscription
	if err := json.Unmarshal(data, &sub); err != nil || sub.Table == "" || sub.Column == "" || sub.Value == "" {
		m.sendErrorToClient(client, "Subscription needs table, column and value")
		return Subscription{}, false
	}
	return sub, true
}

func (m *Manager) sendToClient(client *Client, msgType string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      msgType,
		Data:      mustRaw(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: Failed to marshal %s for %s: %v", msgType, client.UserID, err)
		return
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if _, ok := m.clients[client]; !ok {
		return
	}
	m.trySend(client, payload)
}

func (m *Manager) sendErrorToClient(client *Client, errorMsg string) {
	m.sendToClient(client, MessageTypeError, ErrorData{Message: errorMsg})
}
