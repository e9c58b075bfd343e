package entity

import "encoding/json"

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	// ChangeBadge is pushed to a single user and carries a recomputed unread total.
	ChangeBadge ChangeType = "BADGE"
)

const (
	TableChats             = "chats"
	TableMessages          = "messages"
	TableUserChatStatus    = "user_chat_status"
	TableUserNotifications = "user_notifications"
)

// ChangeEvent is a row-level change pushed over the realtime channel. Keys holds
// the filterable columns of the row (chat_id, buyer_id, seller_id, user_id).
type ChangeEvent struct {
	Table  string            `json:"table"`
	Type   ChangeType        `json:"type"`
	Keys   map[string]string `json:"keys"`
	Record json.RawMessage   `json:"record"`
	// UserID restricts delivery to one user regardless of subscriptions.
	UserID string `json:"user_id,omitempty"`
}

func NewChangeEvent(table string, typ ChangeType, record interface{}, keys map[string]string) (*ChangeEvent, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return &ChangeEvent{
		Table:  table,
		Type:   typ,
		Keys:   keys,
		Record: raw,
	}, nil
}

// Matches reports whether a subscription on table filtered by column == value
// should receive the event.
func (e *ChangeEvent) Matches(table, column, value string) bool {
	if e.UserID != "" || e.Table != table {
		return false
	}
	if column == "" {
		return false
	}
	return e.Keys[column] == value
}
