package entity

import "time"

// UserChatStatus is the per-(user, chat) typing row. It is overwritten on every
// typing event and keeps no history.
type UserChatStatus struct {
	ID       string    `json:"id" firestore:"id"`
	UserID   string    `json:"user_id" firestore:"userId"`
	ChatID   string    `json:"chat_id" firestore:"chatId"`
	IsTyping bool      `json:"is_typing" firestore:"isTyping"`
	LastSeen time.Time `json:"last_seen" firestore:"lastSeen"`
}

func UserChatStatusID(userID, chatID string) string {
	return userID + "_" + chatID
}
