package entity

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// ImageCaptionPlaceholder is used as content for image messages sent without text.
const ImageCaptionPlaceholder = "📷"

// Message is immutable once created except for the Read flag.
type Message struct {
	ID            string      `json:"id" firestore:"id"`
	ChatID        string      `json:"chat_id" firestore:"chatId"`
	SenderID      string      `json:"sender_id" firestore:"senderId"`
	Content       string      `json:"content" firestore:"content"`
	AttachmentURL string      `json:"attachment_url,omitempty" firestore:"attachmentUrl,omitempty"`
	MessageType   MessageType `json:"message_type" firestore:"messageType"`
	Read          bool        `json:"read" firestore:"read"`
	CreatedAt     time.Time   `json:"created_at" firestore:"createdAt"`
}
